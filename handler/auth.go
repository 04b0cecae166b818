package handler

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	mailer "hackreg-backend/internal/mail"
	"hackreg-backend/internal/otp"
	"hackreg-backend/jwt"
	"hackreg-backend/log"
)

type authHandler struct {
	key    []byte
	cUsers *mongo.Collection
	otps   *otp.Store
	mailer *mailer.Mailer
}

type signupRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Phone            string `json:"phone"`
	Role             string `json:"role"`
	College          string `json:"college"`
	UniversityRollNo string `json:"universityRollNo"`
	CodeforceHandle  string `json:"codeforceHandle"`
}

func validateName(name string) error {
	tokens := strings.Fields(name)
	if len(tokens) < 2 || len([]rune(tokens[0])) < 2 {
		return errs.ErrNameFormat
	}

	return nil
}

func (h *authHandler) Signup(c echo.Context) error {
	req := &signupRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrNameFormat)
	}

	if err := validateName(req.Name); err != nil {
		return fail(c, err)
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fail(c, errs.ErrEmailAddressFormat)
	}

	if len(req.Password) < 8 {
		return fail(c, errs.ErrPasswordLength)
	}

	if req.UniversityRollNo == "" {
		return fail(c, errs.ErrRollNoRequired)
	}

	role := entity.RoleUser
	if req.Role != "" {
		var ok bool
		role, ok = entity.ParseRole(req.Role)
		if !ok {
			return fail(c, errs.ErrInvalidRole)
		}
	}

	college := req.College
	if college == "" {
		college = entity.DefaultCollege
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		log.Logger.Error("failed to generate bcrypt hash", zap.Error(err))
		return fail(c, errs.ErrCryptographic)
	}

	u := &entity.User{
		ID:               primitive.NewObjectID(),
		Name:             req.Name,
		Email:            req.Email,
		Password:         string(hash),
		Phone:            req.Phone,
		Role:             role,
		College:          college,
		UniversityRollNo: req.UniversityRollNo,
		CodeforceHandle:  req.CodeforceHandle,
	}

	_, err = h.cUsers.InsertOne(c.Request().Context(), u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Logger.Debug("already has account", zap.String("email", req.Email), zap.Error(err))
			return fail(c, errs.ErrAlreadyExists)
		}

		log.Logger.Error("failed inserting new user", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"userId":  u.ID.Hex(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Login(c echo.Context) error {
	req := &loginRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrInvalidCredentials)
	}

	u := &entity.User{}
	err := h.cUsers.FindOne(c.Request().Context(), bson.M{"email": req.Email}).Decode(u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrUserNotFound)
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("email", req.Email))
		return fail(c, errs.ErrDatabase)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			log.Logger.Debug("invalid password", zap.Error(err))
			return fail(c, errs.ErrInvalidCredentials)
		}

		return fail(c, errs.ErrCryptographic)
	}

	token, err := jwt.NewAccessToken(u, h.key)
	if err != nil {
		return fail(c, errs.ErrJWT)
	}

	refreshToken, err := jwt.NewRefreshToken(u, h.key)
	if err != nil {
		return fail(c, errs.ErrJWT)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":        token,
		"refreshToken": refreshToken,
		"userId":       u.ID.Hex(),
		"role":         u.Role,
	})
}

type refreshRequest struct {
	Token string `json:"token"`
}

func (h *authHandler) Refresh(c echo.Context) error {
	req := &refreshRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrJWT)
	}

	claims, err := jwt.ValidateRefreshToken(req.Token, h.key)
	if err != nil {
		return fail(c, err)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		log.Logger.Error("failed mongo id", zap.Error(err))
		return fail(c, errs.ErrJWT)
	}

	u := &entity.User{}
	err = h.cUsers.FindOne(c.Request().Context(), bson.M{"_id": id}).Decode(u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrJWT)
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("id", claims.UserID))
		return fail(c, errs.ErrDatabase)
	}

	token, err := jwt.NewAccessToken(u, h.key)
	if err != nil {
		return fail(c, errs.ErrJWT)
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

type otpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *authHandler) RequestOTP(c echo.Context) error {
	req := &otpRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrEmailAddressFormat)
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fail(c, errs.ErrEmailAddressFormat)
	}

	code, err := h.otps.Issue(req.Email)
	if err != nil {
		return fail(c, err)
	}

	if err := h.mailer.SendOTP(c.Request().Context(), req.Email, code); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Verification code sent"})
}

func (h *authHandler) VerifyOTP(c echo.Context) error {
	req := &otpRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrOTPMismatch)
	}

	if err := h.otps.Verify(req.Email, req.Code); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Email verified"})
}

func NewAuthHandler(client *mongo.Client, key []byte, otps *otp.Store, m *mailer.Mailer) *authHandler {
	c := client.Database(databaseName).Collection("users")
	_, err := c.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		// Sparse: members provisioned through addMembers carry no roll number.
		{Keys: bson.D{{Key: "university_roll_no", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		log.Logger.Fatal("unable to create index", zap.Error(err))
	}

	return &authHandler{
		key:    key,
		cUsers: c,
		otps:   otps,
		mailer: m,
	}
}
