package handler

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/events"
	"hackreg-backend/jwt"
	"hackreg-backend/log"
)

// superAdminHandler performs privileged CRUD over both collections. It does
// not re-check the team invariants the team handler enforces; superadmin
// writes are trusted to keep the store consistent.
type superAdminHandler struct {
	cUsers *mongo.Collection
	cTeams *mongo.Collection
}

func (h *superAdminHandler) GetProfile(c echo.Context) error {
	claims, ok := jwt.GetClaims(c)
	if !ok {
		return fail(c, errs.ErrJWT)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return fail(c, errs.ErrJWT)
	}

	u := &entity.User{}
	err = h.cUsers.FindOne(c.Request().Context(), bson.M{"_id": id}).Decode(u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrUserNotFound)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, u)
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *superAdminHandler) UpdateProfile(c echo.Context) error {
	claims, ok := jwt.GetClaims(c)
	if !ok {
		return fail(c, errs.ErrJWT)
	}
	logger := log.Logger.With(zap.String("userID", claims.UserID))

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return fail(c, errs.ErrJWT)
	}

	req := &updateProfileRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrNameFormat)
	}

	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return fail(c, errs.ErrEmailAddressFormat)
		}
		set["email"] = req.Email
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return fail(c, errs.ErrPasswordLength)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
		if err != nil {
			logger.Error("failed to generate bcrypt hash", zap.Error(err))
			return fail(c, errs.ErrCryptographic)
		}
		set["password"] = string(hash)
	}

	if len(set) == 0 {
		return h.GetProfile(c)
	}

	u := &entity.User{}
	err = h.cUsers.FindOneAndUpdate(
		c.Request().Context(),
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrUserNotFound)
		}

		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

type teamSummary struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	Ranking int64              `json:"ranking"`
}

type userWithTeam struct {
	*entity.User
	Team *teamSummary `json:"team,omitempty"`
}

func (h *superAdminHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := h.cUsers.Find(ctx, bson.M{})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	users := make([]*entity.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	teamIDs := make([]primitive.ObjectID, 0)
	for _, u := range users {
		if u.TeamID != nil {
			teamIDs = append(teamIDs, *u.TeamID)
		}
	}

	summaries := make(map[primitive.ObjectID]*teamSummary)
	if len(teamIDs) > 0 {
		tc, err := h.cTeams.Find(ctx, bson.M{"_id": bson.M{"$in": teamIDs}})
		if err != nil {
			log.Logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}

		teams := make([]*entity.Team, 0)
		if err := tc.All(ctx, &teams); err != nil {
			log.Logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}

		for _, t := range teams {
			summaries[t.ID] = &teamSummary{ID: t.ID, Name: t.Name, Ranking: t.Ranking}
		}
	}

	res := make([]*userWithTeam, 0, len(users))
	for _, u := range users {
		uwt := &userWithTeam{User: u}
		if u.TeamID != nil {
			uwt.Team = summaries[*u.TeamID]
		}
		res = append(res, uwt)
	}

	return c.JSON(http.StatusOK, res)
}

type createUserRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Phone            string `json:"phone"`
	Role             string `json:"role"`
	College          string `json:"college"`
	UniversityRollNo string `json:"universityRollNo"`
	CodeforceHandle  string `json:"codeforceHandle"`
}

func (h *superAdminHandler) CreateUser(c echo.Context) error {
	req := &createUserRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrEmailAddressFormat)
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fail(c, errs.ErrEmailAddressFormat)
	}

	role := entity.RoleUser
	if req.Role != "" {
		var ok bool
		role, ok = entity.ParseRole(req.Role)
		if !ok {
			return fail(c, errs.ErrInvalidRole)
		}
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
		College:          req.College,
		UniversityRollNo: req.UniversityRollNo,
		CodeforceHandle:  req.CodeforceHandle,
	}

	_, err = h.cUsers.InsertOne(c.Request().Context(), u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fail(c, errs.ErrAlreadyExists)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    u,
	})
}

func (h *superAdminHandler) UpdateUser(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	req := &createUserRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.Role != "" {
		role, ok := entity.ParseRole(req.Role)
		if !ok {
			return fail(c, errs.ErrInvalidRole)
		}
		set["role"] = role
	}
	if req.College != "" {
		set["college"] = req.College
	}
	if req.UniversityRollNo != "" {
		set["university_roll_no"] = req.UniversityRollNo
	}
	if req.CodeforceHandle != "" {
		set["codeforce_handle"] = req.CodeforceHandle
	}

	u := &entity.User{}
	if len(set) == 0 {
		err = h.cUsers.FindOne(c.Request().Context(), bson.M{"_id": userID}).Decode(u)
	} else {
		err = h.cUsers.FindOneAndUpdate(
			c.Request().Context(),
			bson.M{"_id": userID},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(u)
	}
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrUserNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return fail(c, errs.ErrAlreadyExists)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    u,
	})
}

func (h *superAdminHandler) DeleteUser(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	err = h.cUsers.FindOneAndDelete(c.Request().Context(), bson.M{"_id": userID}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrUserNotFound)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

type teamWithMembers struct {
	*entity.Team
	MemberDetails []memberSummary `json:"memberDetails"`
}

func (h *superAdminHandler) ListTeams(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := h.cTeams.Find(ctx, bson.M{})
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	teams := make([]*entity.Team, 0)
	if err := cursor.All(ctx, &teams); err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	memberIDs := make([]primitive.ObjectID, 0)
	for _, t := range teams {
		memberIDs = append(memberIDs, t.Members...)
	}

	byID := make(map[primitive.ObjectID]memberSummary)
	if len(memberIDs) > 0 {
		uc, err := h.cUsers.Find(ctx, bson.M{"_id": bson.M{"$in": memberIDs}})
		if err != nil {
			log.Logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}

		users := make([]*entity.User, 0)
		if err := uc.All(ctx, &users); err != nil {
			log.Logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}

		for _, u := range users {
			byID[u.ID] = memberSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
		}
	}

	res := make([]*teamWithMembers, 0, len(teams))
	for _, t := range teams {
		twm := &teamWithMembers{Team: t, MemberDetails: make([]memberSummary, 0, len(t.Members))}
		for _, id := range t.Members {
			if s, ok := byID[id]; ok {
				twm.MemberDetails = append(twm.MemberDetails, s)
			}
		}
		res = append(res, twm)
	}

	return c.JSON(http.StatusOK, res)
}

func (h *superAdminHandler) DeleteTeam(c echo.Context) error {
	teamID, err := primitive.ObjectIDFromHex(c.Param("teamId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	err = h.cTeams.FindOneAndDelete(c.Request().Context(), bson.M{"_id": teamID}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrTeamNotFound)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Team deleted successfully"})
}

type paymentRequest struct {
	Status string `json:"status"`
}

func (h *superAdminHandler) SetPaymentStatus(c echo.Context) error {
	teamID, err := primitive.ObjectIDFromHex(c.Param("teamId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	req := &paymentRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrInvalidPaymentStatus)
	}

	status, ok := entity.ParsePaymentStatus(req.Status)
	if !ok {
		return fail(c, errs.ErrInvalidPaymentStatus)
	}

	team := &entity.Team{}
	err = h.cTeams.FindOneAndUpdate(
		c.Request().Context(),
		bson.M{"_id": teamID},
		bson.M{"$set": bson.M{"payment.status": status, "payment.last_updated": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrTeamNotFound)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	err = events.PublishLeaderboard(&events.LeaderboardEvent{
		Type:          events.LPayment,
		TeamID:        teamID.Hex(),
		PaymentStatus: status,
	})
	if err != nil {
		log.Logger.Error("queue error", zap.Error(err))
		return fail(c, errs.ErrQueue)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Payment status updated successfully",
		"team":    team,
	})
}

func NewSuperAdminHandler(client *mongo.Client) *superAdminHandler {
	return &superAdminHandler{
		cUsers: client.Database(databaseName).Collection("users"),
		cTeams: client.Database(databaseName).Collection("teams"),
	}
}
