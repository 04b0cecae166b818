package jwt

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/log"
)

const (
	Issuer = "hackreg-backend"

	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = time.Hour * 24 * 30 * 6
)

const claimsContextKey = "auth-claims"

type AccessClaims struct {
	UserID string      `json:"user_id"`
	Role   entity.Role `json:"role"`
	Team   string      `json:"team"`
	*jwt.StandardClaims
}

type RefreshClaims struct {
	UserID string `json:"user_id"`
	*jwt.StandardClaims
}

func NewAccessToken(user *entity.User, key []byte) (string, error) {
	team := ""
	if user.TeamID != nil {
		team = user.TeamID.Hex()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &AccessClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		Team:   team,
		StandardClaims: &jwt.StandardClaims{
			ExpiresAt: time.Now().Add(AccessTokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    Issuer,
		},
	})

	ss, err := token.SignedString(key)
	if err != nil {
		log.Logger.Error("signing failure", zap.Error(err))
		return "", err
	}

	return ss, nil
}

func NewRefreshToken(user *entity.User, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &RefreshClaims{
		UserID: user.ID.Hex(),
		StandardClaims: &jwt.StandardClaims{
			ExpiresAt: time.Now().Add(RefreshTokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    Issuer,
		},
	})

	ss, err := token.SignedString(key)
	if err != nil {
		log.Logger.Error("signing failure", zap.Error(err))
		return "", err
	}

	return ss, nil
}

func ValidateAccessToken(token string, key []byte) (*AccessClaims, error) {
	t, err := jwt.ParseWithClaims(token, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		log.Logger.Debug("parse failure", zap.Error(err))
		return nil, errs.ErrJWT
	}

	c := t.Claims.(*AccessClaims)
	if c.ExpiresAt < time.Now().Unix() {
		return nil, errs.ErrTokenExpired
	}

	return c, nil
}

func ValidateRefreshToken(token string, key []byte) (*RefreshClaims, error) {
	t, err := jwt.ParseWithClaims(token, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		log.Logger.Debug("parse failure", zap.Error(err))
		return nil, errs.ErrJWT
	}

	c := t.Claims.(*RefreshClaims)
	if c.ExpiresAt < time.Now().Unix() {
		return nil, errs.ErrTokenExpired
	}

	return c, nil
}

// Middleware authenticates every request of a group before dispatch. Handlers
// read the decoded identity with GetClaims.
func Middleware(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if token == "" {
				return c.JSON(errs.StatusCode(errs.ErrJWT), echo.Map{"message": errs.ErrJWT.Error()})
			}

			claims, err := ValidateAccessToken(token, key)
			if err != nil {
				return c.JSON(errs.StatusCode(err), echo.Map{"message": err.Error()})
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// RequireRole gates a route on an exact role match. It must run after
// Middleware.
func RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return c.JSON(errs.StatusCode(errs.ErrJWT), echo.Map{"message": errs.ErrJWT.Error()})
			}

			if claims.Role != role {
				return c.JSON(errs.StatusCode(errs.ErrForbidden), echo.Map{"message": errs.ErrForbidden.Error()})
			}

			return next(c)
		}
	}
}

func GetClaims(c echo.Context) (*AccessClaims, bool) {
	claims, ok := c.Get(claimsContextKey).(*AccessClaims)
	return claims, ok
}
