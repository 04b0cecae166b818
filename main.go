package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/events"
	"hackreg-backend/handler"
	"hackreg-backend/internal/config"
	"hackreg-backend/internal/mail"
	"hackreg-backend/internal/otp"
	"hackreg-backend/jwt"
	"hackreg-backend/log"
)

func main() {
	_ = godotenv.Load()
	log.EnsureLogger()
	config.Setup()
	cfg := config.New()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Logger.Fatal("failed connecting to database", zap.Error(err))
	}

	events.EnsureEvents(cfg.RabbitMQConnString)

	key := []byte(cfg.JWTKey)
	otps := otp.NewStore()
	mailer := mail.New(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender)

	authHandler := handler.NewAuthHandler(client, key, otps, mailer)
	teamHandler := handler.NewTeamHandler(client)
	leaderboardHandler := handler.NewLeaderboardHandler(client)
	superAdminHandler := handler.NewSuperAdminHandler(client)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome to the API")
	})

	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/request-otp", authHandler.RequestOTP)
	auth.POST("/verify-otp", authHandler.VerifyOTP)

	authed := jwt.Middleware(key)
	leaderOnly := jwt.RequireRole(entity.RoleTeamLeader)
	superadminOnly := jwt.RequireRole(entity.RoleSuperadmin)

	teams := e.Group("/api/teams", authed)
	teams.POST("", teamHandler.CreateTeam, leaderOnly)
	teams.POST("/addMembers", teamHandler.AddMembers, leaderOnly)
	teams.GET("", teamHandler.GetMyTeam)
	teams.GET("/:teamId", teamHandler.GetTeam)
	teams.PUT("/:teamId/name", teamHandler.RenameTeam, leaderOnly)
	teams.PUT("/members/:memberId", teamHandler.UpdateMember, leaderOnly)

	leaderboard := e.Group("/api/leaderboard", authed)
	leaderboard.GET("", leaderboardHandler.List)
	leaderboard.GET("/live", leaderboardHandler.Live)
	leaderboard.PUT("/:teamId", leaderboardHandler.SetRanking, superadminOnly)

	superadmin := e.Group("/api/superadmin", authed)
	superadmin.GET("/profile", superAdminHandler.GetProfile)
	superadmin.PUT("/profile", superAdminHandler.UpdateProfile)
	superadmin.GET("/users", superAdminHandler.ListUsers, superadminOnly)
	superadmin.POST("/users", superAdminHandler.CreateUser, superadminOnly)
	superadmin.PUT("/users/:userId", superAdminHandler.UpdateUser, superadminOnly)
	superadmin.DELETE("/users/:userId", superAdminHandler.DeleteUser, superadminOnly)
	superadmin.GET("/teams", superAdminHandler.ListTeams, superadminOnly)
	superadmin.PUT("/teams/:teamId", leaderboardHandler.SetRanking, superadminOnly)
	superadmin.DELETE("/teams/:teamId", superAdminHandler.DeleteTeam, superadminOnly)
	superadmin.PUT("/teams/:teamId/payment", superAdminHandler.SetPaymentStatus, superadminOnly)

	log.Logger.Info(fmt.Sprintf("Listening on port: %s", cfg.Port))
	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
		log.Logger.Fatal("couldn't serve", zap.Error(err))
	}
}
