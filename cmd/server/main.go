package main

import (
	"log"
	"net/http"

	_ "voxadmin/docs" // swagger docs

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"voxadmin/internal/audit"
	"voxadmin/internal/auth"
	"voxadmin/internal/cache"
	"voxadmin/internal/config"
	"voxadmin/internal/db"
	"voxadmin/internal/handler"
	"voxadmin/internal/mail"
	"voxadmin/internal/middleware"
	"voxadmin/internal/ratelimit"
	"voxadmin/internal/repository"
	"voxadmin/internal/router"
	"voxadmin/internal/service"
	"voxadmin/internal/telephony"
)

const auditQueueSize = 256

// @title VoxAdmin API
// @version 1.0
// @description Role-based admin/user dashboard backend for voice-agent sessions and conversations.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.Use(echomw.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.TableNamespace)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if err := service.Migrate(gormDB); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	store := repository.NewStoreWithDB(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	limiter := ratelimit.New(cacheClient, cfg.LoginRateLimit, cfg.LoginRateWindow)

	recorder := audit.NewRecorder(store.Audit, logger, auditQueueSize)
	defer recorder.Close()

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	authenticator := middleware.NewAuthenticator(store.Users, tokenStore)
	agentAccess := middleware.NewAgentAccess(store.Assignments)

	authService := service.NewAuthService(
		store, jwtService, tokenStore,
		mailer, recorder, cfg.ResetTokenTTL, cfg.FrontendBaseURL)
	setupService := service.NewSetupService(gormDB, store.Users, store.Assignments)
	userAdminService := service.NewUserAdminService(store, mailer, recorder)
	assignmentService := service.NewAssignmentService(store.Assignments, store.Agents, store.Users, recorder)
	agentAdminService := service.NewAgentAdminService(store.Agents, store.Assignments)
	statsService := service.NewStatsService(
		store.Users, store.Agents, store.Sessions, store.Conversations, store.Audit)
	dashboardService := service.NewDashboardService(
		store.Agents, store.Sessions, store.Conversations, store.Assignments, agentAccess, recorder)
	dataAdminService := service.NewDataAdminService(store, recorder)
	greetingService := telephony.NewGreetingService(store.Agents, cfg.TelephonyToken, cfg.DefaultGreeting)

	router.Register(
		e,
		cfg,
		authenticator,
		agentAccess,
		handler.NewSetupHandler(setupService),
		handler.NewAuthHandler(authService, limiter),
		handler.NewAdminUserHandler(userAdminService),
		handler.NewAdminAssignmentHandler(assignmentService),
		handler.NewAdminAgentHandler(agentAdminService),
		handler.NewAdminStatsHandler(statsService),
		handler.NewDashboardHandler(dashboardService),
		handler.NewDataAdminHandler(dataAdminService),
		handler.NewWebhookHandler(greetingService),
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}
