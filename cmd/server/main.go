package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "crewcall/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"crewcall/internal/auth"
	"crewcall/internal/cache"
	"crewcall/internal/config"
	"crewcall/internal/db"
	"crewcall/internal/handler"
	"crewcall/internal/mail"
	"crewcall/internal/model"
	"crewcall/internal/notify"
	"crewcall/internal/push"
	"crewcall/internal/reminder"
	"crewcall/internal/repository"
	"crewcall/internal/router"
	"crewcall/internal/routing"
	"crewcall/internal/service"
	"crewcall/internal/session"
)

// @title CrewCall API
// @version 1.0
// @description Scheduling backend for television production crews with role-based auth, productions, crew assignments and live notifications.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Message{},
			&model.Notification{},
			&model.Assignment{},
			&model.Requirement{},
			&model.Production{},
			&model.DeviceToken{},
			&model.User{},
			&model.Credential{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.Credential{},
		&model.User{},
		&model.Production{},
		&model.Requirement{},
		&model.Assignment{},
		&model.Notification{},
		&model.Message{},
		&model.DeviceToken{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	credentialRepo := repository.NewCredentialRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	productionRepo := repository.NewProductionRepository(gormDB)
	requirementRepo := repository.NewRequirementRepository(gormDB)
	assignmentRepo := repository.NewAssignmentRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	deviceTokenRepo := repository.NewDeviceTokenRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	credentialStore := auth.NewCredentialStore(credentialRepo)
	sessionBus := auth.NewSessionBus(cacheClient)
	sessionBus.Start(ctx)

	// Mail: sendgrid when configured, console otherwise
	var mailer mail.Mailer
	if cfg.SendgridAPIKey != "" {
		mailer = mail.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFromAddr)
	} else {
		mailer = mail.NewConsoleMailer()
	}

	// Session manager: dependents are gated until it initializes
	sessions := session.NewManager(credentialStore, userRepo, jwtService, tokenStore,
		sessionBus, mailer, cfg.ResetURLBase, cfg.SessionInitTimeout)
	sessions.Start(ctx)
	defer sessions.Close()

	// Notification center with live feeds
	center := notify.NewCenter(notificationRepo, cacheClient)
	center.Start(ctx, sessionBus)

	// Push and reminders
	pushService := push.NewService(deviceTokenRepo, push.NewConsoleGateway())
	scheduler := reminder.NewScheduler(pushService)
	defer scheduler.Close()
	if cfg.ReminderSweepEnabled {
		reminder.StartSweep(ctx, reminder.SweepConfig{
			Interval:  cfg.ReminderSweepInterval,
			Lookahead: cfg.ReminderLookahead,
		}, scheduler, productionRepo, assignmentRepo)
	}

	// Role router
	roleRouter := routing.NewRouter()

	// Initialize services
	productionService := service.NewProductionService(productionRepo, cacheClient, center)
	requirementService := service.NewRequirementService(requirementRepo, productionRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, requirementRepo, productionRepo, userRepo, center)
	messageService := service.NewMessageService(messageRepo, productionRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(sessions)
	meHandler := handler.NewMeHandler(sessions, roleRouter, pushService)
	productionHandler := handler.NewProductionHandler(productionService)
	requirementHandler := handler.NewRequirementHandler(requirementService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	messageHandler := handler.NewMessageHandler(messageService)
	notificationHandler := handler.NewNotificationHandler(center)

	// Register routes
	router.Register(
		e,
		cfg,
		sessions,
		tokenStore,
		authHandler,
		meHandler,
		productionHandler,
		requirementHandler,
		assignmentHandler,
		messageHandler,
		notificationHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
