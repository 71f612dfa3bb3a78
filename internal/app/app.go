// Package app wires configuration into repositories and services for the
// command-line entry points.
package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"mutuelle-membership/internal/config"
	"mutuelle-membership/internal/document"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/messaging"
	"mutuelle-membership/internal/push"
	"mutuelle-membership/internal/repository/postgres"
	"mutuelle-membership/internal/security"
	"mutuelle-membership/internal/service"
	"mutuelle-membership/internal/storage"
)

// App holds every wired component. Close releases the database.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Store  *postgres.Store

	Tokens    security.TokenManager
	Documents *storage.LocalStorage

	Email         service.EmailService
	Notifications service.NotificationService
	Payments      service.PaymentRecorder
	Corrections   service.CorrectionWorkflow
	Approvals     service.ApprovalOrchestrator
}

// New connects to the database and builds all services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")

	a, err := build(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	store := postgres.NewStore(db)
	store.Accounts.WithPasswordLength(cfg.Security.PasswordLength)

	tokens := security.NewTokenManager(cfg.Security.TokenSecret)
	documents, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.Dir, tokens)
	if err != nil {
		return nil, err
	}

	emailSvc, err := newEmailService(cfg)
	if err != nil {
		return nil, err
	}

	var pushSender service.PushSender
	if cfg.Push.Enabled {
		sender, err := push.NewTopicSender(ctx, cfg.Push.CredentialsFile, cfg.Push.Topic)
		if err != nil {
			return nil, err
		}
		logger.Info("Push notifications enabled", "topic", cfg.Push.Topic)
		pushSender = sender
	}
	notifications := service.NewNotificationService(store.NotificationRepository, pushSender)

	links := messaging.NewLinkBuilder(cfg.Messaging.CountryCode, cfg.Messaging.MinDigits, cfg.Messaging.MaxDigits)

	renderer := document.NewCredentialsRenderer(document.DefaultCredentialsOptions(cfg.Messaging.OrganizationName))
	credentials := service.NewCredentialService(renderer, documents, emailSvc, cfg.DownloadLinkTTL())

	return &App{
		Config:        cfg,
		DB:            db,
		Store:         store,
		Tokens:        tokens,
		Documents:     documents,
		Email:         emailSvc,
		Notifications: notifications,
		Payments:      service.NewPaymentRecorder(store.RequestRepository, store.AdminRepository, notifications),
		Corrections: service.NewCorrectionWorkflow(store.RequestRepository, links, emailSvc, notifications, service.CorrectionSettings{
			CodeExpiry:       cfg.CodeExpiry(),
			FormURL:          cfg.Messaging.CorrectionFormURL,
			OrganizationName: cfg.Messaging.OrganizationName,
		}),
		Approvals: service.NewApprovalOrchestrator(store.RequestRepository, store.Accounts, credentials, emailSvc, notifications),
	}, nil
}

func newEmailService(cfg *config.Config) (service.EmailService, error) {
	switch cfg.Email.Provider {
	case "sendgrid":
		logger.Info("Using SendGrid for outgoing mail")
		return service.NewSendGridEmailService(cfg.Email.SendGridAPIKey, cfg.SMTP.From, cfg.Email.FromName, cfg.Messaging.OrganizationName), nil
	case "smtp", "":
		logger.Info("Using SMTP for outgoing mail", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		return service.NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.Messaging.OrganizationName), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}
}

// Close releases the database connection pool.
func (a *App) Close() error {
	return a.DB.Close()
}
