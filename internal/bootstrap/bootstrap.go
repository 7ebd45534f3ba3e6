package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/hackfest/internal/app/controllers"
	appMigrations "github.com/yigit/hackfest/internal/app/migrations"
	appRepos "github.com/yigit/hackfest/internal/app/repositories"
	appRoutes "github.com/yigit/hackfest/internal/app/routes"
	appServices "github.com/yigit/hackfest/internal/app/services"
	"github.com/yigit/hackfest/internal/config"
	"github.com/yigit/hackfest/internal/db"
	appMiddleware "github.com/yigit/hackfest/internal/middleware"
	pkgAuth "github.com/yigit/hackfest/internal/pkg/auth"
	"github.com/yigit/hackfest/internal/pkg/email"
	"github.com/yigit/hackfest/internal/pkg/logger"
	"github.com/yigit/hackfest/internal/pkg/metrics"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                  *appRepos.Repositories
	Database               *db.PostgresDB // nil with the memory store
	Metrics                *metrics.Metrics
	RegistrationService    appServices.RegistrationService
	AuthService            *appServices.AuthService // nil when no organizer is configured
	JWTService             *pkgAuth.JWTService
	AuthMiddleware         *appMiddleware.AuthMiddleware
	RegistrationController *appControllers.RegistrationController
	AdminController        *appControllers.AdminController
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
// It returns nil when registrations are kept in memory.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	if cfg.Registration.Store != config.StorePostgres {
		lgr.Warn().Msg("Using in-memory registration store, registrations are lost on restart")
		return nil, nil
	}

	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.Run(migrateCtx, appMigrations.Files()); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Database: database,
		Metrics:  metrics.New(),
		Logger:   lgr,
	}

	if database != nil {
		deps.Repos = appRepos.NewRepositories(database)
	} else {
		deps.Repos = appRepos.NewMemoryRepositories()
	}

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.SMTP.BaseURL,
		Timeout:   cfg.SMTP.Timeout,
	}, lgr)

	forms := appServices.NewFormRegistry(cfg.Registration.FormTTL, cfg.Registration.MaxOpenForms)
	deps.RegistrationService = appServices.NewRegistrationService(
		deps.Repos.RegistrationStore,
		forms,
		appServices.NewEmailNotifier(emailService),
		deps.Metrics,
		appServices.RegistrationOptions{
			SubmitTimeout: cfg.Registration.SubmitTimeout,
			UniqueMembers: cfg.Registration.UniqueMembers,
		},
		logger.Component("registration"),
	)
	deps.RegistrationController = appControllers.NewRegistrationController(deps.RegistrationService, lgr)

	if !cfg.AdminEnabled() {
		lgr.Warn().Msg("No organizer account configured, admin routes are disabled")
		return deps, nil
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.JWT.AccessTokenExpiration,
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthService = appServices.NewAuthService(appServices.AdminCredentials{
		Email:        cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
	}, deps.JWTService, logger.Component("auth"))
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AdminController = appControllers.NewAdminController(deps.AuthService, deps.RegistrationService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.Metrics(deps.Metrics))

	appRoutes.SetupRouter(router,
		deps.RegistrationController,
		deps.AdminController,
		deps.AuthMiddleware,
	)

	router.GET("/health", healthHandler(deps.Database))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	return router
}

func healthHandler(database *db.PostgresDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if database != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
