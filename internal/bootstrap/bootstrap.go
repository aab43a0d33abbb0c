package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/admission/internal/app/controllers"
	appMigrations "github.com/yigit/admission/internal/app/migrations"
	appRepos "github.com/yigit/admission/internal/app/repositories"
	appRoutes "github.com/yigit/admission/internal/app/routes"
	appServices "github.com/yigit/admission/internal/app/services"
	"github.com/yigit/admission/internal/config"
	"github.com/yigit/admission/internal/db"
	appMiddleware "github.com/yigit/admission/internal/middleware"
	pkgAuth "github.com/yigit/admission/internal/pkg/auth"
	"github.com/yigit/admission/internal/pkg/cache"
	"github.com/yigit/admission/internal/pkg/email"
	"github.com/yigit/admission/internal/pkg/filestorage"
	"github.com/yigit/admission/internal/pkg/httpclient"
	"github.com/yigit/admission/internal/pkg/logger"
	"github.com/yigit/admission/internal/pkg/ratelimit"
	"github.com/yigit/admission/internal/pkg/redisclient"
	"github.com/yigit/admission/internal/pkg/validation"
	"github.com/yigit/admission/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Redis       *redis.Client // nil when caching and throttling are off
	Store       filestorage.DocumentStore
	LocalStore  *filestorage.LocalStorage // set only for the local driver
	JWTService  *pkgAuth.JWTService
	Controllers appRoutes.Controllers

	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) != "json"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "admission",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the admin account.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsPath
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		account := seed.AdminAccount{
			Name:     cfg.Seed.AdminName,
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
		}
		if err := seed.CreateDefaultAdmin(ctx, database.Pool, account, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
		}
	}

	return database, nil
}

// setupRedis connects when enabled. Failures are logged and leave the client nil.
func setupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled; stats caching and login throttling are off")
		return nil
	}
	rdb, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable; continuing without cache")
		return nil
	}
	return rdb
}

func setupStorage(ctx context.Context, cfg *config.Config) (filestorage.DocumentStore, *filestorage.LocalStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverS3:
		store, err := filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
			PresignTTL:      config.Duration(cfg.Storage.PresignTTL),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		local, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	}
}

func setupMailSender(cfg *config.Config, lgr zerolog.Logger) email.Sender {
	mailLogger := lgr.With().Str("component", "mail").Logger()
	switch cfg.Mail.Provider {
	case config.MailProviderSMTP:
		return email.NewSMTPSender(email.SMTPConfig{
			Host:            cfg.Mail.SMTPHost,
			Port:            cfg.Mail.SMTPPort,
			Username:        cfg.Mail.SMTPUsername,
			Password:        cfg.Mail.SMTPPassword,
			FromName:        cfg.Mail.FromName,
			FromEmail:       cfg.Mail.From,
			DialTimeout:     config.Duration(cfg.Mail.DialTimeout),
			GreetingTimeout: config.Duration(cfg.Mail.GreetingTimeout),
			SocketTimeout:   config.Duration(cfg.Mail.SocketTimeout),
		}, mailLogger)
	case config.MailProviderSendGrid:
		return email.NewSendGridSender(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.From, mailLogger)
	default:
		return email.NewLogSender(mailLogger)
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)
	deps.Redis = setupRedis(ctx, cfg, lgr)

	stats := cache.NewCachingStatsRepository(deps.Redis, config.Duration(cfg.Redis.StatsTTL), deps.Repos.StatsRepository, "admission:stats")
	throttle := ratelimit.NewLoginThrottle(deps.Redis, cfg.Auth.LoginMaxAttempts, config.Duration(cfg.Auth.LoginWindow))

	var err error
	deps.Store, deps.LocalStore, err = setupStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize document storage")
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}
	policy := filestorage.UploadPolicy{MaxSize: cfg.Storage.MaxUploadSize, AllowedTypes: cfg.Storage.AllowedTypes}

	templates, err := email.NewStatusTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	notifier := email.NewStatusNotifier(setupMailSender(cfg, lgr), templates, cfg.Mail.FromName)

	rules, err := validation.NewRules(cfg.Auth.EmailPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation rules: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.Duration(cfg.JWT.AccessTokenExpiration),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	component := func(name string) zerolog.Logger {
		return lgr.With().Str("component", name).Logger()
	}

	authService := appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, rules, throttle, component("auth"))
	admissionService := appServices.NewAdmissionService(
		deps.Repos.ApplicationRepository,
		deps.Store,
		policy,
		stats,
		appServices.AdmissionOptions{RequirePersonalBeforeAcademic: cfg.Admission.RequirePersonalBeforeAcademic},
		component("admission"),
	)
	statusService := appServices.NewStatusService(deps.Repos.ApplicationRepository, deps.Repos.UserRepository, notifier, stats, component("status"))
	adminService := appServices.NewAdminService(deps.Repos.ApplicationRepository, stats, cfg.Admission.Fee, component("admin"))
	documentService := appServices.NewDocumentService(
		deps.Repos.ApplicationRepository,
		deps.Store,
		httpclient.NewHTTPClient(config.Duration(cfg.Admission.ProxyTimeout)),
		component("documents"),
	)
	paymentService := appServices.NewPaymentService(deps.Repos.ApplicationRepository, component("payment"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, cfg.JWT.CookieName)

	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(authService, appControllers.CookieConfig{
			Name:   cfg.JWT.CookieName,
			Domain: cfg.JWT.CookieDomain,
			Secure: cfg.JWT.CookieSecure,
			MaxAge: int(config.Duration(cfg.JWT.AccessTokenExpiration).Seconds()),
		}, lgr),
		Admission: appControllers.NewAdmissionController(admissionService, lgr),
		Admin:     appControllers.NewAdminController(adminService, statusService, documentService, lgr),
		Payment:   appControllers.NewPaymentController(paymentService, lgr),
		Health:    appControllers.NewHealthController(database),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if deps.LocalStore != nil {
		setupStaticFileServing(router, cfg, deps.LocalStore, lgr)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

// setupStaticFileServing exposes the local document directory under the public base url path
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, store *filestorage.LocalStorage, lgr zerolog.Logger) {
	prefix := "/uploads"
	if u, err := url.Parse(cfg.Storage.PublicBaseURL); err == nil && u.Path != "" && u.Path != "/" {
		prefix = strings.TrimRight(u.Path, "/")
	}
	router.Static(prefix, store.BasePath())
	lgr.Info().Str("path", store.BasePath()).Str("prefix", prefix).Msg("Static file serving configured for uploads directory")
}
