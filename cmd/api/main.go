package main

import (
	"context"
	"log"
	"net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/config"
	"github.com/noah-isme/oppia-go-api/internal/database"
	"github.com/noah-isme/oppia-go-api/internal/handler"
	"github.com/noah-isme/oppia-go-api/internal/middleware"
	"github.com/noah-isme/oppia-go-api/internal/repository"
	"github.com/noah-isme/oppia-go-api/internal/router"
	"github.com/noah-isme/oppia-go-api/internal/service"
	"github.com/noah-isme/oppia-go-api/internal/views"
	cloud "github.com/noah-isme/oppia-go-api/pkg/cloudinary"
	"github.com/noah-isme/oppia-go-api/pkg/mailer"
	"github.com/noah-isme/oppia-go-api/pkg/storage"
)

const certificateMediaPath = "/media/certificates"

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var (
		natsConn  *nats.Conn
		publisher service.TrackerPublisher
	)
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer func() { _ = natsConn.Drain() }()
		publisher = service.NewNATSTrackerPublisher(natsConn, cfg.TrackerSubject, logger)
	}

	certificateStore, serveLocal := newCertificateStore(cfg, logger)
	sender := newEmailSender(cfg, logger)
	engine := views.New()
	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	authService := service.NewAuthService(userRepo)
	courseService := service.NewCourseService(courseRepo, userRepo, repository.NewTrackerRepository(db), publisher, redisClient, service.CourseServiceConfig{
		BaseURL:   cfg.BaseURL,
		UploadDir: cfg.CourseUploadDir,
		CacheTTL:  cfg.CourseCacheTTL,
	}, logger)
	certificateService := service.NewCertificateService(userRepo, repository.NewAwardRepository(db), repository.NewSettingRepository(db),
		certificateStore, engine, sender, validate, cfg.BaseURL, logger)
	quizAttemptService := service.NewQuizAttemptService(repository.NewQuizRepository(db), userRepo, courseRepo, logger)
	recoveryService := service.NewDataRecoveryService(repository.NewDataRecoveryRepository(db), validate, logger)
	accessLogService := service.NewAccessLogService(repository.NewAccessLogRepository(db), logger)

	site := service.NewAdminSite()
	for _, registration := range []service.ModelAdmin{
		service.NewDashboardAccessLogAdmin(accessLogService),
		service.NewDataRecoveryAdmin(recoveryService),
	} {
		if err := site.Register(registration); err != nil {
			log.Fatalf("failed to register admin model: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		Views:        engine,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLogging: cfg.AppEnv == "development"})
	if serveLocal {
		app.Static(certificateMediaPath, cfg.CertificateDir)
	}

	router.Register(app, cfg, router.Dependencies{
		CourseHandler:       handler.NewCourseHandler(courseService, logger, router.DownloadLimiter(cfg)),
		ProfileHandler:      handler.NewProfileHandler(certificateService, quizAttemptService, logger),
		AdminHandler:        handler.NewAdminHandler(site, recoveryService, logger),
		HealthProbes:        healthProbes(db, redisClient, natsConn),
		APIKeyMiddleware:    middleware.APIKeyAuth(authService),
		SessionMiddleware:   []fiber.Handler{middleware.JWTProtected(cfg.JWTSecret), middleware.LoadUser(authService)},
		AccessLogMiddleware: middleware.AccessLog(accessLogService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// newCertificateStore prefers Cloudinary and falls back to the local media
// directory, which the server then serves itself.
func newCertificateStore(cfg config.Config, logger zerolog.Logger) (service.FileStorage, bool) {
	if cfg.CloudinaryCloudName != "" {
		store, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		return store, false
	}

	store, err := storage.NewLocal(cfg.CertificateDir, cfg.BaseURL+certificateMediaPath, logger)
	if err != nil {
		log.Fatalf("failed to prepare certificate directory: %v", err)
	}
	return store, true
}

func newEmailSender(cfg config.Config, logger zerolog.Logger) service.EmailSender {
	if cfg.SendgridAPIKey == "" {
		logger.Warn().Msg("sendgrid api key missing, certificate emails are only logged")
		return mailer.NewLogSender(logger)
	}

	from, err := mail.ParseAddress(cfg.EmailFrom)
	if err != nil {
		log.Fatalf("invalid sender address %q: %v", cfg.EmailFrom, err)
	}
	sender, err := mailer.NewSendgridSender(cfg.SendgridAPIKey, *from, cfg.AppName, logger)
	if err != nil {
		log.Fatalf("failed to create sendgrid sender: %v", err)
	}
	return sender
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if natsConn.Status() != nats.CONNECTED {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
