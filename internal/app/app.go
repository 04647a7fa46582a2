package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simedu_backend/internal/config"
	"simedu_backend/internal/controller"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/service"
	"simedu_backend/internal/util"
	"simedu_backend/pkg/database"
	"simedu_backend/pkg/logger"
	"simedu_backend/pkg/monitoring"
	"simedu_backend/pkg/security"
	"simedu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	simulation *repository.SimulationRepository
	session    *repository.SessionRepository
	report     *repository.ReportRepository
	contact    *repository.ContactRepository
}

type services struct {
	auth       *service.AuthService
	directory  *service.DirectoryService
	enrollment *service.EnrollmentService
	simulation *service.SimulationService
	report     *service.ReportService
	contact    *service.ContactService
	asset      *service.AssetService
	mail       *service.MailService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	class      *controller.ClassController
	simulation *controller.SimulationController
	report     *controller.ReportController
	contact    *controller.ContactController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		simulation: repository.NewSimulationRepository(db),
		session:    repository.NewSessionRepository(db),
		report:     repository.NewReportRepository(db),
		contact:    repository.NewContactRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	s.mail = service.NewMailService(service.NewMailer(cfg.Mail), cfg.Mail)
	s.auth = service.NewAuthService(repos.user, repos.contact, s.mail, cfg)
	s.directory = service.NewDirectoryService(repos.user)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, repos.user, db)

	assistant := service.NewAssistantService(cfg.Assistant)
	s.simulation = service.NewSimulationService(repos.simulation, repos.course, repos.session, assistant)

	s.report = service.NewReportService(repos.report, repos.course, repos.user, repos.enrollment, repos.simulation, rdb)
	s.contact = service.NewContactService(repos.contact, s.mail)

	asset, err := service.NewAssetService(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	s.asset = asset

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.directory),
		class:      controller.NewClassController(s.enrollment),
		simulation: controller.NewSimulationController(s.simulation, s.asset),
		report:     controller.NewReportController(s.report),
		contact:    controller.NewContactController(s.contact),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(
		cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
	))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("simulation-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg, repos.user)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/assets", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
