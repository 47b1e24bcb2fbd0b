package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bootcamp_backend/internal/config"
	"bootcamp_backend/internal/controller"
	"bootcamp_backend/internal/repository"
	"bootcamp_backend/internal/service"
	"bootcamp_backend/pkg/database"
	"bootcamp_backend/pkg/logger"
	"bootcamp_backend/pkg/monitoring"
	"bootcamp_backend/pkg/security"
	"bootcamp_backend/pkg/tracing"

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

	notifications *service.NotificationService
}

type repositories struct {
	user               *repository.UserRepository
	pathway            *repository.PathwayRepository
	module             *repository.ModuleRepository
	resource           *repository.ResourceRepository
	resourceCompletion *repository.ResourceCompletionRepository
	submission         *repository.SubmissionRepository
	moduleCompletion   *repository.ModuleCompletionRepository
	userProgress       *repository.UserProgressRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	notification *service.NotificationService
	progress     *service.ProgressService
	achievement  *service.AchievementService
	approval     *service.ApprovalService
	resource     *service.ResourceService
}

type controllers struct {
	auth        *controller.AuthController
	progress    *controller.ProgressController
	resource    *controller.ResourceController
	review      *controller.ReviewController
	achievement *controller.AchievementController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:               repository.NewUserRepository(db),
		pathway:            repository.NewPathwayRepository(db),
		module:             repository.NewModuleRepository(db),
		resource:           repository.NewResourceRepository(db),
		resourceCompletion: repository.NewResourceCompletionRepository(db),
		submission:         repository.NewSubmissionRepository(db),
		moduleCompletion:   repository.NewModuleCompletionRepository(db),
		userProgress:       repository.NewUserProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.notification = service.NewNotificationService(cfg)
	s.auth = service.NewAuthService(cfg, repos.user)

	s.progress = service.NewProgressService(
		repos.pathway,
		repos.module,
		repos.resource,
		repos.resourceCompletion,
		repos.submission,
		repos.moduleCompletion,
		repos.userProgress,
		rdb,
	)

	s.achievement = service.NewAchievementService(repos.userProgress, repos.moduleCompletion)

	s.approval = service.NewApprovalService(
		db,
		s.progress,
		s.achievement,
		s.notification,
		repos.module,
		repos.resource,
		repos.resourceCompletion,
		repos.submission,
		repos.moduleCompletion,
	)

	s.resource = service.NewResourceService(
		db,
		s.storage,
		s.progress,
		repos.resource,
		repos.resourceCompletion,
		repos.submission,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		progress:    controller.NewProgressController(s.progress, s.approval),
		resource:    controller.NewResourceController(s.resource),
		review:      controller.NewReviewController(s.approval, s.progress),
		achievement: controller.NewAchievementController(s.achievement),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

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

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db, rdb)

	app.notifications = services.notification

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("bootcamp-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// ReloadConfig applies a hot-reloaded configuration. Only settings that
// are safe to change on a running server are picked up: anything baked
// into middleware or open connections keeps its startup value.
func (a *App) ReloadConfig(raw interface{}) {
	cfg, ok := raw.(*config.Config)
	if !ok {
		logger.Log.Warn("config reload produced an unexpected type, ignoring")
		return
	}

	a.Config.Email = cfg.Email
	a.notifications.Reconfigure(cfg)

	logger.Log.Info("configuration reloaded",
		zap.Bool("emailEnabled", cfg.Email.Enabled),
		zap.Int("emailRecipients", len(cfg.Email.Recipients)))
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
