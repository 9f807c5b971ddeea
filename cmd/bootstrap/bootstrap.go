package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"hospital-scheduling/config"
	deliveryHttp "hospital-scheduling/internal/delivery/http"
	"hospital-scheduling/internal/delivery/http/handler"
	"hospital-scheduling/internal/delivery/http/middleware"
	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/infrastructure/broker"
	"hospital-scheduling/internal/infrastructure/cache"
	"hospital-scheduling/internal/infrastructure/database"
	"hospital-scheduling/internal/observability/metrics"
	"hospital-scheduling/internal/observability/tracing"
	"hospital-scheduling/internal/repository"
	"hospital-scheduling/internal/repository/memory"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/jwt"
	"hospital-scheduling/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Publisher   *broker.Publisher
	Server      *http.Server

	Auth    usecase.AuthUsecase
	Booking usecase.BookingUsecase
	Gate    service.SlotGate
	Sweeper *service.CompletionSweeper

	shutdownTracing tracing.ShutdownFunc
}

// repositories is one storage backend's set of repositories.
type repositories struct {
	slots        domainRepo.SlotStore
	ledger       domainRepo.LedgerRepository
	hospitals    domainRepo.HospitalRepository
	departments  domainRepo.DepartmentRepository
	associations domainRepo.AssociationRepository
	audits       domainRepo.AuditLogRepository
	profiles     domainRepo.ProfileRepository
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Info("Configuration loaded successfully")

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.App.Timezone, err)
	}

	app.shutdownTracing, err = tracing.Setup(context.Background(), cfg.Tracing, cfg.App.Env, app.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	repos, err := app.initializeStorage()
	if err != nil {
		app.Close()
		return nil, err
	}

	// Redis backs the slot gate and the rate limiter. Both degrade to
	// no-ops when it is unreachable.
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis, app.Log)
		if err != nil {
			app.Log.Warnf("Redis unavailable, continuing without slot gate and rate limiter: %+v", err)
		} else {
			app.RedisClient = redisClient
		}
	}

	events := service.NewNoopEventPublisher()
	if cfg.Broker.Enabled {
		publisher, err := broker.NewPublisher(cfg.Broker, app.Log)
		if err != nil {
			app.Log.Warnf("RabbitMQ unavailable, domain events disabled: %+v", err)
		} else {
			app.Publisher = publisher
			events = service.NewBrokerEventPublisher(publisher, app.Log)
		}
	}

	var schedulingMetrics *metrics.SchedulingMetrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		schedulingMetrics = metrics.NewSchedulingMetrics(registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	allocator, err := newRevenueAllocator(cfg.Revenue)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Gate = service.NewNoopSlotGate()
	if app.RedisClient != nil {
		app.Gate = service.NewRedisSlotGate(app.RedisClient, repos.slots, app.Log, cfg.Booking.ClaimTTL)
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize usecases
	audit := service.NewAuditService(app.Log, repos.audits)
	availabilityUsecase := usecase.NewAvailabilityUsecase(app.Log, repos.slots, repos.associations, audit, events, schedulingMetrics, location)
	app.Booking = usecase.NewBookingUsecase(app.Log, repos.slots, allocator, app.Gate, audit, events, schedulingMetrics, usecase.BookingPolicy{
		CompletionPolicy: cfg.Booking.CompletionPolicy,
		CompletionGrace:  cfg.Booking.CompletionGrace,
		MaxRetries:       cfg.Booking.MaxRetries,
	})
	associationUsecase := usecase.NewAssociationUsecase(app.Log, repos.associations, repos.hospitals, audit)
	hospitalUsecase := usecase.NewHospitalUsecase(app.Log, repos.hospitals, repos.departments, repos.associations, audit)
	revenueUsecase := usecase.NewRevenueUsecase(app.Log, repos.ledger, repos.hospitals, location)
	auditLogUsecase := usecase.NewAuditLogUsecase(app.Log, repos.audits)
	app.Auth = usecase.NewAuthUsecase(app.Log, repos.profiles, jwtService)

	if cfg.Booking.CompletionPolicy == entity.CompletionPolicyDoctorOrElapsed {
		app.Sweeper = service.NewCompletionSweeper(app.Booking, cfg.Booking.SweepInterval, app.Log)
	}

	// Initialize handlers
	customValidator := validator.NewValidator()
	authHandler := handler.NewAuthHandler(app.Auth)
	hospitalHandler := handler.NewHospitalHandler(hospitalUsecase, associationUsecase, customValidator)
	associationHandler := handler.NewAssociationHandler(associationUsecase, customValidator)
	slotHandler := handler.NewSlotHandler(availabilityUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(app.Booking, customValidator)
	revenueHandler := handler.NewRevenueHandler(revenueUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins...)
	var rateLimiter *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled && app.RedisClient != nil {
		rateLimiter = middleware.NewRateLimitMiddleware(app.RedisClient, app.Log, cfg.RateLimit)
	}

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		hospitalHandler,
		associationHandler,
		slotHandler,
		bookingHandler,
		revenueHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		rateLimiter,
		metricsHandler,
	)

	var rootHandler http.Handler = router.Setup()
	if cfg.Tracing.Enabled {
		rootHandler = otelhttp.NewHandler(rootHandler, cfg.Tracing.ServiceName)
	}

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           rootHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// initializeStorage opens the configured backend. The memory backend keeps
// everything in process and is meant for development and demos.
func (app *App) initializeStorage() (*repositories, error) {
	if app.Config.Storage.Driver == config.StorageDriverMemory {
		app.Log.Warn("Using in-memory storage, data is lost on restart")
		ledger := memory.NewLedgerRepository()
		return &repositories{
			slots:        memory.NewSlotStore(ledger),
			ledger:       ledger,
			hospitals:    memory.NewHospitalRepository(),
			departments:  memory.NewDepartmentRepository(),
			associations: memory.NewAssociationRepository(),
			audits:       memory.NewAuditLogRepository(),
			profiles:     memory.NewProfileRepository(),
		}, nil
	}

	db, err := database.NewPostgresConnection(app.Config.DB, app.Config.App.Timezone, app.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Log.Info("Database connected successfully")

	return &repositories{
		slots:        repository.NewSlotStore(db),
		ledger:       repository.NewLedgerRepository(db),
		hospitals:    repository.NewHospitalRepository(db),
		departments:  repository.NewDepartmentRepository(db),
		associations: repository.NewAssociationRepository(db),
		audits:       repository.NewAuditLogRepository(db),
		profiles:     repository.NewProfileRepository(db),
	}, nil
}

func newRevenueAllocator(cfg config.RevenueConfig) (*service.RevenueAllocator, error) {
	allocator, err := service.NewRevenueAllocator(cfg.Rates, cfg.Overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid revenue rates: %w", err)
	}
	return allocator, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Rebuild gate claims before taking bookings. A failed sync only costs
	// the fast path; the store still decides.
	syncCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.Gate.SyncOnStartup(syncCtx); err != nil {
		app.Log.Warnf("Slot gate sync failed: %+v", err)
	}
	cancel()

	if app.Sweeper != nil {
		app.Sweeper.Start()
	}

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	if app.Sweeper != nil {
		app.Sweeper.Stop()
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections and flushes pending traces.
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close broker connection: %+v", err)
		}
	}

	if app.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.shutdownTracing(ctx); err != nil {
			app.Log.Warnf("Failed to flush traces: %+v", err)
		}
	}
}
