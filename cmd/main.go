package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"rentfolio/internal/caching"
	"rentfolio/internal/config"
	"rentfolio/internal/handlers"
	"rentfolio/internal/jobs"
	"rentfolio/internal/jobs/background"
	"rentfolio/internal/middleware"
	"rentfolio/internal/repositories"
	"rentfolio/internal/services"
	"rentfolio/pkg/database"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; tokens will not survive a restart")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	for _, bucket := range []string{cfg.Storage.DocumentBucket, cfg.Storage.ReceiptBucket, cfg.Storage.MaintenanceBucket} {
		if err := storageSvc.EnsureBucketExists(context.Background(), bucket); err != nil {
			log.Printf("WARN: could not ensure bucket %s: %v", bucket, err)
		}
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	propertyRepo := repositories.NewPropertyRepo(pool)
	documentRepo := repositories.NewDocumentRepo(pool)
	leaseRepo := repositories.NewLeaseRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	maintenanceRepo := repositories.NewMaintenanceRepo(pool)
	messageRepo := repositories.NewMessageRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Task queue client for notification fan-out
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	defer asynqClient.Close()
	notifier := jobs.NewAsynqNotifier(asynqClient)

	// Services
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, cfg.Auth.AccessTokenTTLSeconds, cfg.Auth.RefreshTokenTTLSeconds)
	profileSvc := services.NewProfileService(profileRepo, cacheSvc, storageSvc, cfg.Storage.DocumentBucket)
	propertySvc := services.NewPropertyService(propertyRepo, profileRepo, cacheSvc)
	tenancySvc := services.NewTenancyService(pool, userRepo, profileRepo, propertyRepo, cacheSvc)
	documentSvc := services.NewDocumentService(documentRepo, storageSvc, cfg.Storage.DocumentBucket)
	leaseSvc := services.NewLeaseService(leaseRepo, propertyRepo, profileRepo)
	paymentSvc := services.NewPaymentService(paymentRepo, leaseRepo, storageSvc, cfg.Storage.ReceiptBucket, notifier)
	maintenanceSvc := services.NewMaintenanceService(maintenanceRepo, propertyRepo, storageSvc, cfg.Storage.MaintenanceBucket)
	messageSvc := services.NewMessageService(messageRepo, profileRepo, notifier)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, profileRepo, cacheSvc)
	profileHandlers := handlers.NewProfileHandlers(profileSvc)
	propertyHandlers := handlers.NewPropertyHandlers(propertySvc, tenancySvc)
	documentHandlers := handlers.NewDocumentHandlers(documentSvc, propertySvc)
	leaseHandlers := handlers.NewLeaseHandlers(leaseSvc, propertySvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc, leaseSvc, propertySvc)
	maintenanceHandlers := handlers.NewMaintenanceHandlers(maintenanceSvc, propertySvc)
	messageHandlers := handlers.NewMessageHandlers(messageSvc)
	dashboardHandlers := handlers.NewDashboardHandlers(propertySvc, maintenanceSvc, messageSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Echo instance and global middleware
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := e.Group("/v1")

	// Authentication routes (no token required)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Protected routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(authSvc)))
	protected.Use(middleware.AuditRequest())

	protected.POST("/auth/logout", authHandlers.Logout)
	protected.GET("/auth/session", authHandlers.Session)

	// Profile routes
	protected.GET("/profiles/me", profileHandlers.GetMe)
	protected.PUT("/profiles/me", profileHandlers.UpdateMe)
	protected.POST("/profiles/me/avatar", profileHandlers.UploadAvatar)
	protected.GET("/profiles/search", profileHandlers.SearchRenters, middleware.RequireOwner())

	// Dashboard
	protected.GET("/dashboard", dashboardHandlers.Summary)

	// Property routes
	protected.GET("/properties", propertyHandlers.List)
	protected.POST("/properties", propertyHandlers.Create, middleware.RequireOwner())
	protected.GET("/properties/:id", propertyHandlers.Get)
	protected.PUT("/properties/:id", propertyHandlers.Update, middleware.RequireOwner())
	protected.DELETE("/properties/:id", propertyHandlers.Delete, middleware.RequireOwner())
	protected.PUT("/properties/:id/tenant", propertyHandlers.AssignTenant, middleware.RequireOwner())
	protected.POST("/properties/:id/tenant", propertyHandlers.ProvisionTenant, middleware.RequireOwner())
	protected.DELETE("/properties/:id/tenant", propertyHandlers.RemoveTenant, middleware.RequireOwner())

	// Document routes
	protected.POST("/documents", documentHandlers.Upload)
	protected.GET("/properties/:id/documents", documentHandlers.List)
	protected.GET("/documents/:id/url", documentHandlers.DownloadURL)
	protected.DELETE("/documents/:id", documentHandlers.Delete)

	// Lease routes
	protected.POST("/leases", leaseHandlers.Create, middleware.RequireOwner())
	protected.GET("/leases/mine", leaseHandlers.ListMine)
	protected.GET("/leases/:id", leaseHandlers.Get)
	protected.PUT("/leases/:id", leaseHandlers.Update, middleware.RequireOwner())
	protected.DELETE("/leases/:id", leaseHandlers.Delete, middleware.RequireOwner())
	protected.GET("/properties/:id/leases", leaseHandlers.ListByProperty)

	// Payment routes
	protected.POST("/payments", paymentHandlers.Create)
	protected.GET("/payments/:id", paymentHandlers.Get)
	protected.PUT("/payments/:id/status", paymentHandlers.UpdateStatus)
	protected.POST("/payments/:id/receipt", paymentHandlers.UploadReceipt)
	protected.GET("/payments/:id/receipt", paymentHandlers.ReceiptURL)
	protected.DELETE("/payments/:id", paymentHandlers.Delete)
	protected.GET("/leases/:id/payments", paymentHandlers.ListByLease)

	// Maintenance routes
	protected.POST("/maintenance", maintenanceHandlers.Create)
	protected.GET("/maintenance/mine", maintenanceHandlers.ListMine)
	protected.GET("/maintenance/:id", maintenanceHandlers.Get)
	protected.PUT("/maintenance/:id", maintenanceHandlers.Update)
	protected.DELETE("/maintenance/:id", maintenanceHandlers.Delete)
	protected.POST("/maintenance/:id/images", maintenanceHandlers.UploadImage)
	protected.GET("/maintenance/:id/images", maintenanceHandlers.ListImages)
	protected.GET("/properties/:id/maintenance", maintenanceHandlers.ListByProperty)

	// Message routes
	protected.POST("/messages", messageHandlers.Send)
	protected.GET("/messages/inbox", messageHandlers.Inbox)
	protected.GET("/messages/sent", messageHandlers.Sent)
	protected.PUT("/messages/:id/read", messageHandlers.MarkRead)
	protected.DELETE("/messages/:id", messageHandlers.Delete)

	// Background scheduler
	scheduler := background.NewJobScheduler(paymentSvc, authSvc, cfg.OverdueSweepInterval(), cfg.TokenCleanupInterval())
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Asynq worker for queued notifications
	asynqServer := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB},
		asynq.Config{
			Concurrency: cfg.Queuing.Concurrency,
			Queues:      cfg.Queuing.QueuePriorities,
		},
	)
	mux := asynq.NewServeMux()
	jobs.NewNotificationProcessor(profileRepo, messageRepo).RegisterHandlers(mux)
	go func() {
		if err := asynqServer.Run(mux); err != nil {
			log.Printf("Asynq worker stopped: %v", err)
		}
	}()
	defer asynqServer.Shutdown()

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("Rentfolio server v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
