package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OpenGRC/console/internal/audit"
	"github.com/OpenGRC/console/internal/auth"
	"github.com/OpenGRC/console/internal/config"
	"github.com/OpenGRC/console/internal/database"
	formmodel "github.com/OpenGRC/console/internal/forms/model"
	formrouter "github.com/OpenGRC/console/internal/forms/router"
	formservice "github.com/OpenGRC/console/internal/forms/service"
	"github.com/OpenGRC/console/internal/groups"
	"github.com/OpenGRC/console/internal/middleware"
	"github.com/OpenGRC/console/internal/registry"
	"github.com/OpenGRC/console/internal/requests"
	"github.com/OpenGRC/console/internal/uploads"
	workflowmodel "github.com/OpenGRC/console/internal/workflow/model"
	workflowrouter "github.com/OpenGRC/console/internal/workflow/router"
	workflowservice "github.com/OpenGRC/console/internal/workflow/service"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
	)

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allowed_methods", cfg.CORS.AllowedMethods,
		"allowed_headers", cfg.CORS.AllowedHeaders,
		"allow_credentials", cfg.CORS.AllowCredentials,
		"max_age", cfg.CORS.MaxAge,
	)

	slog.Info("server configuration",
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	if err := db.AutoMigrate(
		&auth.Principal{},
		&registry.FieldRequirement{},
		&formmodel.FormLayout{},
		&formmodel.FieldAccessRule{},
		&workflowmodel.WorkflowStep{},
		&groups.ApproverGroup{},
		&requests.FormSubmission{},
	); err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	// The audit trail lives in its own SQLite database so that admin
	// actions stay recorded even when the primary database is rolled back.
	trail, err := audit.NewTrail(cfg.Audit.DBPath)
	if err != nil {
		log.Fatalf("failed to open audit trail: %v", err)
	}
	defer func() {
		if err := trail.Close(); err != nil {
			slog.Error("failed to close audit trail", "error", err)
		}
	}()

	ctx := context.Background()
	storage, err := uploads.NewStorageFromConfig(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize evidence storage: %v", err)
	}

	// Wire services
	authService := auth.NewAuthService(db)
	registryService := registry.NewService(registry.NewStore(db))
	layoutStore := formservice.NewLayoutStore(db)
	accessStore := formservice.NewAccessStore(db)
	accessResolver := formservice.NewAccessResolver(accessStore)
	groupService := groups.NewService(db)
	stepService := workflowservice.NewStepService(db, workflowservice.NewStepStore(), trail)
	submissionService := requests.NewService(db, layoutStore, registryService, accessResolver, trail)
	evidenceService := uploads.NewEvidenceService(storage)

	// Set up HTTP routes
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(&cfg.CORS))
	engine.Use(auth.Middleware(authService))

	engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	registry.NewRouter(registryService).Register(api)
	formrouter.NewFormsRouter(layoutStore, accessStore, accessResolver).Register(api)
	workflowrouter.NewWorkflowRouter(stepService, groupService).Register(api)
	groups.NewRouter(groupService).Register(api)
	requests.NewRouter(submissionService).Register(api)
	uploads.NewHTTPHandler(evidenceService).Register(api)

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: engine,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
