package server

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

	"blitzit/internal/config"
	"blitzit/internal/focus"
	"blitzit/internal/handler"
	"blitzit/internal/lifecycle"
	"blitzit/internal/middleware"
	"blitzit/internal/reminder"
	"blitzit/internal/report"
	"blitzit/internal/repository"
	"blitzit/migrations"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config

	focus  *focus.Manager
	poller *reminder.Poller
}

// Open connects to Postgres and applies migrations when DB_AUTO_MIGRATE is set.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if cfg.DBAutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(sqlDB); err != nil {
			return nil, fmt.Errorf("❌ failed to migrate: %w", err)
		}
		log.Println("✅ Schema is up to date")
	}
	return db, nil
}

func Init(cfg *config.Config) (*Server, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	r.Use(middleware.CORS())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	reportRepo := repository.NewReportRepository(db)

	engine := lifecycle.NewEngine()
	focusManager := focus.NewManager(focus.SecondTicker)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, projectRepo, cfg.JWTSecret, cfg.JWTExpiry())
	projectHandler := handler.NewProjectHandler(projectRepo)
	taskHandler := handler.NewTaskHandler(taskRepo, projectRepo, engine)
	var poller *reminder.Poller
	if cfg.ReminderEnabled {
		poller = newPoller(cfg, taskRepo)
		taskHandler.WithReminders(poller)
	}
	subtaskHandler := handler.NewSubtaskHandler(subtaskRepo)
	reportHandler := handler.NewReportHandler(reportRepo, userRepo, report.NewGenerator(cfg.PDFFontPath))
	focusHandler := handler.NewFocusHandler(taskRepo, focusManager, engine)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Blitzit API"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/me", userHandler.Me)
		authorized.PUT("/me/telegram", userHandler.LinkTelegram)

		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.GetAll)
		authorized.GET("/tasks/archived", taskHandler.GetArchived)
		authorized.GET("/tasks/matrix", taskHandler.GetMatrix)
		authorized.PUT("/tasks/reorder", taskHandler.Reorder)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.PATCH("/tasks/:id/move", taskHandler.Move)
		authorized.PATCH("/tasks/:id/matrix", taskHandler.MatrixDrop)
		authorized.POST("/tasks/:id/drop", taskHandler.Drop)
		authorized.POST("/tasks/:id/reopen", taskHandler.Reopen)
		authorized.POST("/tasks/:id/complete", taskHandler.Complete)
		authorized.POST("/tasks/:id/archive", taskHandler.Archive)
		authorized.POST("/tasks/:id/unarchive", taskHandler.Unarchive)

		// Subtask routes
		authorized.POST("/tasks/:id/subtasks", subtaskHandler.Create)
		authorized.GET("/tasks/:id/subtasks", subtaskHandler.GetByTask)
		authorized.PUT("/subtasks/:id", subtaskHandler.Update)
		authorized.DELETE("/subtasks/:id", subtaskHandler.Delete)

		// Focus routes
		authorized.POST("/focus/start", focusHandler.Start)
		authorized.GET("/focus", focusHandler.Get)
		authorized.POST("/focus/toggle", focusHandler.Toggle)
		authorized.POST("/focus/save", focusHandler.Save)
		authorized.POST("/focus/skip", focusHandler.Skip)
		authorized.POST("/focus/complete", focusHandler.Complete)
		authorized.DELETE("/focus", focusHandler.End)

		// Report routes
		authorized.GET("/dashboard/stats", reportHandler.Stats)
		authorized.GET("/reports/summary", reportHandler.Summary)
		authorized.GET("/reports/export", reportHandler.Export)
	}

	s := &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		focus:  focusManager,
		poller: poller,
	}
	return s, nil
}

func newPoller(cfg *config.Config, source reminder.TaskSource) *reminder.Poller {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("component", "reminder")

	notifiers := []reminder.Notifier{reminder.LogNotifier{Logger: logger}}
	if cfg.SMTPHost != "" {
		notifiers = append(notifiers, reminder.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom))
	}
	if cfg.TelegramBotToken != "" {
		notifiers = append(notifiers, reminder.NewTelegramNotifier(cfg.TelegramBotToken))
	}
	for _, n := range notifiers {
		log.Printf("✅ Reminder channel enabled: %v", n)
	}
	return reminder.NewPoller(source, cfg.ReminderInterval(), logger, notifiers...)
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if s.poller != nil {
		go s.poller.Run(ctx)
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	stopBackground()
	s.focus.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
