package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/config"
	http_controllers "github.com/mrlokans/circulation/internal/http"
	"github.com/mrlokans/circulation/internal/scheduler"
	"github.com/mrlokans/circulation/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work only after in-flight requests are drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Circulation v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	authMiddleware := auth.NewMiddleware(app.Members, sessionManager)

	csrfSecret := csrfKey(cfg.Auth.SessionSecret)
	if csrfSecret == nil {
		log.Printf("WARNING: AUTH_SESSION_SECRET is not set. CSRF protection is disabled.")
	}

	if n, err := app.Members.List(context.Background()); err == nil && len(n) == 0 {
		log.Printf("No borrowers found. Run '%s create-user -role Admin' to bootstrap an administrator.", os.Args[0])
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var notifications *scheduler.NotificationScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks, cfg.Audit))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.RegisterCirculationQueues(tasks.Deps{
			Reporter: app.Circulation,
			Scanner:  app.Circulation,
			Cleaner:  app.Audit,
			Notes:    app.Audit,
		})

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)

		if _, err := taskClient.Enqueue(tasks.CleanupAuditEventsTask{}); err != nil {
			log.Printf("WARNING: %v", err)
		}

		if cfg.Notifications.Enabled {
			notifications = scheduler.NewNotificationScheduler(taskClient, cfg.Notifications.Schedule)
			if err := notifications.Start(taskCtx); err != nil {
				log.Printf("WARNING: notification scans disabled: %v", err)
				notifications = nil
			}
		}
	} else if cfg.Notifications.Enabled {
		log.Printf("WARNING: notifications need the task queue. Set TASKS_ENABLED=true to enable them.")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Circulation:    app.Circulation,
		Catalog:        app.Catalog,
		Members:        app.Members,
		Database:       app.DB,
		Audit:          app.Audit,
		Sessions:       sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TaskClient:     taskClient,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if notifications != nil {
			notifications.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// csrfKey decodes a hex secret, falling back to its raw bytes. An empty
// secret yields nil.
func csrfKey(secret string) []byte {
	if secret == "" {
		return nil
	}
	if key, err := hex.DecodeString(secret); err == nil {
		return key
	}
	return []byte(secret)
}
