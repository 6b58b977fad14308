package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskboard/taskboard-backend/internal/auth"
	"github.com/taskboard/taskboard-backend/internal/database"
	"github.com/taskboard/taskboard-backend/internal/domain"
	"github.com/taskboard/taskboard-backend/internal/realtime"
	"github.com/taskboard/taskboard-backend/internal/repository"
	"github.com/taskboard/taskboard-backend/internal/server"
	"github.com/taskboard/taskboard-backend/internal/service"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if dbService != nil {
		log.Println("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		}
	}

	log.Println("Server exiting")
	done <- true
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	dbService := database.New()
	gormDB := dbService.GetDB()

	if err := gormDB.AutoMigrate(&domain.User{}, &domain.Task{}, &domain.Notification{}); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	tokens := auth.NewTokenIssuer([]byte(secret))

	userRepo := repository.NewGormUserRepository(gormDB)
	taskRepo := repository.NewGormTaskRepository(gormDB)
	notificationRepo := repository.NewGormNotificationRepository(gormDB)

	authService := service.NewAuthService(userRepo, tokens, logger)
	notificationService := service.NewNotificationService(notificationRepo, taskRepo, logger)

	// The hub is built once here and handed to every component that
	// publishes; nothing fetches it from ambient state.
	hub := realtime.NewHub(notificationService, logger)
	go hub.Run()

	taskService := service.NewTaskService(taskRepo, notificationService, hub, logger)

	apiServer := server.NewServer(authService, taskService, notificationService, tokens, hub, dbService)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, done)

	log.Printf("Starting server on %s", apiServer.Addr)
	err := apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
