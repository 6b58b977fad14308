package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"

	"github.com/taskboard/taskboard-backend/internal/auth"
	"github.com/taskboard/taskboard-backend/internal/database"
	"github.com/taskboard/taskboard-backend/internal/realtime"
	"github.com/taskboard/taskboard-backend/internal/service"
)

type Server struct {
	port int

	authService         service.AuthService
	taskService         service.TaskService
	notificationService service.NotificationService
	tokens              *auth.TokenIssuer
	hub                 *realtime.Hub
	db                  database.Service
	validate            *validator.Validate
}

func NewServer(
	authService service.AuthService,
	taskService service.TaskService,
	notificationService service.NotificationService,
	tokens *auth.TokenIssuer,
	hub *realtime.Hub,
	dbService database.Service,
) *http.Server {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		fmt.Printf("Warning: Invalid PORT environment variable '%s'. Using default 8080. Error: %v", portStr, err)
		port = 8080
	}

	appServer := &Server{
		port:                port,
		authService:         authService,
		taskService:         taskService,
		notificationService: notificationService,
		tokens:              tokens,
		hub:                 hub,
		db:                  dbService,
		validate:            validator.New(validator.WithRequiredStructEnabled()),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
