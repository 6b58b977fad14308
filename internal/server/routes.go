package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/taskboard/taskboard-backend/internal/domain"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.rootHandler)
	r.Get("/health", s.healthHandler)
	r.Get("/ws", s.hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.registerHandler)
			r.Post("/login", s.loginHandler)
			r.Post("/logout", s.logoutHandler)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Get("/me", s.currentUserHandler)
				r.Put("/profile", s.updateProfileHandler)
				r.Get("/users", s.listUsersHandler)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/stats/dashboard", s.taskStatisticsHandler)
			r.Post("/", s.createTaskHandler)
			r.Get("/", s.listTasksHandler)
			r.Get("/{id}", s.getTaskByIDHandler)
			r.Put("/{id}", s.updateTaskHandler)
			r.Delete("/{id}", s.deleteTaskHandler)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/", s.listNotificationsHandler)
			r.Get("/unread-count", s.unreadCountHandler)
			r.Put("/read-all", s.markAllNotificationsReadHandler)
			r.Put("/{id}/read", s.markNotificationReadHandler)
		})
	})

	return r
}

func allowedOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return strings.Split(origins, ",")
	}
	return []string{"https://*", "http://*"}
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Task Manager API is running",
		"status":  "ok",
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// decodeJSON decodes a request body into dst and runs struct validation.
// A false return means the response has already been written.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxError):
			msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
			respondWithError(w, http.StatusBadRequest, msg)
		case errors.Is(err, io.ErrUnexpectedEOF):
			respondWithError(w, http.StatusBadRequest, "Request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
			respondWithError(w, http.StatusBadRequest, msg)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Request body contains unknown field %s", fieldName))
		case errors.Is(err, io.EOF):
			respondWithError(w, http.StatusBadRequest, "Request body must not be empty")
		default:
			log.Printf("Error decoding request body: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Error processing request")
		}
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			details := make([]map[string]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				details = append(details, map[string]string{
					"field":   fieldErr.Field(),
					"message": fmt.Sprintf("failed on the %q rule", fieldErr.Tag()),
				})
			}
			respondWithJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Validation failed",
				"details": details,
			})
			return false
		}
		respondWithError(w, http.StatusBadRequest, "Validation failed")
		return false
	}

	return true
}

// respondServiceError translates the service-layer failure taxonomy into
// status codes. Everything unclassified is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidDueDate),
		errors.Is(err, domain.ErrValidationFailed):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Unhandled service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
