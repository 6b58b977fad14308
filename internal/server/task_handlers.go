package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taskboard/taskboard-backend/internal/domain"
	"github.com/taskboard/taskboard-backend/internal/service"
)

func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	var req service.CreateTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	task, err := s.taskService.Create(r.Context(), claims.UserID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    task,
	})
}

// parseTaskFilters maps query parameters onto the filter DTO.
func parseTaskFilters(query url.Values) service.TaskFilterRequest {
	filter := service.TaskFilterRequest{
		AssignedToMe: query.Get("assignedToMe") == "true",
		CreatedByMe:  query.Get("createdByMe") == "true",
		Overdue:      query.Get("overdue") == "true",
		SortBy:       query.Get("sortBy"),
		SortOrder:    query.Get("sortOrder"),
	}
	if v := query.Get("status"); v != "" {
		status := domain.Status(v)
		filter.Status = &status
	}
	if v := query.Get("priority"); v != "" {
		priority := domain.Priority(v)
		filter.Priority = &priority
	}
	return filter
}

func (s *Server) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	filter := parseTaskFilters(r.URL.Query())
	if err := s.validate.Struct(filter); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid filter parameters")
		return
	}

	tasks, err := s.taskService.List(r.Context(), claims.UserID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) getTaskByIDHandler(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	var req service.UpdateTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	task, err := s.taskService.Update(r.Context(), chi.URLParam(r, "id"), claims.UserID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	if err := s.taskService.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) taskStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	stats, err := s.taskService.Statistics(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
