package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	notifications, err := s.notificationService.ListForUser(claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (s *Server) unreadCountHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	count, err := s.notificationService.UnreadCount(claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (s *Server) markNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.notificationService.MarkAsRead(chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (s *Server) markAllNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	if err := s.notificationService.MarkAllAsRead(claims.UserID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
