package server

import (
	"net/http"

	"github.com/taskboard/taskboard-backend/internal/auth"
	"github.com/taskboard/taskboard-backend/internal/service"
)

// setTokenCookie stores the session token as an HTTP-only cookie alongside
// the JSON response, matching the 7-day token validity.
func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenValidity.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.authService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	respondWithJSON(w, http.StatusCreated, result)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.authService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)
	user, err := s.authService.Profile(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	var req service.UpdateProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.authService.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.authService.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"users": users})
}
