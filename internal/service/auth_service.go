package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskboard/taskboard-backend/internal/auth"
	"github.com/taskboard/taskboard-backend/internal/domain"
	"github.com/taskboard/taskboard-backend/internal/repository"
)

// RegisterRequest holds the data needed to register a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

// LoginRequest holds the credentials for a login attempt.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries a partial profile update. Absent fields are
// left unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UserResponse is the public representation of a user. The password hash
// never leaves the service layer.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse pairs a user with a freshly issued session token.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles registration, login and profile management.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Profile(ctx context.Context, userID string) (*UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	log    *slog.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, log *slog.Logger) AuthService {
	return &authService{users: users, tokens: tokens, log: log}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	_, err := s.users.FindByEmail(req.Email)
	if err == nil {
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		s.log.Error("failed to look up email", "error", err)
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: hash,
	}
	if err := s.users.Create(user); err != nil {
		s.log.Error("failed to create user", "error", err)
		return nil, err
	}

	return s.authResponse(user)
}

// Login verifies credentials. An unknown email and a wrong password fail the
// same way so callers cannot probe which addresses are registered.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *authService) Profile(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.users.FindByEmail(*req.Email)
		if err == nil && existing.ID != userID {
			return nil, domain.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := s.users.Update(user); err != nil {
		s.log.Error("failed to update profile", "userId", userID, "error", err)
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ListUsers returns every account, for the task assignment picker.
func (s *authService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.users.GetAll()
	if err != nil {
		return nil, err
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	return responses, nil
}

func (s *authService) authResponse(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.log.Error("failed to issue token", "userId", user.ID, "error", err)
		return nil, err
	}
	return &AuthResponse{User: toUserResponse(user), Token: token}, nil
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
