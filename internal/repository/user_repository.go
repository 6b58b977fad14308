package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskboard/taskboard-backend/internal/domain"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id string) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	Update(user *domain.User) error
	GetAll() ([]domain.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *gormUserRepository) FindByID(id string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *gormUserRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

// GetAll returns every registered user, for the assignment picker.
func (r *gormUserRepository) GetAll() ([]domain.User, error) {
	var users []domain.User
	if err := r.db.Order("name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
