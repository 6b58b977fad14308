package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskboard/taskboard-backend/internal/domain"
)

// TaskFilters narrows a task listing. All set fields are combined with AND.
type TaskFilters struct {
	Status       *domain.Status
	Priority     *domain.Priority
	AssignedToID *string
	CreatorID    *string
	Overdue      bool
}

// TaskSort selects the listing order. Zero value means created_at descending.
type TaskSort struct {
	Field string // one of dueDate, createdAt, priority, status
	Desc  bool
}

// sortColumns whitelists the sortable fields against their column names.
var sortColumns = map[string]string{
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"priority":  "priority",
	"status":    "status",
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(task *domain.Task) error
	FindByID(id string) (*domain.Task, error)
	FindAll(filters TaskFilters, sort TaskSort) ([]domain.Task, error)
	Update(id string, patch map[string]any) error
	Delete(id string) error
	CountAssignedTo(userID string) (int64, error)
	CountCreatedBy(userID string) (int64, error)
	CountOverdue(userID string) (int64, error)
}

type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM task repository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(task *domain.Task) error {
	return r.db.Create(task).Error
}

// FindByID loads a task with its creator and assignee summaries.
func (r *gormTaskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	result := r.db.Preload("Creator").Preload("AssignedTo").First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

func (r *gormTaskRepository) FindAll(filters TaskFilters, sort TaskSort) ([]domain.Task, error) {
	query := r.db.Preload("Creator").Preload("AssignedTo")

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filters.AssignedToID)
	}
	if filters.CreatorID != nil {
		query = query.Where("creator_id = ?", *filters.CreatorID)
	}
	if filters.Overdue {
		query = query.Where("due_date < ? AND status <> ?", time.Now(), domain.StatusCompleted)
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "created_at"
		sort.Desc = true
	}
	order := column + " asc"
	if sort.Desc {
		order = column + " desc"
	}

	var tasks []domain.Task
	if err := query.Order(order).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies a partial column patch. Callers build the patch map so that
// absent fields stay untouched.
func (r *gormTaskRepository) Update(id string, patch map[string]any) error {
	result := r.db.Model(&domain.Task{}).Where("id = ?", id).Updates(patch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Delete removes the row permanently. Notifications pointing at the task are
// left in place.
func (r *gormTaskRepository) Delete(id string) error {
	return r.db.Delete(&domain.Task{}, "id = ?", id).Error
}

func (r *gormTaskRepository) CountAssignedTo(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Task{}).Where("assigned_to_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *gormTaskRepository) CountCreatedBy(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Task{}).Where("creator_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *gormTaskRepository) CountOverdue(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Task{}).
		Where("assigned_to_id = ? AND due_date < ? AND status <> ?", userID, time.Now(), domain.StatusCompleted).
		Count(&count).Error
	return count, err
}
