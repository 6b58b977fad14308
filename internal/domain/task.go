package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Priority levels, stored as plain strings.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Status values. Every transition between them is allowed; there is no
// enforced workflow ordering.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusCompleted  Status = "COMPLETED"
)

type Task struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Title        string `gorm:"not null"`
	Description  string `gorm:"not null"`
	DueDate      time.Time
	Priority     Priority `gorm:"type:varchar(16);not null"`
	Status       Status   `gorm:"type:varchar(16);not null;default:TODO"`
	CreatorID    string   `gorm:"type:uuid;not null;index"`
	AssignedToID *string  `gorm:"type:uuid;index"`
	Creator      *User    `gorm:"foreignKey:CreatorID"`
	AssignedTo   *User    `gorm:"foreignKey:AssignedToID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Overdue reports whether the task is past due and still open.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate.Before(now) && t.Status != StatusCompleted
}
