package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Message   string `gorm:"not null"`
	IsRead    bool   `gorm:"not null;default:false"`
	UserID    string `gorm:"type:uuid;not null;index"`
	TaskID    string `gorm:"type:uuid;not null"`
	Task      *Task  `gorm:"foreignKey:TaskID"`
	CreatedAt time.Time
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
