package model

import (
	"time"

	"github.com/google/uuid"
)

type SubTask struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ParentTaskID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title        string    `gorm:"not null"`
	IsCompleted  bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	ParentTask Task `gorm:"foreignKey:ParentTaskID"`
}

func (SubTask) TableName() string { return "subtasks" }
