package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID       uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_placement,priority:1"`
	OwnerID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"not null"`
	Notes           string
	Column          Column   `gorm:"column:board_column;not null;default:'Backlog';index:idx_tasks_placement,priority:2"`
	Rank            int      `gorm:"column:priority_rank;not null;default:0;index:idx_tasks_placement,priority:3"`
	TaskPriority    Priority `gorm:"column:task_priority;not null;default:''"`
	TaskType        string
	EstimatedTime   int `gorm:"not null;default:0"`
	ActualTime      int `gorm:"not null;default:0"`
	DueDate         *time.Time
	ReminderEnabled bool   `gorm:"not null;default:false"`
	ReminderOffset  int    `gorm:"not null;default:0"`
	IsUrgent        bool   `gorm:"not null;default:false"`
	IsImportant     bool   `gorm:"not null;default:false"`
	Status          Status `gorm:"not null;default:'active'"`
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Project  Project   `gorm:"foreignKey:ProjectID"`
	Owner    User      `gorm:"foreignKey:OwnerID"`
	Subtasks []SubTask `gorm:"foreignKey:ParentTaskID"`
}

// IsDone reports whether the task sits in the Done column.
func (t *Task) IsDone() bool {
	return t.Column == ColumnDone
}
