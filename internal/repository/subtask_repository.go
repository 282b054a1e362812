package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blitzit/internal/model"
)

type SubtaskRepository struct {
	db *gorm.DB
}

type SubtaskRepositoryInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, subtask *model.SubTask) error
	ListByTask(ctx context.Context, ownerID, taskID uuid.UUID) ([]model.SubTask, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]any) (*model.SubTask, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

var _ SubtaskRepositoryInterface = (*SubtaskRepository)(nil)

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) ownedTasks(db *gorm.DB, ownerID uuid.UUID) *gorm.DB {
	return db.Model(&model.Task{}).Select("id").Where("owner_id = ?", ownerID)
}

func (r *SubtaskRepository) requireTask(db *gorm.DB, ownerID, taskID uuid.UUID) error {
	var count int64
	err := db.Model(&model.Task{}).
		Where("id = ? AND owner_id = ?", taskID, ownerID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Create adds a subtask under an owned task
func (r *SubtaskRepository) Create(ctx context.Context, ownerID uuid.UUID, subtask *model.SubTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.requireTask(tx, ownerID, subtask.ParentTaskID); err != nil {
			return err
		}
		return tx.Create(subtask).Error
	})
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, ownerID, taskID uuid.UUID) ([]model.SubTask, error) {
	db := r.db.WithContext(ctx)
	if err := r.requireTask(db, ownerID, taskID); err != nil {
		return nil, err
	}

	var subtasks []model.SubTask
	err := db.Where("parent_task_id = ?", taskID).Order("created_at").Find(&subtasks).Error
	return subtasks, err
}

// Update overwrites title and/or completion of a subtask whose parent the owner holds
func (r *SubtaskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]any) (*model.SubTask, error) {
	var subtask model.SubTask
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND parent_task_id IN (?)", id, r.ownedTasks(tx, ownerID)).
			First(&subtask).Error
		if err != nil {
			return notFound(err, ErrSubtaskNotFound)
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&subtask).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	result := db.Where("id = ? AND parent_task_id IN (?)", id, r.ownedTasks(db, ownerID)).
		Delete(&model.SubTask{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}
