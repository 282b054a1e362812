package repository

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blitzit/internal/lifecycle"
	"blitzit/internal/model"
)

// TaskFilter narrows a task listing. Zero values match everything except
// archived tasks.
type TaskFilter struct {
	ProjectID       *uuid.UUID
	Column          *model.Column
	ExcludeDone     bool
	IncludeArchived bool
	OnlyArchived    bool
}

// PatchFunc computes the placement change for a freshly loaded task.
type PatchFunc func(task model.Task) (lifecycle.TaskPatch, error)

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	ListToday(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	Edit(ctx context.Context, ownerID, id uuid.UUID, fields map[string]any, patch PatchFunc) (*model.Task, error)
	ApplyPatch(ctx context.Context, ownerID, id uuid.UUID, patch PatchFunc) (*model.Task, error)
	Reorder(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error
	Drop(ctx context.Context, ownerID, id uuid.UUID, column model.Column, row int, engine *lifecycle.Engine) (*model.Task, error)
	SetStatus(ctx context.Context, ownerID, id uuid.UUID, status model.Status) error
	UpdateActualTime(ctx context.Context, ownerID, id uuid.UUID, minutes int) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task at the end of its column
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rank, err := nextRank(tx, task.ProjectID, task.Column, uuid.Nil)
		if err != nil {
			return err
		}
		task.Rank = rank
		return tx.Create(task).Error
	})
}

// GetByID retrieves an owned task with its subtasks
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&task).Error
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}
	return &task, nil
}

// List returns the owner's tasks ordered by project, column and rank
func (r *TaskRepository) List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Column != nil {
		q = q.Where("board_column = ?", *filter.Column)
	}
	if filter.ExcludeDone {
		q = q.Where("board_column <> ?", model.ColumnDone)
	}
	switch {
	case filter.OnlyArchived:
		q = q.Where("status = ?", model.StatusArchived)
	case !filter.IncludeArchived:
		q = q.Where("status = ?", model.StatusActive)
	}

	var tasks []model.Task
	err := q.Order("project_id").Order("board_column").Order("priority_rank").Find(&tasks).Error
	return tasks, err
}

// ListToday returns the active Today tasks across all projects in rank order
func (r *TaskRepository) ListToday(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND board_column = ? AND status = ?", ownerID, model.ColumnToday, model.StatusActive).
		Order("priority_rank").
		Order("created_at").
		Find(&tasks).Error
	return tasks, err
}

// ListWithReminders returns every pending task with a reminder and its owner
func (r *TaskRepository) ListWithReminders(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("reminder_enabled = ? AND due_date IS NOT NULL AND board_column <> ?", true, model.ColumnDone).
		Find(&tasks).Error
	return tasks, err
}

// ExistsByTitle reports whether the owner already has a task with this title
func (r *TaskRepository) ExistsByTitle(ctx context.Context, ownerID uuid.UUID, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("owner_id = ? AND title = ?", ownerID, title).
		Count(&count).Error
	return count > 0, err
}

// Update overwrites the given detail fields. Placement fields go through ApplyPatch.
func (r *TaskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := r.GetByID(ctx, ownerID, id)
		return err
	}
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ApplyPatch loads the task, asks patch for the placement change and writes
// it in one transaction. An AppendToEnd patch is ranked after every other
// task of the destination column.
func (r *TaskRepository) ApplyPatch(ctx context.Context, ownerID, id uuid.UUID, patch PatchFunc) (*model.Task, error) {
	return r.Edit(ctx, ownerID, id, nil, patch)
}

// Edit writes the detail fields together with the placement change patch
// computes, in one transaction. patch sees the task as stored before the
// edit. A project_id among fields moves the task to that project and an
// AppendToEnd patch is then ranked there. The returned task carries the
// placement change only.
func (r *TaskRepository) Edit(ctx context.Context, ownerID, id uuid.UUID, fields map[string]any, patch PatchFunc) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&task).Error; err != nil {
			return notFound(err, ErrTaskNotFound)
		}

		var p lifecycle.TaskPatch
		if patch != nil {
			var err error
			if p, err = patch(task); err != nil {
				return err
			}
		}
		if p.Empty() && len(fields) == 0 {
			return nil
		}

		updates := make(map[string]any, len(fields))
		maps.Copy(updates, fields)
		maps.Copy(updates, p.Updates())

		appendRank := task.Rank
		if p.AppendToEnd && p.Rank == nil {
			project := task.ProjectID
			if moved, ok := fields["project_id"].(uuid.UUID); ok {
				project = moved
			}
			dest := task.Column
			if p.Column != nil {
				dest = *p.Column
			}
			var err error
			if appendRank, err = nextRank(tx, project, dest, task.ID); err != nil {
				return err
			}
			updates["priority_rank"] = appendRank
		}

		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			return err
		}
		p.Apply(&task, appendRank)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Reorder ranks the tasks of one (project, column) 0..n-1 in the given order.
// The ids must be exactly the column's active tasks. All ranks change or
// none do.
func (r *TaskRepository) Reorder(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	if _, err := lifecycle.Reorder(ids); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var first model.Task
		if err := tx.Where("id = ? AND owner_id = ?", ids[0], ownerID).First(&first).Error; err != nil {
			return notFound(err, ErrTaskNotFound)
		}

		column, err := columnTasks(tx, first.ProjectID, first.Column)
		if err != nil {
			return err
		}
		ranks, err := lifecycle.ReorderColumn(ids, column)
		if err != nil {
			return err
		}
		return writeRanks(tx, ownerID, byNewRank(ranks), ranks)
	})
}

// Drop moves the task to row of column in its project and compacts the
// column it came from, all in one transaction.
func (r *TaskRepository) Drop(ctx context.Context, ownerID, id uuid.UUID, column model.Column, row int, engine *lifecycle.Engine) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&task).Error; err != nil {
			return notFound(err, ErrTaskNotFound)
		}

		source, err := columnTasks(tx, task.ProjectID, task.Column)
		if err != nil {
			return err
		}
		dest := source
		if column != task.Column {
			if dest, err = columnTasks(tx, task.ProjectID, column); err != nil {
				return err
			}
		}

		result, err := engine.DropInto(task, source, dest, column, row)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(result.Patch.Updates()).Error; err != nil {
			return err
		}
		if err := writeRanks(tx, ownerID, rankOrder(source, result.SourceRanks), result.SourceRanks); err != nil {
			return err
		}
		if err := writeRanks(tx, ownerID, rankOrder(append(slices.Clone(dest), task), result.DestRanks), result.DestRanks); err != nil {
			return err
		}
		result.Patch.Apply(&task, task.Rank)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SetStatus archives or restores a task
func (r *TaskRepository) SetStatus(ctx context.Context, ownerID, id uuid.UUID, status model.Status) error {
	return r.Update(ctx, ownerID, id, map[string]any{"status": status})
}

// UpdateActualTime stores the minutes worked reported by a focus session
func (r *TaskRepository) UpdateActualTime(ctx context.Context, ownerID, id uuid.UUID, minutes int) error {
	return r.Update(ctx, ownerID, id, map[string]any{"actual_time": minutes})
}

// Delete removes a task and its subtasks
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.Task{}).Select("id").Where("id = ? AND owner_id = ?", id, ownerID)
		if err := tx.Where("parent_task_id IN (?)", owned).Delete(&model.SubTask{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

func nextRank(tx *gorm.DB, projectID uuid.UUID, column model.Column, exclude uuid.UUID) (int, error) {
	var maxRank struct {
		Max *int
	}
	err := tx.Model(&model.Task{}).
		Select("MAX(priority_rank) as max").
		Where("project_id = ? AND board_column = ? AND id <> ?", projectID, column, exclude).
		Scan(&maxRank).Error
	if err != nil {
		return 0, fmt.Errorf("next rank: %w", err)
	}
	if maxRank.Max == nil {
		return 0, nil
	}
	return *maxRank.Max + 1, nil
}

func columnTasks(tx *gorm.DB, projectID uuid.UUID, column model.Column) ([]model.Task, error) {
	var tasks []model.Task
	err := tx.Select("id", "board_column", "priority_rank", "status").
		Where("project_id = ? AND board_column = ?", projectID, column).
		Order("priority_rank").
		Find(&tasks).Error
	return tasks, err
}

// rankOrder lists the ids of ranks in a stable order for writing.
func rankOrder(tasks []model.Task, ranks map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ranks))
	seen := make(map[uuid.UUID]bool, len(ranks))
	for _, t := range lifecycle.SortByRank(tasks) {
		if _, ok := ranks[t.ID]; ok && !seen[t.ID] {
			ids = append(ids, t.ID)
			seen[t.ID] = true
		}
	}
	return ids
}

func byNewRank(ranks map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ranks))
	for id := range ranks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ranks[ids[i]] < ranks[ids[j]] })
	return ids
}

func writeRanks(tx *gorm.DB, ownerID uuid.UUID, ids []uuid.UUID, ranks map[uuid.UUID]int) error {
	for _, id := range ids {
		result := tx.Model(&model.Task{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Update("priority_rank", ranks[id])
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("reorder %s: %w", id, ErrTaskNotFound)
		}
	}
	return nil
}

// IsNotFound reports whether err is any of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrSubtaskNotFound) || errors.Is(err, ErrUserNotFound)
}
