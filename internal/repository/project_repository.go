package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blitzit/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Project, error)
	FindByName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Project, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create adds a new project; a name already used by the owner yields ErrDuplicateProject
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return duplicate(r.db.WithContext(ctx).Create(project).Error, ErrDuplicateProject)
}

func (r *ProjectRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&project).Error
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	return &project, nil
}

func (r *ProjectRepository) FindByName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND name = ?", ownerID, name).
		First(&project).Error
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&projects).Error
	return projects, err
}

// Update saves name, description and colour of an owned project
func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND owner_id = ?", project.ID, project.OwnerID).
		Updates(map[string]any{
			"name":        project.Name,
			"description": project.Description,
			"color":       project.Color,
		})
	if result.Error != nil {
		return duplicate(result.Error, ErrDuplicateProject)
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes the project together with its tasks and their subtasks
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := tx.Model(&model.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("parent_task_id IN (?)", tasks).Delete(&model.SubTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}
