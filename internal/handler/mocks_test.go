package handler_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"blitzit/internal/lifecycle"
	"blitzit/internal/middleware"
	"blitzit/internal/model"
	"blitzit/internal/report"
	"blitzit/internal/repository"
)

// Мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetTelegramChatID(ctx context.Context, id uuid.UUID, chatID *int64) error {
	args := m.Called(ctx, id, chatID)
	return args.Error(0)
}

// Мок репозитория проектов
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, ownerID, id)
	project := args.Get(0)
	if project == nil {
		return nil, args.Error(1)
	}
	return project.(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Project, error) {
	args := m.Called(ctx, ownerID, name)
	project := args.Get(0)
	if project == nil {
		return nil, args.Error(1)
	}
	return project.(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// Мок репозитория задач. ApplyPatch прогоняет переданную функцию по задаче,
// возвращенной моком, так что решения движка видны в ответе.
type MockTaskRepository struct {
	mock.Mock

	// Patches копит результаты движка, переданные в Edit
	Patches []lifecycle.TaskPatch
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListToday(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Edit(ctx context.Context, ownerID, id uuid.UUID, fields map[string]any, patch repository.PatchFunc) (*model.Task, error) {
	args := m.Called(ctx, ownerID, id, fields)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	task := *args.Get(0).(*model.Task)
	p, err := patch(task)
	if err != nil {
		return nil, err
	}
	m.Patches = append(m.Patches, p)
	p.Apply(&task, 99)
	return &task, nil
}

func (m *MockTaskRepository) ApplyPatch(ctx context.Context, ownerID, id uuid.UUID, patch repository.PatchFunc) (*model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	task := *args.Get(0).(*model.Task)
	p, err := patch(task)
	if err != nil {
		return nil, err
	}
	p.Apply(&task, 99)
	return &task, nil
}

func (m *MockTaskRepository) Reorder(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	args := m.Called(ctx, ownerID, ids)
	return args.Error(0)
}

func (m *MockTaskRepository) Drop(ctx context.Context, ownerID, id uuid.UUID, column model.Column, row int, engine *lifecycle.Engine) (*model.Task, error) {
	args := m.Called(ctx, ownerID, id, column, row)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) SetStatus(ctx context.Context, ownerID, id uuid.UUID, status model.Status) error {
	args := m.Called(ctx, ownerID, id, status)
	return args.Error(0)
}

func (m *MockTaskRepository) UpdateActualTime(ctx context.Context, ownerID, id uuid.UUID, minutes int) error {
	args := m.Called(ctx, ownerID, id, minutes)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockSubtaskRepository struct {
	mock.Mock
}

func (m *MockSubtaskRepository) Create(ctx context.Context, ownerID uuid.UUID, subtask *model.SubTask) error {
	args := m.Called(ctx, ownerID, subtask)
	return args.Error(0)
}

func (m *MockSubtaskRepository) ListByTask(ctx context.Context, ownerID, taskID uuid.UUID) ([]model.SubTask, error) {
	args := m.Called(ctx, ownerID, taskID)
	return args.Get(0).([]model.SubTask), args.Error(1)
}

func (m *MockSubtaskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]any) (*model.SubTask, error) {
	args := m.Called(ctx, ownerID, id, fields)
	subtask := args.Get(0)
	if subtask == nil {
		return nil, args.Error(1)
	}
	return subtask.(*model.SubTask), args.Error(1)
}

func (m *MockSubtaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Counts(ctx context.Context, ownerID uuid.UUID, now time.Time) (report.Counts, error) {
	args := m.Called(ctx, ownerID, now)
	return args.Get(0).(report.Counts), args.Error(1)
}

func (m *MockReportRepository) CompletionTrend(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]report.DayCount, error) {
	args := m.Called(ctx, ownerID, since)
	return args.Get(0).([]report.DayCount), args.Error(1)
}

// authenticated подставляет пользователя так же, как JWTAuthMiddleware
func authenticated(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

// Запоминает задачи, о которых трекер напоминаний должен забыть
type recordingTracker struct {
	forgotten []uuid.UUID
}

func (r *recordingTracker) Forget(ids ...uuid.UUID) {
	r.forgotten = append(r.forgotten, ids...)
}
