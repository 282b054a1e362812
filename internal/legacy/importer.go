// Package legacy imports the SQLite database of the Blitzit desktop app into
// the Postgres store.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"blitzit/internal/lifecycle"
	"blitzit/internal/model"
	"blitzit/internal/repository"
)

// ImportStats tracks import progress
type ImportStats struct {
	UserCreated     bool
	ProjectsCreated int
	ProjectsReused  int
	TasksImported   int
	TasksSkipped    int
	TasksFailed     int
	StartTime       time.Time
	EndTime         time.Time
	Errors          []string
}

// Account is the user the imported data is attached to. It is created when
// the email is unknown.
type Account struct {
	Email    string
	Name     string
	Password string
}

// ProgressCallback is called before each task is imported
type ProgressCallback func(current, total int, title string)

// TaskStore is the part of the task repository the importer writes through.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	ExistsByTitle(ctx context.Context, ownerID uuid.UUID, title string) (bool, error)
}

type Importer struct {
	users    repository.UserRepositoryInterface
	projects repository.ProjectRepositoryInterface
	tasks    TaskStore
	engine   *lifecycle.Engine
	Progress ProgressCallback
}

func NewImporter(users repository.UserRepositoryInterface, projects repository.ProjectRepositoryInterface, tasks TaskStore) *Importer {
	return &Importer{
		users:    users,
		projects: projects,
		tasks:    tasks,
		engine:   lifecycle.NewEngine(),
	}
}

// Import copies projects and tasks from the desktop database at path. A
// project whose name the owner already uses is reused; a task whose title
// the owner already has is skipped. Per-row failures are recorded in the
// stats and do not stop the import.
func (im *Importer) Import(ctx context.Context, path string, account Account) (*ImportStats, error) {
	stats := &ImportStats{StartTime: time.Now()}

	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	owner, err := im.owner(ctx, account, stats)
	if err != nil {
		return nil, err
	}

	projects, err := ReadProjects(ctx, db)
	if err != nil {
		return nil, err
	}
	projectIDs := make(map[int64]uuid.UUID, len(projects))
	for _, p := range projects {
		id, err := im.project(ctx, owner.ID, p, stats)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("project %q: %v", p.Name, err))
			continue
		}
		projectIDs[p.ID] = id
	}

	tasks, err := ReadTasks(ctx, db)
	if err != nil {
		return nil, err
	}
	for i, t := range tasks {
		if im.Progress != nil {
			im.Progress(i, len(tasks), t.Title)
		}
		if err := im.task(ctx, owner.ID, t, projectIDs, stats); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("task %d %q: %v", t.ID, t.Title, err))
			stats.TasksFailed++
		}
	}

	stats.EndTime = time.Now()
	return stats, nil
}

func (im *Importer) owner(ctx context.Context, account Account, stats *ImportStats) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	user, err := im.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", email, err)
	}
	if user != nil {
		return user, nil
	}

	if account.Password == "" {
		return nil, fmt.Errorf("user %s does not exist and no password was given", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := account.Name
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user = &model.User{ID: uuid.New(), Email: email, Name: name, HashedPassword: string(hash)}
	if err := im.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", email, err)
	}
	stats.UserCreated = true
	return user, nil
}

func (im *Importer) project(ctx context.Context, ownerID uuid.UUID, p Project, stats *ImportStats) (uuid.UUID, error) {
	existing, err := im.projects.FindByName(ctx, ownerID, p.Name)
	switch {
	case err == nil:
		stats.ProjectsReused++
		return existing.ID, nil
	case !errors.Is(err, repository.ErrProjectNotFound):
		return uuid.Nil, err
	}

	color := p.Color
	if color == "" {
		color = model.DefaultProjectColor
	}
	project := &model.Project{OwnerID: ownerID, Name: p.Name, Color: color}
	if err := im.projects.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicateProject) {
			// created concurrently; report and reuse
			stats.Errors = append(stats.Errors, fmt.Sprintf("project %q: %v", p.Name, err))
			again, findErr := im.projects.FindByName(ctx, ownerID, p.Name)
			if findErr != nil {
				return uuid.Nil, findErr
			}
			stats.ProjectsReused++
			return again.ID, nil
		}
		return uuid.Nil, err
	}
	stats.ProjectsCreated++
	return project.ID, nil
}

func (im *Importer) task(ctx context.Context, ownerID uuid.UUID, t Task, projectIDs map[int64]uuid.UUID, stats *ImportStats) error {
	exists, err := im.tasks.ExistsByTitle(ctx, ownerID, t.Title)
	if err != nil {
		return err
	}
	if exists {
		stats.TasksSkipped++
		return nil
	}

	projectID, ok := projectIDs[t.ProjectID]
	if !ok {
		// the desktop app falls back to project 1 (Inbox)
		if projectID, ok = projectIDs[1]; !ok {
			return fmt.Errorf("unknown project %d", t.ProjectID)
		}
	}

	task := &model.Task{
		ProjectID:       projectID,
		OwnerID:         ownerID,
		Title:           t.Title,
		Notes:           t.Notes,
		Column:          NormalizeColumn(t.Column),
		TaskPriority:    NormalizePriority(t.TaskPriority),
		TaskType:        t.TaskType,
		EstimatedTime:   t.EstimatedTime,
		ActualTime:      t.ActualTime,
		DueDate:         t.DueDate,
		ReminderEnabled: t.ReminderEnabled,
		ReminderOffset:  t.ReminderOffset,
		Status:          NormalizeStatus(t.Status),
		CompletedAt:     t.CompletedAt,
	}
	task.IsUrgent = task.Column == model.ColumnToday
	task.IsImportant = task.TaskPriority == model.PriorityHigh
	if err := im.engine.Place(task); err != nil {
		return err
	}

	if err := im.tasks.Create(ctx, task); err != nil {
		return err
	}
	stats.TasksImported++
	return nil
}

// NormalizeColumn maps a stored column name onto a board column. Unknown or
// empty values land in Backlog.
func NormalizeColumn(s string) model.Column {
	if c, ok := model.ParseColumn(s); ok {
		return c
	}
	return model.ColumnBacklog
}

func NormalizePriority(s string) model.Priority {
	for _, p := range []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p
		}
	}
	return model.PriorityNone
}

func NormalizeStatus(s string) model.Status {
	if strings.EqualFold(strings.TrimSpace(s), string(model.StatusArchived)) {
		return model.StatusArchived
	}
	return model.StatusActive
}
