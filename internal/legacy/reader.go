package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Project is a row of the desktop projects table.
type Project struct {
	ID    int64
	Name  string
	Color string
}

// Task is a row of the desktop tasks table. Columns added by later desktop
// versions read as their zero value when absent.
type Task struct {
	ID              int64
	ProjectID       int64
	Title           string
	Notes           string
	Column          string
	Rank            int
	EstimatedTime   int
	ActualTime      int
	TaskType        string
	TaskPriority    string
	Status          string
	DueDate         *time.Time
	ReminderEnabled bool
	ReminderOffset  int
	CompletedAt     *time.Time
}

// Open opens a desktop database read-only and checks it has the expected tables.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	for _, table := range []string{"projects", "tasks"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("not a Blitzit database, missing table %s: %w", table, err)
		}
	}
	return db, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

// pick selects column when the table has it, otherwise a literal fallback.
func pick(columns map[string]bool, column, fallback string) string {
	if columns[column] {
		return fmt.Sprintf("COALESCE(%q, %s)", column, fallback)
	}
	return fallback
}

// pickRaw keeps the declared type so timestamps are decoded by the driver.
func pickRaw(columns map[string]bool, column string) string {
	if columns[column] {
		return fmt.Sprintf("%q", column)
	}
	return "NULL"
}

func ReadProjects(ctx context.Context, db *sql.DB) ([]Project, error) {
	columns, err := tableColumns(ctx, db, "projects")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, name, %s FROM projects ORDER BY id", pick(columns, "color", "''"))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ReadTasks returns the tasks in board order: project, column, rank.
func ReadTasks(ctx context.Context, db *sql.DB) ([]Task, error) {
	columns, err := tableColumns(ctx, db, "tasks")
	if err != nil {
		return nil, err
	}

	selects := []string{
		"id",
		pick(columns, "project_id", "1"),
		"title",
		pick(columns, "notes", "''"),
		pick(columns, "column", "'Backlog'"),
		pick(columns, "priority", "0"),
		pick(columns, "estimated_time", "0"),
		pick(columns, "actual_time", "0"),
		pick(columns, "task_type", "''"),
		pick(columns, "task_priority", "''"),
		pick(columns, "status", "'active'"),
		pickRaw(columns, "due_date"),
		pick(columns, "reminder_enabled", "0"),
		pick(columns, "reminder_offset", "0"),
		pickRaw(columns, "completed_at"),
	}
	query := "SELECT " + strings.Join(selects, ", ") + " FROM tasks ORDER BY 2, 5, 6, id"

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var (
			t                    Task
			dueDate, completedAt sql.NullString
		)
		err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Notes,
			&t.Column,
			&t.Rank,
			&t.EstimatedTime,
			&t.ActualTime,
			&t.TaskType,
			&t.TaskPriority,
			&t.Status,
			&dueDate,
			&t.ReminderEnabled,
			&t.ReminderOffset,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.DueDate = parseTime(dueDate)
		t.CompletedAt = parseTime(completedAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime reads the timestamp formats the desktop app has written. An
// unparseable value is treated as absent.
func parseTime(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(v.String), time.Local); err == nil {
			return &t
		}
	}
	return nil
}
