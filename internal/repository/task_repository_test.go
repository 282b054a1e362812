package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blitzit/internal/lifecycle"
	"blitzit/internal/model"
	"blitzit/internal/repository"
)

var taskColumns = []string{"id", "project_id", "owner_id", "title", "board_column", "priority_rank", "task_priority", "status", "completed_at"}

func TestTaskRepository_Create_AppendsToColumn(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	task := &model.Task{ProjectID: uuid.New(), OwnerID: uuid.New(), Title: "Write report", Column: model.ColumnToday}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT MAX\(priority_rank\) as max FROM "tasks" WHERE project_id = .* AND board_column = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(4))
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	// Act
	err := repo.Create(context.Background(), task)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, task.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Create_EmptyColumn(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	task := &model.Task{ProjectID: uuid.New(), OwnerID: uuid.New(), Title: "First", Column: model.ColumnBacklog}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT MAX\(priority_rank\)`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	// Act
	err := repo.Create(context.Background(), task)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, task.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectColumnLoad(mock sqlmock.Sqlmock, first uuid.UUID, projectID, ownerID uuid.UUID, column model.Column, members *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = .* AND owner_id = .*`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(first.String(), projectID.String(), ownerID.String(), "first", string(column), 0, "", "active", nil))
	mock.ExpectQuery(`SELECT "id","board_column","priority_rank","status" FROM "tasks" WHERE project_id = .* AND board_column = .*`).
		WithArgs(projectID, column).
		WillReturnRows(members)
}

var memberColumns = []string{"id", "board_column", "priority_rank", "status"}

func TestTaskRepository_Reorder(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	ownerID, projectID := uuid.New(), uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	expectColumnLoad(mock, c, projectID, ownerID, model.ColumnToday, sqlmock.NewRows(memberColumns).
		AddRow(a.String(), "Today", 0, "active").
		AddRow(b.String(), "Today", 1, "active").
		AddRow(c.String(), "Today", 2, "active"))
	for rank, id := range []uuid.UUID{c, a, b} {
		mock.ExpectExec(`UPDATE "tasks" SET "priority_rank"=.* WHERE id = .* AND owner_id = .*`).
			WithArgs(rank, sqlmock.AnyArg(), id, ownerID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	// Act
	err := repo.Reorder(context.Background(), ownerID, []uuid.UUID{c, a, b})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Reorder_ArchivedFollow(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	ownerID, projectID := uuid.New(), uuid.New()
	a, archived, b := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	expectColumnLoad(mock, b, projectID, ownerID, model.ColumnBacklog, sqlmock.NewRows(memberColumns).
		AddRow(a.String(), "Backlog", 0, "active").
		AddRow(archived.String(), "Backlog", 1, "archived").
		AddRow(b.String(), "Backlog", 2, "active"))
	for rank, id := range []uuid.UUID{b, a, archived} {
		mock.ExpectExec(`UPDATE "tasks" SET "priority_rank"=`).
			WithArgs(rank, sqlmock.AnyArg(), id, ownerID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	// Act
	err := repo.Reorder(context.Background(), ownerID, []uuid.UUID{b, a})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Reorder_RejectsPartialOrMixedColumns(t *testing.T) {
	ownerID, projectID := uuid.New(), uuid.New()
	a, b, other := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name string
		ids  []uuid.UUID
	}{
		{name: "missing an active task", ids: []uuid.UUID{a}},
		{name: "task from another column", ids: []uuid.UUID{a, b, other}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			gormDB, mock := setupMockDB(t)
			repo := repository.NewTaskRepository(gormDB)

			mock.ExpectBegin()
			expectColumnLoad(mock, a, projectID, ownerID, model.ColumnToday, sqlmock.NewRows(memberColumns).
				AddRow(a.String(), "Today", 0, "active").
				AddRow(b.String(), "Today", 1, "active"))
			mock.ExpectRollback()

			// Act
			err := repo.Reorder(context.Background(), ownerID, tt.ids)

			// Assert
			assert.ErrorIs(t, err, lifecycle.ErrInvalidOrder)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTaskRepository_Reorder_UnknownTaskRollsBack(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = .* AND owner_id = .*`).
		WillReturnRows(sqlmock.NewRows(taskColumns))
	mock.ExpectRollback()

	// Act
	err := repo.Reorder(context.Background(), uuid.New(), []uuid.UUID{uuid.New(), uuid.New()})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Reorder_Duplicate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	id := uuid.New()

	err := repo.Reorder(context.Background(), uuid.New(), []uuid.UUID{id, id})

	assert.ErrorIs(t, err, lifecycle.ErrInvalidOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ApplyPatch_LeavesDoneAtEnd(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	engine := lifecycle.NewEngine()
	ownerID, projectID, taskID := uuid.New(), uuid.New(), uuid.New()
	completed := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = .* AND owner_id = .*`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), projectID.String(), ownerID.String(), "Refactor", "Done", 1, "High", "active", completed))
	mock.ExpectQuery(`SELECT MAX\(priority_rank\)`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectExec(`UPDATE "tasks" SET .*"board_column"=.*"completed_at"=.*"priority_rank"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	task, err := repo.ApplyPatch(context.Background(), ownerID, taskID, func(t model.Task) (lifecycle.TaskPatch, error) {
		return engine.MoveToColumn(t, model.ColumnBacklog)
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, model.ColumnBacklog, task.Column)
	assert.Equal(t, 3, task.Rank)
	assert.Nil(t, task.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Edit_DetailsAndPlacementTogether(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	engine := lifecycle.NewEngine()
	ownerID, fromProject, toProject, taskID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = .* AND owner_id = .*`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), fromProject.String(), ownerID.String(), "Draft", "Today", 0, "", "active", nil))
	mock.ExpectQuery(`SELECT MAX\(priority_rank\)`).
		WithArgs(toProject, model.ColumnThisWeek, taskID).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(4))
	mock.ExpectExec(`UPDATE "tasks" SET "board_column"=.*,"priority_rank"=.*,"project_id"=.*,"title"=.*,"updated_at"=.* WHERE id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	fields := map[string]any{"title": "Final", "project_id": toProject}
	task, err := repo.Edit(context.Background(), ownerID, taskID, fields, func(t model.Task) (lifecycle.TaskPatch, error) {
		return engine.MoveToColumn(t, model.ColumnThisWeek)
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, model.ColumnThisWeek, task.Column)
	assert.Equal(t, 5, task.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Edit_RejectedPlacementWritesNothing(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	engine := lifecycle.NewEngine()
	ownerID, taskID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), uuid.NewString(), ownerID.String(), "Draft", "Today", 0, "", "active", nil))
	mock.ExpectRollback()

	// Act
	_, err := repo.Edit(context.Background(), ownerID, taskID, map[string]any{"title": "Final"}, func(t model.Task) (lifecycle.TaskPatch, error) {
		return engine.MoveToColumn(t, "Someday")
	})

	// Assert
	assert.ErrorIs(t, err, lifecycle.ErrInvalidColumn)
	assert.NoError(t, mock.ExpectationsWereMet(), "the title must not be written on its own")
}

func TestTaskRepository_ApplyPatch_InvalidColumnRollsBack(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	engine := lifecycle.NewEngine()
	ownerID, taskID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), uuid.NewString(), ownerID.String(), "Refactor", "Today", 0, "", "active", nil))
	mock.ExpectRollback()

	// Act
	task, err := repo.ApplyPatch(context.Background(), ownerID, taskID, func(t model.Task) (lifecycle.TaskPatch, error) {
		return engine.MoveToColumn(t, "Someday")
	})

	// Assert
	assert.ErrorIs(t, err, lifecycle.ErrInvalidColumn)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ApplyPatch_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).WillReturnRows(sqlmock.NewRows(taskColumns))
	mock.ExpectRollback()

	// Act
	_, err := repo.ApplyPatch(context.Background(), uuid.New(), uuid.New(), func(model.Task) (lifecycle.TaskPatch, error) {
		t.Fatal("patch must not run for a missing task")
		return lifecycle.TaskPatch{}, nil
	})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Drop_AcrossColumns(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	ownerID, projectID := uuid.New(), uuid.New()
	moved, stays, occupant := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = .* AND owner_id = .*`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(moved.String(), projectID.String(), ownerID.String(), "Plan sprint", "Backlog", 0, "", "active", nil))
	mock.ExpectQuery(`SELECT "id","board_column","priority_rank","status" FROM "tasks" WHERE project_id = .* AND board_column = .*`).
		WithArgs(projectID, model.ColumnBacklog).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(moved.String(), "Backlog", 0, "active").
			AddRow(stays.String(), "Backlog", 1, "active"))
	mock.ExpectQuery(`SELECT "id","board_column","priority_rank","status" FROM "tasks" WHERE project_id = .* AND board_column = .*`).
		WithArgs(projectID, model.ColumnToday).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(occupant.String(), "Today", 0, "active"))
	mock.ExpectExec(`UPDATE "tasks" SET .*"board_column"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tasks" SET "priority_rank"=`).
		WithArgs(0, sqlmock.AnyArg(), stays, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tasks" SET "priority_rank"=`).
		WithArgs(1, sqlmock.AnyArg(), occupant, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tasks" SET "priority_rank"=`).
		WithArgs(0, sqlmock.AnyArg(), moved, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	task, err := repo.Drop(context.Background(), ownerID, moved, model.ColumnToday, 0, lifecycle.NewEngine())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, model.ColumnToday, task.Column)
	assert.Equal(t, 0, task.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "subtasks" WHERE parent_task_id IN \(SELECT "id" FROM "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = .* AND owner_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// Act
	err := repo.Delete(context.Background(), uuid.New(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateActualTime(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	ownerID, taskID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET "actual_time"=.*,"updated_at"=.* WHERE id = .* AND owner_id = .*`).
		WithArgs(30, sqlmock.AnyArg(), taskID, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := repo.UpdateActualTime(context.Background(), ownerID, taskID, 30)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_List_DefaultsToActive(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	ownerID, projectID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE owner_id = .* AND project_id = .* AND status = .* ORDER BY project_id,board_column,priority_rank`).
		WithArgs(ownerID, projectID, model.StatusActive).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(uuid.NewString(), projectID.String(), ownerID.String(), "A", "Today", 0, "", "active", nil).
			AddRow(uuid.NewString(), projectID.String(), ownerID.String(), "B", "Today", 1, "", "active", nil))

	// Act
	tasks, err := repo.List(context.Background(), ownerID, repository.TaskFilter{ProjectID: &projectID})

	// Assert
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
