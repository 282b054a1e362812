package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blitzit/internal/handler"
	"blitzit/internal/lifecycle"
	"blitzit/internal/model"
	"blitzit/internal/repository"
)

var fixedNow = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

func setupTaskTest(t *testing.T) (*gin.Engine, *MockTaskRepository, *MockProjectRepository, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	tasks := new(MockTaskRepository)
	projects := new(MockProjectRepository)
	engine := lifecycle.NewEngineWithClock(func() time.Time { return fixedNow })
	h := handler.NewTaskHandler(tasks, projects, engine)

	r := gin.New()
	api := r.Group("/", authenticated(userID))
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.GetAll)
	api.GET("/tasks/matrix", h.GetMatrix)
	api.PUT("/tasks/:id", h.Update)
	api.PATCH("/tasks/:id/move", h.Move)
	api.PATCH("/tasks/:id/matrix", h.MatrixDrop)
	api.POST("/tasks/:id/reopen", h.Reopen)
	api.POST("/tasks/:id/archive", h.Archive)
	api.PUT("/tasks/reorder", h.Reorder)
	api.POST("/tasks/:id/drop", h.Drop)
	return r, tasks, projects, userID
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeTask(t *testing.T, resp *httptest.ResponseRecorder) handler.TaskResponse {
	t.Helper()
	var task handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
	return task
}

func TestCreateTask_DefaultsToBacklog(t *testing.T) {
	router, tasks, projects, userID := setupTaskTest(t)
	projectID := uuid.New()

	projects.On("GetByID", mock.Anything, userID, projectID).Return(&model.Project{ID: projectID, OwnerID: userID}, nil)
	tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.Column == model.ColumnBacklog && task.OwnerID == userID && task.CompletedAt == nil
	})).Return(nil)

	resp := doJSON(router, "POST", "/tasks", handler.TaskRequest{
		ProjectID:     projectID.String(),
		Title:         "Write report",
		EstimatedTime: 30,
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	task := decodeTask(t, resp)
	assert.Equal(t, model.ColumnBacklog, task.Column)
	assert.Equal(t, string(lifecycle.NotUrgentNotImportant), task.Quadrant)
	tasks.AssertExpectations(t)
	projects.AssertExpectations(t)
}

func TestCreateTask_IntoDoneStampsCompletion(t *testing.T) {
	router, tasks, projects, userID := setupTaskTest(t)
	projectID := uuid.New()

	projects.On("GetByID", mock.Anything, userID, projectID).Return(&model.Project{ID: projectID}, nil)
	tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	resp := doJSON(router, "POST", "/tasks", handler.TaskRequest{
		ProjectID: projectID.String(),
		Title:     "Already done",
		Column:    "done",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	task := decodeTask(t, resp)
	assert.Equal(t, model.ColumnDone, task.Column)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, fixedNow.Equal(*task.CompletedAt))
}

func TestCreateTask_InvalidColumn(t *testing.T) {
	router, tasks, projects, userID := setupTaskTest(t)
	projectID := uuid.New()

	projects.On("GetByID", mock.Anything, userID, projectID).Return(&model.Project{ID: projectID}, nil)

	resp := doJSON(router, "POST", "/tasks", handler.TaskRequest{
		ProjectID: projectID.String(),
		Title:     "Somewhere",
		Column:    "Someday",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTask_ForeignProject(t *testing.T) {
	router, tasks, projects, userID := setupTaskTest(t)
	projectID := uuid.New()

	projects.On("GetByID", mock.Anything, userID, projectID).Return(nil, repository.ErrProjectNotFound)

	resp := doJSON(router, "POST", "/tasks", handler.TaskRequest{ProjectID: projectID.String(), Title: "x"})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMoveTask_ToDone(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()

	tasks.On("ApplyPatch", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Column: model.ColumnToday, Rank: 2}, nil)

	resp := doJSON(router, "PATCH", "/tasks/"+taskID.String()+"/move?column=Done", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	task := decodeTask(t, resp)
	assert.Equal(t, model.ColumnDone, task.Column)
	assert.Equal(t, 2, task.Rank)
	require.NotNil(t, task.CompletedAt)
}

func TestMoveTask_LeavingDoneAppendsAndClears(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()
	done := fixedNow.Add(-time.Hour)

	tasks.On("ApplyPatch", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Column: model.ColumnDone, Rank: 0, CompletedAt: &done}, nil)

	resp := doJSON(router, "PATCH", "/tasks/"+taskID.String()+"/move", map[string]string{"column": "This Week"})

	assert.Equal(t, http.StatusOK, resp.Code)
	task := decodeTask(t, resp)
	assert.Equal(t, model.ColumnThisWeek, task.Column)
	assert.Equal(t, 99, task.Rank)
	assert.Nil(t, task.CompletedAt)
}

func TestMoveTask_InvalidColumn(t *testing.T) {
	router, tasks, _, _ := setupTaskTest(t)

	resp := doJSON(router, "PATCH", "/tasks/"+uuid.NewString()+"/move?column=Later", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	tasks.AssertNotCalled(t, "ApplyPatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestMoveTask_NotFound(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()

	tasks.On("ApplyPatch", mock.Anything, userID, taskID).Return(nil, repository.ErrTaskNotFound)

	resp := doJSON(router, "PATCH", "/tasks/"+taskID.String()+"/move?column=Today", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMatrixDrop_UrgentImportant(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()

	tasks.On("ApplyPatch", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Column: model.ColumnBacklog, TaskPriority: model.PriorityLow}, nil)

	resp := doJSON(router, "PATCH", "/tasks/"+taskID.String()+"/matrix", map[string]bool{
		"is_urgent":    true,
		"is_important": true,
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	task := decodeTask(t, resp)
	assert.Equal(t, model.ColumnToday, task.Column)
	assert.Equal(t, model.PriorityHigh, task.TaskPriority)
	assert.Equal(t, string(lifecycle.UrgentImportant), task.Quadrant)
}

func TestMatrixDrop_MissingAxis(t *testing.T) {
	router, _, _, _ := setupTaskTest(t)

	resp := doJSON(router, "PATCH", "/tasks/"+uuid.NewString()+"/matrix", map[string]bool{"is_urgent": true})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReopenTask(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()
	done := fixedNow

	tasks.On("ApplyPatch", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Column: model.ColumnDone, CompletedAt: &done}, nil)

	resp := doJSON(router, "POST", "/tasks/"+taskID.String()+"/reopen", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	task := decodeTask(t, resp)
	assert.Equal(t, model.ColumnToday, task.Column)
	assert.Nil(t, task.CompletedAt)
}

func TestGetMatrix_GroupsPendingTasks(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)

	tasks.On("List", mock.Anything, userID, repository.TaskFilter{ExcludeDone: true}).Return([]model.Task{
		{ID: uuid.New(), Title: "fire", Column: model.ColumnToday, TaskPriority: model.PriorityHigh},
		{ID: uuid.New(), Title: "plan", Column: model.ColumnBacklog, TaskPriority: model.PriorityHigh},
		{ID: uuid.New(), Title: "call", Column: model.ColumnToday},
	}, nil)

	resp := doJSON(router, "GET", "/tasks/matrix", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	var quadrants []handler.QuadrantResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &quadrants))
	require.Len(t, quadrants, 4)
	assert.Equal(t, "Urgent & Important", quadrants[0].Title)
	assert.Len(t, quadrants[0].Tasks, 1)
	assert.Len(t, quadrants[1].Tasks, 1)
	assert.Len(t, quadrants[2].Tasks, 1)
	assert.Empty(t, quadrants[3].Tasks)
}

func TestGetAll_ColumnFilter(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	column := model.ColumnThisWeek

	tasks.On("List", mock.Anything, userID, repository.TaskFilter{Column: &column}).Return([]model.Task{}, nil)

	resp := doJSON(router, "GET", "/tasks?column=this%20week", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	tasks.AssertExpectations(t)
}

func TestReorderTasks_Duplicate(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	id := uuid.New()

	tasks.On("Reorder", mock.Anything, userID, []uuid.UUID{id, id}).Return(lifecycle.ErrInvalidOrder)

	resp := doJSON(router, "PUT", "/tasks/reorder", handler.ReorderRequest{TaskIDs: []string{id.String(), id.String()}})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDropTask(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()

	tasks.On("Drop", mock.Anything, userID, taskID, model.ColumnToday, 1).
		Return(&model.Task{ID: taskID, Column: model.ColumnToday, Rank: 1}, nil)

	resp := doJSON(router, "POST", "/tasks/"+taskID.String()+"/drop", handler.TaskDropRequest{Column: "Today", Row: 1})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decodeTask(t, resp).Rank)
	tasks.AssertExpectations(t)
}

func TestUpdateTask_ColumnChangeGoesThroughEngine(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()
	title := "Renamed"
	column := "Done"

	tasks.On("Edit", mock.Anything, userID, taskID, map[string]any{"title": title}).
		Return(&model.Task{ID: taskID, Title: title, Column: model.ColumnToday}, nil)
	tasks.On("GetByID", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Title: title, Column: model.ColumnDone, CompletedAt: &fixedNow}, nil)

	resp := doJSON(router, "PUT", "/tasks/"+taskID.String(), handler.TaskUpdateRequest{Title: &title, Column: &column})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.ColumnDone, decodeTask(t, resp).Column)
	require.Len(t, tasks.Patches, 1)
	require.NotNil(t, tasks.Patches[0].CompletedAt)
	assert.Equal(t, fixedNow, *tasks.Patches[0].CompletedAt)
	tasks.AssertExpectations(t)
}

func TestUpdateTask_ProjectChangeAppendsInSameEdit(t *testing.T) {
	router, tasks, projects, userID := setupTaskTest(t)
	taskID, from, to := uuid.New(), uuid.New(), uuid.New()
	target := to.String()

	projects.On("GetByID", mock.Anything, userID, to).Return(&model.Project{ID: to, OwnerID: userID}, nil)
	tasks.On("Edit", mock.Anything, userID, taskID, map[string]any{"project_id": to}).
		Return(&model.Task{ID: taskID, ProjectID: from, Column: model.ColumnToday}, nil)
	tasks.On("GetByID", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, ProjectID: to, Column: model.ColumnToday, Rank: 99}, nil)

	resp := doJSON(router, "PUT", "/tasks/"+taskID.String(), handler.TaskUpdateRequest{ProjectID: &target})

	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, tasks.Patches, 1)
	assert.True(t, tasks.Patches[0].AppendToEnd)
	assert.Nil(t, tasks.Patches[0].Column)
	tasks.AssertExpectations(t)
}

func TestUpdateTask_InvalidColumnWritesNothing(t *testing.T) {
	router, tasks, _, _ := setupTaskTest(t)
	title := "Renamed"
	column := "Someday"

	resp := doJSON(router, "PUT", "/tasks/"+uuid.NewString(), handler.TaskUpdateRequest{Title: &title, Column: &column})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	tasks.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func setupReminderTest(t *testing.T) (*gin.Engine, *MockTaskRepository, *recordingTracker, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	tasks := new(MockTaskRepository)
	tracker := &recordingTracker{}
	h := handler.NewTaskHandler(tasks, new(MockProjectRepository), lifecycle.NewEngine()).WithReminders(tracker)

	r := gin.New()
	api := r.Group("/", authenticated(userID))
	api.PUT("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	return r, tasks, tracker, userID
}

func TestUpdateTask_RescheduleForgetsReminder(t *testing.T) {
	router, tasks, tracker, userID := setupReminderTest(t)
	taskID := uuid.New()
	due := fixedNow.Add(2 * time.Hour)

	tasks.On("Edit", mock.Anything, userID, taskID, map[string]any{"due_date": due}).
		Return(&model.Task{ID: taskID, Column: model.ColumnToday}, nil)
	tasks.On("GetByID", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Column: model.ColumnToday, DueDate: &due}, nil)

	resp := doJSON(router, "PUT", "/tasks/"+taskID.String(), handler.TaskUpdateRequest{DueDate: &due})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []uuid.UUID{taskID}, tracker.forgotten)
}

func TestUpdateTask_TitleKeepsReminderState(t *testing.T) {
	router, tasks, tracker, userID := setupReminderTest(t)
	taskID := uuid.New()
	title := "Renamed"

	tasks.On("Edit", mock.Anything, userID, taskID, map[string]any{"title": title}).
		Return(&model.Task{ID: taskID, Column: model.ColumnToday}, nil)
	tasks.On("GetByID", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Title: title, Column: model.ColumnToday}, nil)

	resp := doJSON(router, "PUT", "/tasks/"+taskID.String(), handler.TaskUpdateRequest{Title: &title})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, tracker.forgotten)
}

func TestDeleteTask_ForgetsReminder(t *testing.T) {
	router, tasks, tracker, userID := setupReminderTest(t)
	taskID := uuid.New()

	tasks.On("Delete", mock.Anything, userID, taskID).Return(nil)

	resp := doJSON(router, "DELETE", "/tasks/"+taskID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []uuid.UUID{taskID}, tracker.forgotten)
}

func TestDeleteTask_NotFoundKeepsReminderState(t *testing.T) {
	router, tasks, tracker, userID := setupReminderTest(t)
	taskID := uuid.New()

	tasks.On("Delete", mock.Anything, userID, taskID).Return(repository.ErrTaskNotFound)

	resp := doJSON(router, "DELETE", "/tasks/"+taskID.String(), nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Empty(t, tracker.forgotten)
}

func TestArchiveTask(t *testing.T) {
	router, tasks, _, userID := setupTaskTest(t)
	taskID := uuid.New()

	tasks.On("SetStatus", mock.Anything, userID, taskID, model.StatusArchived).Return(nil)
	tasks.On("GetByID", mock.Anything, userID, taskID).
		Return(&model.Task{ID: taskID, Status: model.StatusArchived}, nil)

	resp := doJSON(router, "POST", "/tasks/"+taskID.String()+"/archive", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StatusArchived, decodeTask(t, resp).Status)
}
