package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blitzit/internal/lifecycle"
	"blitzit/internal/model"
	"blitzit/internal/repository"
)

type TaskHandler struct {
	taskRepo    repository.TaskRepositoryInterface
	projectRepo repository.ProjectRepositoryInterface
	engine      *lifecycle.Engine
	reminders   ReminderTracker
}

// ReminderTracker забывает, о каких задачах уже напомнили
type ReminderTracker interface {
	Forget(ids ...uuid.UUID)
}

func NewTaskHandler(
	taskRepo repository.TaskRepositoryInterface,
	projectRepo repository.ProjectRepositoryInterface,
	engine *lifecycle.Engine,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		engine:      engine,
	}
}

// WithReminders подключает трекер напоминаний: после смены срока или удаления
// задачи о ней напомнят заново
func (h *TaskHandler) WithReminders(tracker ReminderTracker) *TaskHandler {
	h.reminders = tracker
	return h
}

func (h *TaskHandler) forgetReminder(taskID uuid.UUID) {
	if h.reminders != nil {
		h.reminders.Forget(taskID)
	}
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	ProjectID       string     `json:"project_id" binding:"required,uuid"`
	Title           string     `json:"title" binding:"required"`
	Notes           string     `json:"notes"`
	Column          string     `json:"column"`
	TaskPriority    string     `json:"task_priority"`
	TaskType        string     `json:"task_type"`
	EstimatedTime   int        `json:"estimated_time" binding:"min=0"`
	ActualTime      int        `json:"actual_time" binding:"min=0"`
	DueDate         *time.Time `json:"due_date"`
	ReminderEnabled bool       `json:"reminder_enabled"`
	ReminderOffset  int        `json:"reminder_offset" binding:"min=0"`
	IsUrgent        bool       `json:"is_urgent"`
	IsImportant     bool       `json:"is_important"`
}

// TaskUpdateRequest перезаписывает только переданные поля
type TaskUpdateRequest struct {
	ProjectID       *string    `json:"project_id" binding:"omitempty,uuid"`
	Title           *string    `json:"title" binding:"omitempty,min=1"`
	Notes           *string    `json:"notes"`
	Column          *string    `json:"column"`
	TaskPriority    *string    `json:"task_priority"`
	TaskType        *string    `json:"task_type"`
	EstimatedTime   *int       `json:"estimated_time" binding:"omitempty,min=0"`
	ActualTime      *int       `json:"actual_time" binding:"omitempty,min=0"`
	DueDate         *time.Time `json:"due_date"`
	ReminderEnabled *bool      `json:"reminder_enabled"`
	ReminderOffset  *int       `json:"reminder_offset" binding:"omitempty,min=0"`
	IsUrgent        *bool      `json:"is_urgent"`
	IsImportant     *bool      `json:"is_important"`
}

// TaskMoveRequest представляет запрос на перемещение задачи в колонку
type TaskMoveRequest struct {
	Column string `json:"column" form:"column" binding:"required"`
}

// MatrixDropRequest представляет перетаскивание задачи на матрицу Эйзенхауэра
type MatrixDropRequest struct {
	IsUrgent    *bool `json:"is_urgent" binding:"required"`
	IsImportant *bool `json:"is_important" binding:"required"`
}

// TaskDropRequest представляет перетаскивание задачи на доске
type TaskDropRequest struct {
	Column string `json:"column" binding:"required"`
	Row    int    `json:"row" binding:"min=0"`
}

// ReorderRequest содержит задачи колонки в новом порядке
type ReorderRequest struct {
	TaskIDs []string `json:"task_ids" binding:"required,min=1,dive,uuid"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
	ID              string            `json:"id"`
	ProjectID       string            `json:"project_id"`
	OwnerID         string            `json:"owner_id"`
	Title           string            `json:"title"`
	Notes           string            `json:"notes"`
	Column          model.Column      `json:"column"`
	Rank            int               `json:"priority"`
	TaskPriority    model.Priority    `json:"task_priority"`
	TaskType        string            `json:"task_type"`
	EstimatedTime   int               `json:"estimated_time"`
	ActualTime      int               `json:"actual_time"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	ReminderEnabled bool              `json:"reminder_enabled"`
	ReminderOffset  int               `json:"reminder_offset"`
	IsUrgent        bool              `json:"is_urgent"`
	IsImportant     bool              `json:"is_important"`
	Quadrant        string            `json:"quadrant"`
	Status          model.Status      `json:"status"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Subtasks        []SubtaskResponse `json:"subtasks,omitempty"`
}

// QuadrantResponse группирует задачи одного квадранта
type QuadrantResponse struct {
	Quadrant string         `json:"quadrant"`
	Title    string         `json:"title"`
	Tasks    []TaskResponse `json:"tasks"`
}

func toTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:              t.ID.String(),
		ProjectID:       t.ProjectID.String(),
		OwnerID:         t.OwnerID.String(),
		Title:           t.Title,
		Notes:           t.Notes,
		Column:          t.Column,
		Rank:            t.Rank,
		TaskPriority:    t.TaskPriority,
		TaskType:        t.TaskType,
		EstimatedTime:   t.EstimatedTime,
		ActualTime:      t.ActualTime,
		DueDate:         t.DueDate,
		ReminderEnabled: t.ReminderEnabled,
		ReminderOffset:  t.ReminderOffset,
		IsUrgent:        t.IsUrgent,
		IsImportant:     t.IsImportant,
		Quadrant:        string(lifecycle.ClassifyQuadrant(*t)),
		Status:          t.Status,
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	for i := range t.Subtasks {
		resp.Subtasks = append(resp.Subtasks, toSubtaskResponse(&t.Subtasks[i]))
	}
	return resp
}

func toTaskResponses(tasks []model.Task) []TaskResponse {
	response := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		response = append(response, toTaskResponse(&tasks[i]))
	}
	return response
}

func parseColumn(raw string) (model.Column, error) {
	col, ok := model.ParseColumn(raw)
	if !ok {
		return "", lifecycle.ErrInvalidColumn
	}
	return col, nil
}

// Create создает новую задачу в конце колонки
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID := uuid.MustParse(req.ProjectID)
	if _, err := h.projectRepo.GetByID(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, err)
		return
	}

	task := &model.Task{
		ProjectID:       projectID,
		OwnerID:         userID,
		Title:           req.Title,
		Notes:           req.Notes,
		TaskPriority:    model.Priority(req.TaskPriority),
		TaskType:        req.TaskType,
		EstimatedTime:   req.EstimatedTime,
		ActualTime:      req.ActualTime,
		DueDate:         req.DueDate,
		ReminderEnabled: req.ReminderEnabled,
		ReminderOffset:  req.ReminderOffset,
		IsUrgent:        req.IsUrgent,
		IsImportant:     req.IsImportant,
		Status:          model.StatusActive,
	}
	if req.Column != "" {
		col, err := parseColumn(req.Column)
		if err != nil {
			respondError(c, err)
			return
		}
		task.Column = col
	}
	if err := h.engine.Place(task); err != nil {
		respondError(c, err)
		return
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetAll возвращает задачи пользователя с фильтрами project_id, column и include_archived
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filter repository.TaskFilter
	if raw := c.Query("project_id"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
			return
		}
		filter.ProjectID = &projectID
	}
	if raw := c.Query("column"); raw != "" {
		col, err := parseColumn(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Column = &col
	}
	filter.IncludeArchived, _ = strconv.ParseBool(c.Query("include_archived"))

	h.respondList(c, userID, filter)
}

// GetArchived возвращает архивные задачи
func (h *TaskHandler) GetArchived(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.respondList(c, userID, repository.TaskFilter{OnlyArchived: true})
}

func (h *TaskHandler) respondList(c *gin.Context, userID uuid.UUID, filter repository.TaskFilter) {
	tasks, err := h.taskRepo.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// GetMatrix группирует незавершенные задачи по квадрантам
func (h *TaskHandler) GetMatrix(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskRepo.List(c.Request.Context(), userID, repository.TaskFilter{ExcludeDone: true})
	if err != nil {
		respondError(c, err)
		return
	}

	grouped := make(map[lifecycle.Quadrant][]TaskResponse, len(lifecycle.Quadrants))
	for i := range tasks {
		q := lifecycle.ClassifyQuadrant(tasks[i])
		grouped[q] = append(grouped[q], toTaskResponse(&tasks[i]))
	}

	response := make([]QuadrantResponse, 0, len(lifecycle.Quadrants))
	for _, q := range lifecycle.Quadrants {
		items := grouped[q]
		if items == nil {
			items = []TaskResponse{}
		}
		response = append(response, QuadrantResponse{Quadrant: string(q), Title: q.Title(), Tasks: items})
	}
	c.JSON(http.StatusOK, response)
}

// GetByID возвращает задачу с подзадачами
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update применяет частичное обновление; смена колонки проходит через движок
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.TaskPriority != nil {
		priority := model.Priority(*req.TaskPriority)
		if !priority.Valid() {
			respondError(c, lifecycle.ErrInvalidPriority)
			return
		}
		fields["task_priority"] = priority
	}
	if req.TaskType != nil {
		fields["task_type"] = *req.TaskType
	}
	if req.EstimatedTime != nil {
		fields["estimated_time"] = *req.EstimatedTime
	}
	if req.ActualTime != nil {
		fields["actual_time"] = *req.ActualTime
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.ReminderEnabled != nil {
		fields["reminder_enabled"] = *req.ReminderEnabled
	}
	if req.ReminderOffset != nil {
		fields["reminder_offset"] = *req.ReminderOffset
	}
	if req.IsUrgent != nil {
		fields["is_urgent"] = *req.IsUrgent
	}
	if req.IsImportant != nil {
		fields["is_important"] = *req.IsImportant
	}

	var column *model.Column
	if req.Column != nil {
		col, err := parseColumn(*req.Column)
		if err != nil {
			respondError(c, err)
			return
		}
		column = &col
	}

	var projectID *uuid.UUID
	if req.ProjectID != nil {
		id := uuid.MustParse(*req.ProjectID)
		if _, err := h.projectRepo.GetByID(ctx, userID, id); err != nil {
			respondError(c, err)
			return
		}
		fields["project_id"] = id
		projectID = &id
	}

	_, err := h.taskRepo.Edit(ctx, userID, taskID, fields, func(t model.Task) (lifecycle.TaskPatch, error) {
		projectChanged := projectID != nil && *projectID != t.ProjectID
		switch {
		case column != nil && (*column != t.Column || projectChanged):
			return h.engine.MoveToColumn(t, *column)
		case projectChanged:
			return lifecycle.TaskPatch{AppendToEnd: true}, nil
		}
		return lifecycle.TaskPatch{}, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if req.DueDate != nil || req.ReminderEnabled != nil || req.ReminderOffset != nil {
		h.forgetReminder(taskID)
	}
	h.respondTask(c, userID, taskID)
}

// Delete удаляет задачу и ее подзадачи
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}
	h.forgetReminder(taskID)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Move перемещает задачу в колонку (column в query или в теле)
func (h *TaskHandler) Move(c *gin.Context) {
	var req TaskMoveRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	col, err := parseColumn(req.Column)
	if err != nil {
		respondError(c, err)
		return
	}
	h.patch(c, func(t model.Task) (lifecycle.TaskPatch, error) {
		return h.engine.MoveToColumn(t, col)
	})
}

// MatrixDrop применяет перетаскивание на матрицу Эйзенхауэра
func (h *TaskHandler) MatrixDrop(c *gin.Context) {
	var req MatrixDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.patch(c, func(t model.Task) (lifecycle.TaskPatch, error) {
		return h.engine.ApplyQuadrantDrop(t, *req.IsUrgent, *req.IsImportant), nil
	})
}

func (h *TaskHandler) Reopen(c *gin.Context) {
	h.patch(c, h.engine.Reopen)
}

func (h *TaskHandler) Complete(c *gin.Context) {
	h.patch(c, h.engine.Complete)
}

func (h *TaskHandler) Archive(c *gin.Context) {
	h.setStatus(c, model.StatusArchived)
}

func (h *TaskHandler) Unarchive(c *gin.Context) {
	h.setStatus(c, model.StatusActive)
}

// Reorder переписывает ранги задач колонки в переданном порядке
func (h *TaskHandler) Reorder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.TaskIDs))
	for _, raw := range req.TaskIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	if err := h.taskRepo.Reorder(c.Request.Context(), userID, ids); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tasks reordered"})
}

// Drop вставляет задачу в колонку на позицию row
func (h *TaskHandler) Drop(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req TaskDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	col, err := parseColumn(req.Column)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := h.taskRepo.Drop(c.Request.Context(), userID, taskID, col, req.Row, h.engine)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) patch(c *gin.Context, fn repository.PatchFunc) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.taskRepo.ApplyPatch(c.Request.Context(), userID, taskID, fn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) setStatus(c *gin.Context, status model.Status) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.taskRepo.SetStatus(c.Request.Context(), userID, taskID, status); err != nil {
		respondError(c, err)
		return
	}
	h.respondTask(c, userID, taskID)
}

func (h *TaskHandler) respondTask(c *gin.Context, userID, taskID uuid.UUID) {
	task, err := h.taskRepo.GetByID(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}
