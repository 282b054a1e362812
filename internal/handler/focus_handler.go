package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blitzit/internal/focus"
	"blitzit/internal/lifecycle"
	"blitzit/internal/repository"
)

// FocusHandler drives one focus session per user. Progress is written back to
// the task's actual_time whenever the session is paused, saved, skipped,
// completed, replaced or ended with save.
type FocusHandler struct {
	taskRepo repository.TaskRepositoryInterface
	manager  *focus.Manager
	engine   *lifecycle.Engine
}

func NewFocusHandler(taskRepo repository.TaskRepositoryInterface, manager *focus.Manager, engine *lifecycle.Engine) *FocusHandler {
	return &FocusHandler{
		taskRepo: taskRepo,
		manager:  manager,
		engine:   engine,
	}
}

// FocusStartRequest открывает сессию для задачи; autostart по умолчанию true
type FocusStartRequest struct {
	TaskID    string `json:"task_id" binding:"required,uuid"`
	Autostart *bool  `json:"autostart"`
}

type FocusResponse struct {
	Active  bool         `json:"active"`
	Clock   string       `json:"clock"`
	Session *focus.State `json:"session,omitempty"`
}

func toFocusResponse(state focus.State, active bool) FocusResponse {
	if !active {
		return FocusResponse{Clock: focus.FormatClock(0)}
	}
	return FocusResponse{
		Active:  true,
		Clock:   focus.FormatClock(state.TimeLeftSeconds),
		Session: &state,
	}
}

// Start открывает новую сессию, сохраняя прогресс предыдущей
func (h *FocusHandler) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req FocusStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	autostart := req.Autostart == nil || *req.Autostart

	state, err := h.start(c.Request.Context(), userID, uuid.MustParse(req.TaskID), autostart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFocusResponse(state, true))
}

// Get возвращает текущее состояние сессии
func (h *FocusHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, active := h.manager.Snapshot(userID)
	c.JSON(http.StatusOK, toFocusResponse(state, active))
}

// Toggle ставит сессию на паузу или возобновляет ее; пауза сохраняет прогресс
func (h *FocusHandler) Toggle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, active := h.manager.Toggle(userID)
	if !active {
		c.JSON(http.StatusConflict, gin.H{"error": "No active focus session"})
		return
	}
	if state.Paused {
		if err := h.persist(c.Request.Context(), userID, state); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, toFocusResponse(state, true))
}

// Save записывает отработанные минуты, не останавливая сессию
func (h *FocusHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, active := h.manager.Snapshot(userID)
	if !active {
		c.JSON(http.StatusConflict, gin.H{"error": "No active focus session"})
		return
	}
	if err := h.persist(c.Request.Context(), userID, state); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFocusResponse(state, true))
}

// Skip сохраняет прогресс и переходит к следующей задаче из Today
func (h *FocusHandler) Skip(c *gin.Context) {
	h.advance(c, false)
}

// Complete сохраняет прогресс, переносит задачу в Done и переходит к следующей
func (h *FocusHandler) Complete(c *gin.Context) {
	h.advance(c, true)
}

// End завершает сессию; с save=true прогресс сохраняется
func (h *FocusHandler) End(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	save, _ := strconv.ParseBool(c.Query("save"))

	state, active := h.manager.End(userID)
	if !active {
		c.JSON(http.StatusConflict, gin.H{"error": "No active focus session"})
		return
	}
	if save {
		if err := h.persist(c.Request.Context(), userID, state); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ended": toFocusResponse(state, true), "saved": save})
}

func (h *FocusHandler) advance(c *gin.Context, complete bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	state, active := h.manager.End(userID)
	if !active {
		c.JSON(http.StatusConflict, gin.H{"error": "No active focus session"})
		return
	}
	if err := h.persist(ctx, userID, state); err != nil {
		respondError(c, err)
		return
	}

	today, err := h.taskRepo.ListToday(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ids := make([]uuid.UUID, 0, len(today))
	for _, t := range today {
		ids = append(ids, t.ID)
	}
	nextID, hasNext := focus.NextInFlow(ids, state.TaskID, true)

	if complete {
		if _, err := h.taskRepo.ApplyPatch(ctx, userID, state.TaskID, h.engine.Complete); err != nil {
			respondError(c, err)
			return
		}
	}

	if !hasNext {
		c.JSON(http.StatusOK, gin.H{"finished": true, "focus": toFocusResponse(focus.State{}, false)})
		return
	}
	next, err := h.start(ctx, userID, nextID, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"finished": false, "focus": toFocusResponse(next, true)})
}

func (h *FocusHandler) start(ctx context.Context, userID, taskID uuid.UUID, autostart bool) (focus.State, error) {
	task, err := h.taskRepo.GetByID(ctx, userID, taskID)
	if err != nil {
		return focus.State{}, err
	}

	previous, state := h.manager.Start(userID, *task)
	if previous != nil {
		if err := h.persist(ctx, userID, *previous); err != nil && !repository.IsNotFound(err) {
			return focus.State{}, err
		}
	}
	if autostart {
		state, _ = h.manager.Toggle(userID)
	}
	return state, nil
}

func (h *FocusHandler) persist(ctx context.Context, userID uuid.UUID, state focus.State) error {
	return h.taskRepo.UpdateActualTime(ctx, userID, state.TaskID, state.MinutesWorked)
}
