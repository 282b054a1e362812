package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blitzit/internal/model"
	"blitzit/internal/repository"
)

type SubtaskHandler struct {
	repo repository.SubtaskRepositoryInterface
}

func NewSubtaskHandler(repo repository.SubtaskRepositoryInterface) *SubtaskHandler {
	return &SubtaskHandler{repo: repo}
}

// SubtaskRequest представляет запрос на создание подзадачи
type SubtaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type SubtaskUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	IsCompleted *bool   `json:"is_completed"`
}

type SubtaskResponse struct {
	ID           string    `json:"id"`
	ParentTaskID string    `json:"parent_task_id"`
	Title        string    `json:"title"`
	IsCompleted  bool      `json:"is_completed"`
	CreatedAt    time.Time `json:"created_at"`
}

func toSubtaskResponse(st *model.SubTask) SubtaskResponse {
	return SubtaskResponse{
		ID:           st.ID.String(),
		ParentTaskID: st.ParentTaskID.String(),
		Title:        st.Title,
		IsCompleted:  st.IsCompleted,
		CreatedAt:    st.CreatedAt,
	}
}

// Create добавляет подзадачу к задаче :id
func (h *SubtaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask := &model.SubTask{ParentTaskID: taskID, Title: req.Title}
	if err := h.repo.Create(c.Request.Context(), userID, subtask); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSubtaskResponse(subtask))
}

func (h *SubtaskHandler) GetByTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	subtasks, err := h.repo.ListByTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]SubtaskResponse, 0, len(subtasks))
	for i := range subtasks {
		response = append(response, toSubtaskResponse(&subtasks[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Update переименовывает подзадачу или отмечает ее выполненной
func (h *SubtaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "id", "subtask")
	if !ok {
		return
	}

	var req SubtaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.IsCompleted != nil {
		fields["is_completed"] = *req.IsCompleted
	}

	subtask, err := h.repo.Update(c.Request.Context(), userID, subtaskID, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSubtaskResponse(subtask))
}

func (h *SubtaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "id", "subtask")
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), userID, subtaskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted"})
}
