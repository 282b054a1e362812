package handler

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blitzit/internal/model"
	"blitzit/internal/repository"
)

type ProjectHandler struct {
	repo repository.ProjectRepositoryInterface
}

func NewProjectHandler(repo repository.ProjectRepositoryInterface) *ProjectHandler {
	return &ProjectHandler{repo: repo}
}

// ProjectRequest представляет запрос на создание проекта
type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ProjectUpdateRequest перезаписывает только переданные поля
type ProjectUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type ProjectResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		OwnerID:     p.OwnerID.String(),
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Create создает новый проект
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	color := req.Color
	if color == "" {
		color = model.ProjectColors[rand.IntN(len(model.ProjectColors))]
	}

	project := &model.Project{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       color,
	}
	if err := h.repo.Create(c.Request.Context(), project); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

// GetAll возвращает все проекты пользователя
func (h *ProjectHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projects, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		response = append(response, toProjectResponse(&projects[i]))
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	var req ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Color != nil {
		project.Color = *req.Color
	}

	if err := h.repo.Update(c.Request.Context(), project); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

// Delete удаляет проект вместе с задачами и подзадачами
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
