package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"blitzit/internal/auth"
	"blitzit/internal/model"
	"blitzit/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ProjectCreator creates the default project of a new account.
type ProjectCreator interface {
	Create(ctx context.Context, project *model.Project) error
}

type UserHandler struct {
	repo      repository.UserRepositoryInterface
	projects  ProjectCreator
	jwtSecret string
	jwtExpiry time.Duration
}

func NewUserHandler(repo repository.UserRepositoryInterface, projects ProjectCreator, jwtSecret string, jwtExpiry time.Duration) *UserHandler {
	return &UserHandler{repo: repo, projects: projects, jwtSecret: jwtSecret, jwtExpiry: jwtExpiry}
}

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`
}

// AuthResponse содержит токен и данные пользователя
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type TelegramLinkRequest struct {
	ChatID *int64 `json:"chat_id"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email, TelegramChatID: u.TelegramChatID}
}

// Register создает пользователя и его проект Inbox
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	req.Email = strings.ToLower(req.Email)

	existing, err := h.repo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Hash error"})
		return
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: string(hash),
	}

	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create failed"})
		return
	}

	if h.projects != nil {
		inbox := &model.Project{
			OwnerID: user.ID,
			Name:    model.DefaultProjectName,
			Color:   model.DefaultProjectColor,
		}
		if err := h.projects.Create(c.Request.Context(), inbox); err != nil {
			log.Printf("⚠️  Default project for %s not created: %v", user.Email, err)
		}
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login проверяет учетные данные и выдает токен
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.repo.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Me возвращает текущего пользователя
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// LinkTelegram sets or clears the chat that receives reminders
func (h *UserHandler) LinkTelegram(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TelegramLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := h.repo.SetTelegramChatID(c.Request.Context(), userID, req.ChatID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, user *model.User) {
	token, err := auth.GenerateToken(h.jwtSecret, user.ID, h.jwtExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token error"})
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: toUserResponse(user)})
}
