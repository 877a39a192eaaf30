package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tasktracker/internal/domain"
	"tasktracker/internal/http/middleware"
	"tasktracker/internal/repository"
	"tasktracker/internal/ws"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

// updateTaskRequest carries partial updates; nil means "keep as is".
type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   *bool      `json:"completed"`
}

// ListTasks returns the caller's tasks, newest first, optionally narrowed
// by ?status=pending|completed.
func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	status := c.DefaultQuery("status", domain.StatusAll)
	tasks, err := h.Tasks.ListByOwner(c.Request.Context(), userID, status)
	if err != nil {
		serverError(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask adds a task owned by the caller. The owner cannot be chosen
// by the client.
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req createTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
		return
	}

	task := &domain.Task{
		OwnerID:     userID,
		Title:       title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if err := h.Tasks.Create(c.Request.Context(), task); err != nil {
		serverError(c, "create task", err)
		return
	}

	h.publish(userID, ws.Event{Type: ws.EventTaskCreated, Task: task})
	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update after confirming ownership. A task
// someone else owns gets the same 404 as one that does not exist.
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	id, ok := taskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	task, err := h.Tasks.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		serverError(c, "load task", err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := h.Tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		serverError(c, "update task", err)
		return
	}

	h.publish(userID, ws.Event{Type: ws.EventTaskUpdated, Task: task})
	c.JSON(http.StatusOK, task)
}

// ToggleTask flips the completion flag.
func (h *Handler) ToggleTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.ToggleCompleted(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		serverError(c, "toggle task", err)
		return
	}

	h.publish(userID, ws.Event{Type: ws.EventTaskUpdated, Task: task})
	c.JSON(http.StatusOK, task)
}

// DeleteTask removes the task and acknowledges; the entity is not echoed.
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		serverError(c, "delete task", err)
		return
	}

	h.publish(userID, ws.Event{Type: ws.EventTaskDeleted, ID: id})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid task id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) publish(userID int64, ev ws.Event) {
	if h.Events != nil {
		h.Events.Publish(userID, ev)
	}
}
