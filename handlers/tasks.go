package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-backend/model"
	"github.com/taskflow/taskflow-backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TasksHandler struct {
	tasks store.TaskStore
}

func NewTasksHandler(tasks store.TaskStore) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// ListTasksHandler returns the caller's tasks only. An empty board comes
// back as [] rather than null.
func (h *TasksHandler) ListTasksHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.tasks.ListByOwner(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type taskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func validateTaskEnums(status, priority string) []gin.H {
	var errs []gin.H
	if status != "" && !model.ValidStatus(status) {
		errs = append(errs, gin.H{"field": "status", "message": "status must be one of pending, in-progress, completed"})
	}
	if priority != "" && !model.ValidPriority(priority) {
		errs = append(errs, gin.H{"field": "priority", "message": "priority must be one of low, medium, high"})
	}
	return errs
}

// NewTaskHandler creates a task owned by the caller. Any owner field in the
// body is ignored.
func (h *TasksHandler) NewTaskHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}
	if errs := validateTaskEnums(req.Status, req.Priority); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		User:        user.ID,
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	if err := h.tasks.Create(ctx, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTaskHandler reads one task. Unknown ids are 404; someone else's task
// is 401, matching the longstanding split even though it confirms the id
// exists.
func (h *TasksHandler) GetTaskHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	task, status, errMsg := h.fetchOwnedTask(ctx, c.Param("id"), user.ID, "access")
	if task == nil {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTaskHandler applies a partial or full field replacement after the
// ownership check. Enum fields are re-validated.
func (h *TasksHandler) UpdateTaskHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}

	var req struct {
		Title       string     `json:"title"`
		Description *string    `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}
	if errs := validateTaskEnums(req.Status, req.Priority); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 8*time.Second)
	defer cancel()

	task, status, errMsg := h.fetchOwnedTask(ctx, c.Param("id"), user.ID, "update")
	if task == nil {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := h.tasks.Update(ctx, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TasksHandler) DeleteTaskHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	task, status, errMsg := h.fetchOwnedTask(ctx, c.Param("id"), user.ID, "delete")
	if task == nil {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}

	if err := h.tasks.Delete(ctx, task.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task removed"})
}

// DebugHandler echoes the authenticated identity, handy when wiring up a
// client against the API.
func (h *TasksHandler) DebugHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Authentication successful",
		"user": gin.H{
			"id":    user.ID.Hex(),
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// fetchOwnedTask resolves an id param to a task the caller owns. The nil
// task return carries the status and message to send instead.
func (h *TasksHandler) fetchOwnedTask(ctx context.Context, idParam string, owner primitive.ObjectID, action string) (*model.Task, int, string) {
	id, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		return nil, http.StatusBadRequest, "invalid id format"
	}

	task, err := h.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, http.StatusNotFound, "Task not found"
		}
		return nil, http.StatusInternalServerError, "Server error"
	}

	if task.User != owner {
		return nil, http.StatusUnauthorized, "Not authorized to " + action + " this task"
	}
	return task, 0, ""
}
