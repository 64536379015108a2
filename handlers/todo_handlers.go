package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskloop/api/models"
	"taskloop/api/store"
)

type TodoHandlers struct {
	TodoStore *store.TodoStore
	Activity  *store.ActivityStore
}

func NewTodoHandlers(todoStore *store.TodoStore, activity *store.ActivityStore) *TodoHandlers {
	return &TodoHandlers{TodoStore: todoStore, Activity: activity}
}

// currentUserID reads the authenticated identity set by the auth middleware.
// Handlers should be unreachable without it, but reject rather than trust a
// missing identity.
func currentUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := v.(int)
	return userID, ok
}

func (h *TodoHandlers) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	todos, err := h.TodoStore.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		log.Printf("ERROR: Failed to list todos for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}

	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandlers) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	todo, err := h.TodoStore.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		log.Printf("ERROR: Failed to create todo for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	recordActivity(c, h.Activity, models.ActionTodoCreated, userID, todo.ID)

	c.JSON(http.StatusOK, todo)
}

// authorizeTodo looks up the todo on the given path and checks ownership.
// A malformed id, a missing todo, and a todo owned by someone else all
// produce the same 403 so callers cannot learn whether the id exists.
func (h *TodoHandlers) authorizeTodo(c *gin.Context, userID int) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return 0, false
	}

	todo, err := h.TodoStore.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrTodoNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
			return 0, false
		}
		log.Printf("ERROR: Failed to fetch todo %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todo"})
		return 0, false
	}

	if todo.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return 0, false
	}

	return id, true
}

func (h *TodoHandlers) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// An absent body is a valid empty partial update; only malformed JSON
	// is rejected.
	var req models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	id, ok := h.authorizeTodo(c, userID)
	if !ok {
		return
	}

	todo, err := h.TodoStore.Update(c.Request.Context(), id, req.Title, req.Completed)
	if err != nil {
		log.Printf("ERROR: Failed to update todo %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}

	recordActivity(c, h.Activity, models.ActionTodoUpdated, userID, id)

	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandlers) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := h.authorizeTodo(c, userID)
	if !ok {
		return
	}

	if err := h.TodoStore.Delete(c.Request.Context(), id); err != nil {
		// The ownership check already passed, so a vanished row means a
		// concurrent delete; surface it the same way as any unknown id.
		if errors.Is(err, models.ErrTodoNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
			return
		}
		log.Printf("ERROR: Failed to delete todo %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	recordActivity(c, h.Activity, models.ActionTodoDeleted, userID, id)

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
