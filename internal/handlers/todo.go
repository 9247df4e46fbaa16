package handlers

import (
	"net/http"
	"time"

	"pooldesk/internal/apperr"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListTodos(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	todos, err := h.tracker.Todos(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// NextTodo отдаёт null, когда весь чек-лист закрыт.
func (h *Handlers) NextTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	next, err := h.tracker.NextTodo(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, next)
}

func (h *Handlers) Progress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.tracker.Progress(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type toggleRequest struct {
	Completed   *bool      `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (h *Handlers) ToggleTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.toggle(c, id)
}

// ToggleProjectTodo: то же, но задача обязана принадлежать проекту из пути.
func (h *Handlers) ToggleProjectTodo(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	todoID, ok := parseID(c, "todoId")
	if !ok {
		return
	}

	todo, err := h.store.GetProjectTodo(c.Request.Context(), todoID)
	if err != nil {
		renderError(c, err)
		return
	}
	if todo.ProjectID != projectID {
		renderError(c, apperr.NotFound("project_todo", todoID))
		return
	}
	h.toggle(c, todoID)
}

func (h *Handlers) toggle(c *gin.Context, todoID uint) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Completed == nil {
		renderError(c, apperr.Invalid("completed", "is required"))
		return
	}

	todo, err := h.tracker.ToggleComplete(c.Request.Context(), todoID, *req.Completed, req.CompletedAt)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}
