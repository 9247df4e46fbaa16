package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"pooldesk/internal/apperr"
	"pooldesk/internal/database"
	"pooldesk/internal/lifecycle"
	"pooldesk/internal/metrics"
	"pooldesk/internal/middleware"
	"pooldesk/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//
// СПИСОК ПРОЕКТОВ
//

// Список проектов + фильтры
func (h *Handlers) ListProjects(c *gin.Context) {
	customerID, ok := queryID(c, "customer_id")
	if !ok {
		return
	}
	f := database.ProjectFilter{
		CustomerID: customerID,
		Status:     models.ProjectStatus(c.Query("status")),
		Type:       models.ProjectType(c.Query("type")),
	}
	if f.Status != "" && !f.Status.Valid() {
		badRequest(c, "invalid status")
		return
	}
	if f.Type != "" && !f.Type.Valid() {
		badRequest(c, "invalid type")
		return
	}

	projects, err := h.store.ListProjects(c.Request.Context(), f)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

//
// СОЗДАНИЕ ПРОЕКТА
//

type projectRequest struct {
	CustomerID  uint               `json:"customerId"`
	Name        string             `json:"name"`
	Type        models.ProjectType `json:"type"`
	Budget      int64              `json:"budget"`
	Description string             `json:"description"`
	Address     string             `json:"address"`
	City        string             `json:"city"`
	State       string             `json:"state"`
	ZipCode     string             `json:"zipCode"`
	StartDate   *time.Time         `json:"startDate"`
}

func (r projectRequest) validate() error {
	if r.CustomerID == 0 {
		return apperr.Invalid("customerId", "is required")
	}
	if name := strings.TrimSpace(r.Name); name != "" && len(name) < 3 {
		return apperr.Invalid("name", "must be at least 3 characters")
	}
	if r.Type != "" && !r.Type.Valid() {
		return apperr.Invalid("type", fmt.Sprintf("unknown project type %q", r.Type))
	}
	if r.Budget < 0 {
		return apperr.Invalid("budget", "must not be negative")
	}
	return nil
}

// CreateProject: ручное заведение проекта (вторая чаша, реконструкция и т.п.).
// Пустые поля берутся из карточки клиента, чек-лист заполняется как при продаже.
func (h *Handlers) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()
	log := middleware.Logger(c)

	customer, err := h.store.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		renderError(c, err)
		return
	}

	project := lifecycle.NewProjectForCustomer(customer)
	overlay(&project.Name, req.Name)
	overlay(&project.Description, req.Description)
	overlay(&project.Address, req.Address)
	overlay(&project.City, req.City)
	overlay(&project.State, req.State)
	overlay(&project.ZipCode, req.ZipCode)
	if req.Type != "" {
		project.Type = req.Type
	}
	project.Budget = req.Budget
	project.StartDate = req.StartDate

	if err := h.store.CreateProject(ctx, project); err != nil {
		renderError(c, err)
		return
	}
	metrics.ProjectsCreated.Inc()

	todos, err := h.templates.SeedDefaultTodos(ctx, project.ID)
	if err != nil {
		metrics.IncSideEffectFailure("todos")
		log.Warn("project created but default todos were not seeded",
			zap.Uint("project_id", project.ID), zap.Error(err))
	}
	project.Todos = todos

	h.store.LogActivity(ctx, log, models.Activity{
		ProjectID:   ptr(project.ID),
		CustomerID:  ptr(customer.ID),
		UserID:      lifecycle.ActorFromContext(ctx),
		Type:        models.ActivityProjectCreated,
		Description: fmt.Sprintf("Project %q created manually for %s", project.Name, customer.FullName()),
		Metadata:    map[string]any{"type": string(project.Type), "todoCount": len(todos)},
	})

	c.JSON(http.StatusCreated, project)
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

//
// КАРТОЧКА ПРОЕКТА
//

type projectDetail struct {
	*models.Project
	Progress lifecycle.Progress `json:"progress"`
}

func (h *Handlers) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	project, err := h.store.GetProject(ctx, id)
	if err != nil {
		renderError(c, err)
		return
	}
	todos, err := h.tracker.Todos(ctx, id)
	if err != nil {
		renderError(c, err)
		return
	}
	project.Todos = todos

	c.JSON(http.StatusOK, projectDetail{Project: project, Progress: lifecycle.ComputeProgress(todos)})
}

//
// СМЕНА ФАЗЫ
//

type statusRequest struct {
	Status models.ProjectStatus `json:"status"`
}

func (h *Handlers) ChangeProjectStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		renderError(c, apperr.Invalid("status", fmt.Sprintf("unknown project status %q", req.Status)))
		return
	}

	ctx := c.Request.Context()
	project, err := h.store.GetProject(ctx, id)
	if err != nil {
		renderError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if !canChangeProjectStatus(user.Role, project.Status, req.Status) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": fmt.Sprintf("role %s cannot move project from %s to %s", user.Role, project.Status, req.Status),
		})
		return
	}

	prev := project.Status
	project.Status = req.Status
	if req.Status == models.StatusCompleted {
		now := time.Now().UTC()
		project.CompletedAt = &now
	} else {
		project.CompletedAt = nil
	}

	if err := h.store.UpdateProjectStatus(ctx, project); err != nil {
		renderError(c, err)
		return
	}

	h.store.LogActivity(ctx, middleware.Logger(c), models.Activity{
		ProjectID:   ptr(project.ID),
		CustomerID:  ptr(project.CustomerID),
		UserID:      user.ID,
		Type:        models.ActivityProjectUpdated,
		Description: fmt.Sprintf("Project phase changed from %s to %s", prev, project.Status),
		Metadata:    map[string]any{"from": string(prev), "to": string(project.Status)},
	})

	c.JSON(http.StatusOK, project)
}

// логика ролей: админ двигает как угодно, прораб только вперёд по фазам
// или на паузу и обратно
func canChangeProjectStatus(role models.UserRole, current, next models.ProjectStatus) bool {
	if current == next {
		return false
	}

	switch role {

	case models.RoleAdmin:
		return true

	case models.RoleManager:
		if current.Terminal() {
			return false
		}
		if phase, ok := current.NextPhase(); ok && phase == next {
			return true
		}
		if next == models.StatusOnHold {
			return true
		}
		// с паузы возвращаемся в любую рабочую фазу
		if current == models.StatusOnHold {
			return !next.Terminal()
		}
		return false

	default:
		return false
	}
}

//
// ИСТОРИЯ ПРОЕКТА
//

func (h *Handlers) ProjectActivities(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.GetProject(ctx, id); err != nil {
		renderError(c, err)
		return
	}
	logs, err := h.store.ListActivities(ctx, database.ActivityFilter{ProjectID: id, Limit: 200})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
