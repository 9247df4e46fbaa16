package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"pooldesk/internal/apperr"
	"pooldesk/internal/database"
	"pooldesk/internal/lifecycle"
	"pooldesk/internal/middleware"
	"pooldesk/internal/models"

	"github.com/gin-gonic/gin"
)

type customerRequest struct {
	FirstName string                  `json:"firstName"`
	LastName  string                  `json:"lastName"`
	Email     string                  `json:"email"`
	Phone     string                  `json:"phone"`
	Address   string                  `json:"address"`
	City      string                  `json:"city"`
	State     string                  `json:"state"`
	ZipCode   string                  `json:"zipCode"`
	Status    models.CustomerStatus   `json:"status"`
	Priority  models.CustomerPriority `json:"priority"`
	Source    string                  `json:"source"`
	Notes     string                  `json:"notes"`
}

func (r customerRequest) toModel() (models.Customer, error) {
	c := models.Customer{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		Address:   strings.TrimSpace(r.Address),
		City:      strings.TrimSpace(r.City),
		State:     strings.TrimSpace(r.State),
		ZipCode:   strings.TrimSpace(r.ZipCode),
		Status:    r.Status,
		Priority:  r.Priority,
		Source:    strings.TrimSpace(r.Source),
		Notes:     strings.TrimSpace(r.Notes),
	}
	if c.Status == "" {
		c.Status = models.CustomerNew
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}

	switch {
	case c.FirstName == "":
		return c, apperr.Invalid("firstName", "must not be blank")
	case c.LastName == "":
		return c, apperr.Invalid("lastName", "must not be blank")
	case !c.Status.Valid():
		return c, apperr.Invalid("status", fmt.Sprintf("unknown customer status %q", c.Status))
	case c.Status == models.CustomerSold:
		// продажа это переход, проект рождается только на нём
		return c, apperr.Invalid("status", "create the lead first, then mark it sold")
	case !c.Priority.Valid():
		return c, apperr.Invalid("priority", fmt.Sprintf("unknown priority %q", c.Priority))
	}
	return c, nil
}

//
// СПИСОК / СОЗДАНИЕ
//

func (h *Handlers) ListCustomers(c *gin.Context) {
	f := database.CustomerFilter{
		Status: models.CustomerStatus(c.Query("status")),
		Query:  strings.TrimSpace(c.Query("q")),
	}
	if f.Status != "" && !f.Status.Valid() {
		badRequest(c, "invalid status")
		return
	}

	customers, err := h.store.ListCustomers(c.Request.Context(), f)
	if err != nil {
		renderError(c, err)
		return
	}
	maskContacts(c, customers)
	c.JSON(http.StatusOK, customers)
}

func (h *Handlers) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	customer, err := req.toModel()
	if err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.store.CreateCustomer(ctx, &customer); err != nil {
		renderError(c, err)
		return
	}

	h.store.LogActivity(ctx, middleware.Logger(c), models.Activity{
		CustomerID:  ptr(customer.ID),
		UserID:      lifecycle.ActorFromContext(ctx),
		Type:        models.ActivityCustomerCreated,
		Description: "Customer created: " + customer.FullName(),
		Metadata:    map[string]any{"status": string(customer.Status), "source": customer.Source},
	})

	c.JSON(http.StatusCreated, customer)
}

//
// КАРТОЧКА / ИЗМЕНЕНИЕ
//

func (h *Handlers) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	customer, err := h.store.GetCustomer(ctx, id)
	if err != nil {
		renderError(c, err)
		return
	}
	if customer.Projects, err = h.store.ListCustomerProjects(ctx, id); err != nil {
		renderError(c, err)
		return
	}
	view := []models.Customer{*customer}
	maskContacts(c, view)
	c.JSON(http.StatusOK, view[0])
}

// UpdateCustomer идёт через оркестратор: переход в sold порождает проект.
func (h *Handlers) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var upd models.CustomerUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	customer, err := h.orch.PromoteCustomer(ctx, id, upd)
	if err != nil {
		renderError(c, err)
		return
	}

	// смену статуса журналирует оркестратор, здесь только остальные поля
	changed := upd.Columns()
	delete(changed, "status")
	if len(changed) > 0 {
		fields := make([]string, 0, len(changed))
		for col := range changed {
			fields = append(fields, col)
		}
		slices.Sort(fields)
		h.store.LogActivity(ctx, middleware.Logger(c), models.Activity{
			CustomerID:  ptr(customer.ID),
			UserID:      lifecycle.ActorFromContext(ctx),
			Type:        models.ActivityCustomerUpdated,
			Description: "Customer updated: " + customer.FullName(),
			Metadata:    map[string]any{"fields": fields},
		})
	}

	c.JSON(http.StatusOK, customer)
}

func (h *Handlers) CustomerProjects(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.GetCustomer(ctx, id); err != nil {
		renderError(c, err)
		return
	}
	projects, err := h.store.ListCustomerProjects(ctx, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}
