package handlers

import (
	"net/http"
	"strconv"

	"pooldesk/internal/database"
	"pooldesk/internal/models"

	"github.com/gin-gonic/gin"
)

// ListActivities: общий журнал, свежие сверху.
func (h *Handlers) ListActivities(c *gin.Context) {
	customerID, ok := queryID(c, "customer_id")
	if !ok {
		return
	}
	f := database.ActivityFilter{
		CustomerID: customerID,
		Type:       models.ActivityType(c.Query("type")),
		Limit:      200,
	}
	if f.Type != "" && !f.Type.Valid() {
		badRequest(c, "invalid type")
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "invalid limit")
			return
		}
		f.Limit = n
	}

	logs, err := h.store.ListActivities(c.Request.Context(), f)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
