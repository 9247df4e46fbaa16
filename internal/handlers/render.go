package handlers

import (
	"net/http"
	"strconv"

	"pooldesk/internal/apperr"
	"pooldesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// renderError переводит ошибку домена в HTTP-статус и {"error": "..."}.
func renderError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case apperr.IsNotFound(err):
		status, msg = http.StatusNotFound, err.Error()
	case apperr.IsValidation(err):
		status, msg = http.StatusBadRequest, err.Error()
	case apperr.IsConflict(err):
		status, msg = http.StatusConflict, err.Error()
	default:
		// детали хранилища наружу не отдаём
		middleware.Logger(c).Error("request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parseID читает положительный id из пути; при ошибке уже ответил 400.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func ptr[T any](v T) *T { return &v }
