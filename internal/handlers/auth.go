package handlers

import (
	"net/http"
	"strings"
	"time"

	"pooldesk/internal/apperr"
	"pooldesk/internal/middleware"
	"pooldesk/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	credentials
	Role models.UserRole `json:"role"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Password) < 6 {
		renderError(c, apperr.Invalid("username", "username must be at least 3 and password at least 6 characters"))
		return
	}

	// сам себе админа не заведёшь
	switch req.Role {
	case models.RoleSales, models.RoleManager, models.RoleViewer:
	default:
		renderError(c, apperr.Invalid("role", "role must be sales, manager or viewer"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		renderError(c, err)
		return
	}
	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		if apperr.IsConflict(err) {
			renderError(c, apperr.Conflict("user already exists"))
			return
		}
		renderError(c, err)
		return
	}

	middleware.Logger(c).Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, user)
}

func (h *Handlers) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.store.GetUserByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !apperr.IsNotFound(err) {
		renderError(c, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	if err := sess.Save(); err != nil {
		renderError(c, err)
		return
	}

	token, exp, err := h.issuer.Issue(user)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: *user})
}

func (h *Handlers) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Status(http.StatusNoContent)
}

func (h *Handlers) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, user)
}
