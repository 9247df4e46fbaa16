package server

import (
	"net/http"

	"pooldesk/internal/auth"
	"pooldesk/internal/config"
	"pooldesk/internal/handlers"
	"pooldesk/internal/metrics"
	"pooldesk/internal/middleware"
	"pooldesk/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(cfg *config.Config, h *handlers.Handlers, users middleware.UserGetter, issuer *auth.Issuer, logger *zap.Logger) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(metrics.GinMiddleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.JWTTTL.Seconds()),
		HttpOnly: true,
		Secure:   !cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("pooldesk_session", store))

	r.Use(middleware.InjectUser(users, issuer))

	// HEALTHCHECK
	r.GET("/health", h.Health)
	r.GET("/readyz", h.Ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	// AUTH
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	authed := api.Group("/")
	authed.Use(middleware.RequireAuth())

	authed.GET("/me", h.Me)

	sales := middleware.RequireRole(models.RoleAdmin, models.RoleSales)
	crew := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

	// КЛИЕНТЫ
	authed.GET("/customers", h.ListCustomers)
	authed.POST("/customers", sales, h.CreateCustomer)
	authed.GET("/customers/:id", h.GetCustomer)
	authed.PUT("/customers/:id", sales, h.UpdateCustomer)
	authed.GET("/customers/:id/projects", h.CustomerProjects)

	// ПРОЕКТЫ
	authed.GET("/projects", h.ListProjects)
	authed.POST("/projects", middleware.RequireRole(models.RoleAdmin, models.RoleSales, models.RoleManager), h.CreateProject)
	authed.GET("/projects/:id", h.GetProject)
	authed.PUT("/projects/:id/status", crew, h.ChangeProjectStatus)
	authed.GET("/projects/:id/activities", h.ProjectActivities)

	// ЧЕК-ЛИСТ
	authed.GET("/projects/:id/todos", h.ListTodos)
	authed.GET("/projects/:id/todos/next", h.NextTodo)
	authed.GET("/projects/:id/progress", h.Progress)
	authed.PUT("/projects/:id/todos/:todoId", crew, h.ToggleProjectTodo)
	authed.PUT("/todos/:id", crew, h.ToggleTodo)

	// ЖУРНАЛ
	authed.GET("/activities", h.ListActivities)

	return r
}
