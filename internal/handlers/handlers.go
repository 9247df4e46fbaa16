package handlers

import (
	"pooldesk/internal/auth"
	"pooldesk/internal/database"
	"pooldesk/internal/lifecycle"

	"go.uber.org/zap"
)

// Handlers: JSON API поверх хранилища и сервисов жизненного цикла.
type Handlers struct {
	store     *database.Store
	orch      *lifecycle.Orchestrator
	tracker   *lifecycle.Tracker
	templates *lifecycle.TemplateProvider
	issuer    *auth.Issuer
	logger    *zap.Logger
}

func New(
	store *database.Store,
	orch *lifecycle.Orchestrator,
	tracker *lifecycle.Tracker,
	templates *lifecycle.TemplateProvider,
	issuer *auth.Issuer,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:     store,
		orch:      orch,
		tracker:   tracker,
		templates: templates,
		issuer:    issuer,
		logger:    logger,
	}
}
