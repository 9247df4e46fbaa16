package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pooldesk/internal/apperr"
	"pooldesk/internal/metrics"
	"pooldesk/internal/models"

	"go.uber.org/zap"
)

// Orchestrator проводит клиента по воронке: закрытая продажа порождает проект
// с чек-листом и записью в журнале.
type Orchestrator struct {
	store     Store
	templates *TemplateProvider
	locks     Locker
	events    Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrchestrator(store Store, templates *TemplateProvider, locks Locker, events Publisher, logger *zap.Logger) *Orchestrator {
	if templates == nil {
		templates = NewTemplateProvider(store, nil)
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:     store,
		templates: templates,
		locks:     locks,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// PromoteCustomer применяет изменения клиента. Запись клиента: основная операция:
// её ошибка возвращается вызывающему. Проект, чек-лист, журнал и событие: побочные
// шаги: их сбои только логируются и на ответ не влияют.
func (o *Orchestrator) PromoteCustomer(ctx context.Context, customerID uint, upd models.CustomerUpdate) (*models.Customer, error) {
	if err := validateCustomerUpdate(upd); err != nil {
		return nil, err
	}

	unlock, err := o.locks.Lock(ctx, CustomerLockKey(customerID))
	if err != nil {
		return nil, fmt.Errorf("lock customer %d: %w", customerID, err)
	}
	defer unlock()

	if _, err := o.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	prev, updated, err := o.store.UpdateCustomer(ctx, customerID, upd)
	if err != nil {
		return nil, err
	}

	// клиент уже записан: отмена запроса не должна обрывать хвост
	sideCtx := context.WithoutCancel(ctx)
	log := o.logger.With(zap.Uint("customer_id", customerID))

	switch {
	case models.IsSaleTransition(prev, updated.Status):
		o.onSale(sideCtx, log, prev, updated)
	case prev != updated.Status:
		o.recordActivity(sideCtx, log, &models.Activity{
			CustomerID:  ptr(updated.ID),
			UserID:      ActorFromContext(ctx),
			Type:        models.ActivityStatusChange,
			Description: fmt.Sprintf("%s moved from %s to %s", updated.FullName(), prev, updated.Status),
			Metadata:    statusMetadata(prev, updated.Status),
		})
	}

	return updated, nil
}

func (o *Orchestrator) onSale(ctx context.Context, log *zap.Logger, prev models.CustomerStatus, c *models.Customer) {
	actor := ActorFromContext(ctx)

	existing, err := o.store.ListCustomerProjects(ctx, c.ID)
	if err != nil {
		// не знаем, есть ли проект: продажа важнее, создаём
		metrics.IncSideEffectFailure("project_lookup")
		log.Warn("failed to look up existing projects, creating a new one", zap.Error(err))
	} else if len(existing) > 0 {
		log.Info("customer sold again, reusing existing project",
			zap.Uint("project_id", existing[0].ID),
			zap.Int("project_count", len(existing)),
		)
		o.recordActivity(ctx, log, &models.Activity{
			ProjectID:   ptr(existing[0].ID),
			CustomerID:  ptr(c.ID),
			UserID:      actor,
			Type:        models.ActivityStatusChange,
			Description: fmt.Sprintf("%s marked as sold again; existing project %q kept", c.FullName(), existing[0].Name),
			Metadata:    statusMetadata(prev, c.Status),
		})
		return
	}

	project := NewProjectForCustomer(c)
	if err := o.store.CreateProject(ctx, project); err != nil {
		metrics.IncSideEffectFailure("project")
		log.Warn("customer sold but project creation failed", zap.Error(err))
		return
	}
	metrics.ProjectsCreated.Inc()
	log = log.With(zap.Uint("project_id", project.ID))

	todos, err := o.templates.SeedDefaultTodos(ctx, project.ID)
	if err != nil {
		metrics.IncSideEffectFailure("todos")
		log.Warn("project created but default todos were not seeded", zap.Error(err))
	}

	o.recordActivity(ctx, log, &models.Activity{
		ProjectID:   ptr(project.ID),
		CustomerID:  ptr(c.ID),
		UserID:      actor,
		Type:        models.ActivityProjectCreated,
		Description: fmt.Sprintf("Project %q created for %s after the sale was closed", project.Name, c.FullName()),
		Metadata:    statusMetadata(prev, c.Status),
	})

	err = o.events.Publish(ctx, RouteProjectCreated, ProjectCreatedEvent{
		EventID:    newEventID(),
		ProjectID:  project.ID,
		CustomerID: c.ID,
		Name:       project.Name,
		TodoCount:  len(todos),
		UserID:     actor,
		OccurredAt: o.now().UTC(),
	})
	if err != nil {
		metrics.IncSideEffectFailure("event")
		log.Warn("failed to publish project.created", zap.Error(err))
	}

	log.Info("project created from sale", zap.Int("todo_count", len(todos)))
}

func (o *Orchestrator) recordActivity(ctx context.Context, log *zap.Logger, a *models.Activity) {
	if err := o.store.CreateActivity(ctx, a); err != nil {
		metrics.IncSideEffectFailure("activity")
		log.Warn("failed to record activity", zap.String("type", string(a.Type)), zap.Error(err))
	}
}

// NewProjectForCustomer: проект по умолчанию для только что проданного клиента.
func NewProjectForCustomer(c *models.Customer) *models.Project {
	return &models.Project{
		CustomerID:  c.ID,
		Name:        fmt.Sprintf("%s %s Pool Project", c.FirstName, c.LastName),
		Type:        models.ProjectPool,
		Status:      models.StatusPlanning,
		Description: fmt.Sprintf("Pool construction project for %s", c.FullName()),
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		ZipCode:     c.ZipCode,
	}
}

func validateCustomerUpdate(u models.CustomerUpdate) error {
	if u.Status != nil && !u.Status.Valid() {
		return apperr.Invalid("status", fmt.Sprintf("unknown customer status %q", *u.Status))
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return apperr.Invalid("priority", fmt.Sprintf("unknown priority %q", *u.Priority))
	}
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) == "" {
		return apperr.Invalid("firstName", "must not be blank")
	}
	if u.LastName != nil && strings.TrimSpace(*u.LastName) == "" {
		return apperr.Invalid("lastName", "must not be blank")
	}
	return nil
}

func statusMetadata(from, to models.CustomerStatus) map[string]any {
	return map[string]any{"from": string(from), "to": string(to)}
}

func ptr[T any](v T) *T { return &v }
