package lifecycle

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"pooldesk/internal/apperr"
	"pooldesk/internal/metrics"
	"pooldesk/internal/models"

	"go.uber.org/zap"
)

// Progress: сводка по чек-листу проекта.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func ComputeProgress(todos []models.ProjectTodo) Progress {
	p := Progress{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Completed) * 100 / float64(p.Total)))
	}
	return p
}

// SortTodos: порядок показа: order, при равенстве меньший id.
func SortTodos(todos []models.ProjectTodo) {
	slices.SortStableFunc(todos, func(a, b models.ProjectTodo) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// NextPending: первая незавершённая задача в порядке показа или nil.
func NextPending(todos []models.ProjectTodo) *models.ProjectTodo {
	var next *models.ProjectTodo
	for i := range todos {
		t := &todos[i]
		if t.Completed {
			continue
		}
		if next == nil || t.Order < next.Order || (t.Order == next.Order && t.ID < next.ID) {
			next = t
		}
	}
	if next == nil {
		return nil
	}
	out := *next
	return &out
}

type Tracker struct {
	store  TrackerStore
	events Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewTracker(store TrackerStore, events Publisher, logger *zap.Logger) *Tracker {
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, events: events, logger: logger, now: time.Now}
}

// ToggleComplete переводит задачу Pending <-> Completed.
// Для завершения нужна явная дата (можно задним числом), но не из будущего.
// Снятие отметки всегда обнуляет CompletedAt.
func (t *Tracker) ToggleComplete(ctx context.Context, todoID uint, completed bool, completedAt *time.Time) (*models.ProjectTodo, error) {
	if completed {
		if completedAt == nil || completedAt.IsZero() {
			return nil, apperr.Invalid("completedAt", "is required when marking a todo complete")
		}
		if completedAt.After(t.now()) {
			return nil, apperr.Invalid("completedAt", "must not be in the future")
		}
	}

	current, err := t.store.GetProjectTodo(ctx, todoID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if completed {
		updated.MarkCompleted(completedAt.UTC())
	} else {
		updated.MarkPending()
	}
	if err := t.store.UpdateProjectTodo(ctx, &updated); err != nil {
		return nil, err
	}

	if current.Completed != updated.Completed {
		t.afterTransition(context.WithoutCancel(ctx), &updated)
	}
	return &updated, nil
}

func (t *Tracker) afterTransition(ctx context.Context, todo *models.ProjectTodo) {
	log := t.logger.With(zap.Uint("todo_id", todo.ID), zap.Uint("project_id", todo.ProjectID))
	actor := ActorFromContext(ctx)

	a := &models.Activity{
		ProjectID: ptr(todo.ProjectID),
		UserID:    actor,
		Metadata:  map[string]any{"todoId": todo.ID, "order": todo.Order},
	}
	if todo.Completed {
		metrics.IncTodoTransition("completed")
		a.Type = models.ActivityTaskCompleted
		a.Description = fmt.Sprintf("Completed %q on %s", todo.Title, todo.CompletedAt.Format(time.DateOnly))
	} else {
		metrics.IncTodoTransition("pending")
		a.Type = models.ActivityTaskReopened
		a.Description = fmt.Sprintf("Reopened %q", todo.Title)
	}
	if err := t.store.CreateActivity(ctx, a); err != nil {
		metrics.IncSideEffectFailure("activity")
		log.Warn("failed to record todo activity", zap.Error(err))
	}

	if !todo.Completed {
		return
	}
	err := t.events.Publish(ctx, RouteTodoCompleted, TodoCompletedEvent{
		EventID:     newEventID(),
		TodoID:      todo.ID,
		ProjectID:   todo.ProjectID,
		Title:       todo.Title,
		CompletedAt: *todo.CompletedAt,
		UserID:      actor,
	})
	if err != nil {
		metrics.IncSideEffectFailure("event")
		log.Warn("failed to publish todo.completed", zap.Error(err))
	}
}

// Todos: чек-лист проекта в порядке показа.
func (t *Tracker) Todos(ctx context.Context, projectID uint) ([]models.ProjectTodo, error) {
	if _, err := t.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	todos, err := t.store.GetProjectTodos(ctx, projectID)
	if err != nil {
		return nil, err
	}
	SortTodos(todos)
	return todos, nil
}

// NextTodo: следующий шаг «что дальше»; nil, если всё сделано.
func (t *Tracker) NextTodo(ctx context.Context, projectID uint) (*models.ProjectTodo, error) {
	todos, err := t.Todos(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return NextPending(todos), nil
}

func (t *Tracker) Progress(ctx context.Context, projectID uint) (Progress, error) {
	todos, err := t.Todos(ctx, projectID)
	if err != nil {
		return Progress{}, err
	}
	return ComputeProgress(todos), nil
}
