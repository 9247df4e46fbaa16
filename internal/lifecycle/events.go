package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	RouteProjectCreated = "project.created"
	RouteTodoCompleted  = "todo.completed"
)

// Publisher отправляет доменные события наружу. Ошибки публикации продажу не отменяют.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

type ProjectCreatedEvent struct {
	EventID    string    `json:"eventId"`
	ProjectID  uint      `json:"projectId"`
	CustomerID uint      `json:"customerId"`
	Name       string    `json:"name"`
	TodoCount  int       `json:"todoCount"`
	UserID     uint      `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type TodoCompletedEvent struct {
	EventID     string    `json:"eventId"`
	TodoID      uint      `json:"todoId"`
	ProjectID   uint      `json:"projectId"`
	Title       string    `json:"title"`
	CompletedAt time.Time `json:"completedAt"`
	UserID      uint      `json:"userId"`
}

func newEventID() string {
	return uuid.NewString()
}
