package lifecycle

import (
	"context"

	"pooldesk/internal/models"
)

type actorKey struct{}

// WithActor кладёт в контекст ID пользователя, от имени которого пишется журнал.
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func ActorFromContext(ctx context.Context) uint {
	if uid, ok := ctx.Value(actorKey{}).(uint); ok {
		return uid
	}
	return models.SystemUserID
}
