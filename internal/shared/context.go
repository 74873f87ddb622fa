package shared

import (
	"context"
	"strconv"
)

// Actor is the already-authenticated identity supplied by the host.
type Actor struct {
	ID            int64
	DisplayName   string
	Authenticated bool
}

// SystemActor is used for install-time and scheduled operations.
var SystemActor = Actor{ID: 0, DisplayName: "System"}

// Name returns a printable name for log descriptions.
func (a Actor) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.ID > 0 {
		return "#" + strconv.FormatInt(a.ID, 10)
	}
	return "Unknown"
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The zero Actor is returned when absent.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
