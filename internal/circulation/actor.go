package circulation

import "context"

type actorKey struct{}

// WithActor tags ctx with the borrower performing an operation. The ID ends up
// in the audit trail.
func WithActor(ctx context.Context, borrowerID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, borrowerID)
}

// ActorFrom returns the borrower set by WithActor, or 0.
func ActorFrom(ctx context.Context) uint {
	id, _ := ctx.Value(actorKey{}).(uint)
	return id
}
