package api

import "context"

// opCtxKey is an unexported key type for the operation name in a context.
type opCtxKey struct{}

// WithOperation tags ctx with an operation name that the transport uses
// for metrics and logging.
func WithOperation(ctx context.Context, op string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, opCtxKey{}, op)
}

// OperationFrom returns the operation tagged on ctx, or "" if none.
func OperationFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(opCtxKey{}).(string); ok {
		return v
	}
	return ""
}
