package ctxdata

import (
	"context"

	"github.com/google/uuid"
)

type traceIDKey struct{}
type userIDKey struct{}
type userRoleKey struct{}

var (
	traceIDKeyInstance  = traceIDKey{}
	userIDKeyInstance   = userIDKey{}
	userRoleKeyInstance = userRoleKey{}
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKeyInstance, traceID)
}

func GetTraceID(ctx context.Context) (string, bool) {
	v := ctx.Value(traceIDKeyInstance)
	traceID, ok := v.(string)
	return traceID, ok
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKeyInstance, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKeyInstance)
	userID, ok := v.(string)
	return userID, ok
}

// GetUserUUID is GetUserID for callers that need a parsed id. A malformed id
// is reported as missing.
func GetUserUUID(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := GetUserID(ctx)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func WithUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, userRoleKeyInstance, role)
}

func GetUserRole(ctx context.Context) (string, bool) {
	v := ctx.Value(userRoleKeyInstance)
	role, ok := v.(string)
	return role, ok
}

// WithUser sets both identity values in one call.
func WithUser(ctx context.Context, userID uuid.UUID, role string) context.Context {
	return WithUserRole(WithUserID(ctx, userID.String()), role)
}
