package middleware

import "context"

type ContextKey string

const (
	ContextUserID   ContextKey = "user_id"
	ContextUserType ContextKey = "user_type"
	ContextRole     ContextKey = "role"
)

func UserIDFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(ContextUserID).(int)
	return v, ok
}

func UserTypeFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextUserType).(string)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextRole).(string)
	return v, ok
}
