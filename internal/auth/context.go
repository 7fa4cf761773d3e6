package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey      contextKey = "userID"
	permissionsKey contextKey = "permissions"
)

// Permission names gate the operations that mutate or export data.
const (
	PermView   = "view"
	PermChange = "change"
	PermDelete = "delete"
	PermExport = "export"
	PermImport = "import"
)

// ContextWithUserID returns a new context that carries the authenticated user.
func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext retrieves the authenticated user from the context, if any.
// Anonymous requests have no user id; vista persistence is skipped for them.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ContextWithPermissions returns a new context carrying the user's granted
// permission names.
func ContextWithPermissions(ctx context.Context, perms []string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	granted := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		granted[p] = struct{}{}
	}
	return context.WithValue(ctx, permissionsKey, granted)
}

// HasPermission reports whether the context grants the named permission.
// A context with no permission set at all grants everything, so deployments
// without an auth proxy in front still work.
func HasPermission(ctx context.Context, name string) bool {
	if ctx == nil {
		return true
	}
	value := ctx.Value(permissionsKey)
	if value == nil {
		return true
	}
	granted, ok := value.(map[string]struct{})
	if !ok {
		return true
	}
	_, ok = granted[name]
	return ok
}

// RequirePermission ensures the context grants the named permission.
func RequirePermission(ctx context.Context, name string) error {
	if !HasPermission(ctx, name) {
		return fmt.Errorf("permission %q is required", name)
	}
	return nil
}
