package auth

import (
	"context"
	"strings"
)

type contextKey struct{}

// AuthContext carries the signed-in user through a request: the stable user
// id and the display name shown as item_creator on the shopping list.
type AuthContext struct {
	UserID    int64
	Name      string
	SessionID int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func Name(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Name
}

// DisplayName picks the best-effort label for a user: the first name if one
// was given, else the local part of the email, else a generic fallback.
func DisplayName(name, email string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		if i := strings.IndexByte(name, ' '); i > 0 {
			return name[:i]
		}
		return name
	}
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return "User"
}
