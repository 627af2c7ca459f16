package common

import (
	"context"
	"errors"
)

// Request roles, mirrored from models to keep this package free of domain imports.
const (
	roleUser  = "user"
	roleAdmin = "admin"
)

var (
	// ErrUnauthenticated means no authenticated user is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the user lacks the required role or is blocked.
	ErrForbidden = errors.New("insufficient permissions")
)

// UserContext holds the authenticated caller resolved from the bearer token.
type UserContext struct {
	UserID  string
	Email   string
	Name    string
	Role    string
	Blocked bool
}

type contextKey int

const (
	userContextKey contextKey = iota
	clientIPKey
)

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// WithClientIP stores the caller's address for audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the caller's address, or "" if unknown.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// ResolveUserID returns the authenticated user ID, or "" when the request is anonymous.
func ResolveUserID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.UserID
	}
	return ""
}

// Authorize is the single capability check used by every protected route.
// Admin satisfies any role; blocked accounts never pass.
func Authorize(uc *UserContext, role string) error {
	if uc == nil || uc.UserID == "" {
		return ErrUnauthenticated
	}
	if uc.Blocked {
		return ErrForbidden
	}
	switch role {
	case "", roleUser:
		return nil
	case roleAdmin:
		if uc.Role == roleAdmin {
			return nil
		}
		return ErrForbidden
	default:
		if uc.Role == roleAdmin || uc.Role == role {
			return nil
		}
		return ErrForbidden
	}
}

// CanAccessUser reports whether the caller may read or act on data owned by userID.
func CanAccessUser(uc *UserContext, userID string) bool {
	if Authorize(uc, roleUser) != nil {
		return false
	}
	return uc.UserID == userID || uc.Role == roleAdmin
}
