package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserContextFromContext(ctx))
	assert.Equal(t, "", ResolveUserID(ctx))

	uc := &UserContext{UserID: "u1", Role: "user"}
	ctx = WithUserContext(ctx, uc)
	assert.Same(t, uc, UserContextFromContext(ctx))
	assert.Equal(t, "u1", ResolveUserID(ctx))
}

func TestAuthorize(t *testing.T) {
	user := &UserContext{UserID: "u1", Role: "user"}
	admin := &UserContext{UserID: "a1", Role: "admin"}
	blockedAdmin := &UserContext{UserID: "a2", Role: "admin", Blocked: true}

	tests := []struct {
		name string
		uc   *UserContext
		role string
		want error
	}{
		{"anonymous", nil, "user", ErrUnauthenticated},
		{"empty id", &UserContext{Role: "admin"}, "user", ErrUnauthenticated},
		{"user as user", user, "user", nil},
		{"user as admin", user, "admin", ErrForbidden},
		{"admin as user", admin, "user", nil},
		{"admin as admin", admin, "admin", nil},
		{"blocked admin", blockedAdmin, "admin", ErrForbidden},
		{"admin satisfies custom role", admin, "editor", nil},
		{"user lacks custom role", user, "editor", ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.uc, tt.role))
		})
	}
}

func TestCanAccessUser(t *testing.T) {
	user := &UserContext{UserID: "u1", Role: "user"}
	admin := &UserContext{UserID: "a1", Role: "admin"}

	assert.True(t, CanAccessUser(user, "u1"))
	assert.False(t, CanAccessUser(user, "u2"))
	assert.True(t, CanAccessUser(admin, "u2"))
	assert.False(t, CanAccessUser(nil, "u1"))
	assert.False(t, CanAccessUser(&UserContext{UserID: "u1", Blocked: true}, "u1"))
}

func TestClientIP(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", ClientIPFromContext(ctx))
	assert.Equal(t, "10.0.0.7", ClientIPFromContext(WithClientIP(ctx, "10.0.0.7")))
}
