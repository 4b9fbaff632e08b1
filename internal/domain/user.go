package domain

import "context"

// User is the authenticated actor invoking an operation. Identity comes from
// the auth layer; the engine trusts it but enforces its own guards.
type User struct {
	ID     string
	Email  string
	Name   string
	Role   Role
	Active bool
}

// Role represents a user's access level.
type Role string

const (
	// RoleMember is a regular platform user: owns a wallet, creates and
	// fulfills requests.
	RoleMember Role = "member"

	// RoleAdmin verifies fulfillments and sees every request.
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RoleMember: true,
	RoleAdmin:  true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanVerify reports whether the role may verify or reject fulfillments.
func (r Role) CanVerify() bool {
	return r == RoleAdmin
}

// SeesEverything reports whether visibility filtering is bypassed.
func (r Role) SeesEverything() bool {
	return r == RoleAdmin
}

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to ctx.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext extracts the authenticated user from ctx.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*User)
	return u, ok
}
