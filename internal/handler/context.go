package handler

import (
	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

type ContextKey string

var (
	PrincipalCtxKey ContextKey = "principal"
)

// AuthContext is the resolved principal attached to the request context.
// Exactly one of User (with Profile) or SEC is set.
type AuthContext struct {
	Role    domain.Role
	User    *domain.User
	Profile *domain.RoleProfile
	SEC     *domain.SEC
}

func (a *AuthContext) IsUAT() bool {
	return a.User != nil && a.User.Metadata.IsUATUser
}
