package domain

import (
	"fmt"
)

// UserMetadata is the typed replacement for the historical free-form metadata
// bag. Exactly one role-specific extension may be set, and it must match the
// user's role; ValidateFor runs at every write.
type UserMetadata struct {
	IsUATUser bool             `json:"isUatUser"`
	Admin     *AdminMetadata   `json:"admin,omitempty"`
	Manager   *ManagerMetadata `json:"manager,omitempty"`
}

type AdminMetadata struct {
	Department string `json:"department"`
}

type ManagerMetadata struct {
	Region string `json:"region"`
}

func (m *UserMetadata) ValidateFor(role Role) error {
	switch role {
	case RoleZopperAdmin, RoleSamsungAdmin:
		if m.Manager != nil {
			return fmt.Errorf("manager metadata is not valid for role %s", role)
		}
	case RoleABM, RoleASE, RoleZSM, RoleZSE:
		if m.Admin != nil {
			return fmt.Errorf("admin metadata is not valid for role %s", role)
		}
	case RoleSEC:
		if m.Admin != nil || m.Manager != nil {
			return fmt.Errorf("role extensions are not valid for role %s", role)
		}
	default:
		return fmt.Errorf("unknown role %s", role)
	}
	return nil
}
