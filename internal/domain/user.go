package domain

import (
	"time"
)

type Role string

const (
	RoleSEC          Role = "SEC"
	RoleABM          Role = "ABM"
	RoleASE          Role = "ASE"
	RoleZSM          Role = "ZSM"
	RoleZSE          Role = "ZSE"
	RoleZopperAdmin  Role = "ZOPPER_ADMIN"
	RoleSamsungAdmin Role = "SAMSUNG_ADMIN"
)

type ValidationState string

const (
	ValidationPending  ValidationState = "pending"
	ValidationApproved ValidationState = "approved"
)

// User is a credentialed principal. SECs are not Users: they are keyed by
// phone number and authenticate through OTP (see SEC).
type User struct {
	ID              int64           `json:"id"`
	Username        string          `json:"username"`
	PasswordHash    string          `json:"-"`
	Role            Role            `json:"role"`
	ValidationState ValidationState `json:"validationState"`
	Metadata        UserMetadata    `json:"metadata"`
	LastLoginAt     *time.Time      `json:"lastLoginAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	Version         int32           `json:"-"`
}
