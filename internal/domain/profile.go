package domain

import (
	"time"
)

// RoleProfile carries the role-specific attributes of a non-SEC User.
// Every non-SEC User has exactly one profile of the type implied by its role.
type RoleProfile struct {
	ID              int64     `json:"-"`
	UserID          int64     `json:"-"`
	FullName        string    `json:"fullName"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	AgencyName      string    `json:"agencyName"`
	StoreIDs        []string  `json:"storeIds"`
	ParentManagerID *int64    `json:"parentManagerId"`
	CreatedAt       time.Time `json:"createdAt"`
}
