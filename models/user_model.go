package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const (
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

// ParseRole validates a raw role value.
func ParseRole(s string) (string, bool) {
	switch s {
	case RoleCustomer, RoleStaff, RoleManager, RoleAdmin:
		return s, true
	}
	return "", false
}

// ParseUserStatus validates a raw account status value.
func ParseUserStatus(s string) (string, bool) {
	switch s {
	case UserStatusActive, UserStatusInactive:
		return s, true
	}
	return "", false
}

type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address   string             `json:"address,omitempty" bson:"address,omitempty"`
	City      string             `json:"city,omitempty" bson:"city,omitempty"`
	Country   string             `json:"country,omitempty" bson:"country,omitempty"`
	Role      string             `json:"role" bson:"role"`
	Status    string             `json:"status,omitempty" bson:"status,omitempty"`
	IsAdmin   bool               `json:"isAdmin" bson:"isAdmin"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HasRole reports whether the user holds one of the given roles. isAdmin is
// honoured as an admin-role equivalent for accounts created before roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
		if r == RoleAdmin && u.IsAdmin {
			return true
		}
	}
	return false
}

// IsStaffMember reports whether the user holds any back-office role.
func (u *User) IsStaffMember() bool {
	return u.HasRole(RoleAdmin, RoleManager, RoleStaff)
}
