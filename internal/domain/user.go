package domain

import (
	"strings"
	"time"
)

// Role enumerates the three actor kinds.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleStaff   Role = "STAFF"
	RoleAdmin   Role = "ADMIN"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStudent, RoleStaff, RoleAdmin}

// ParseRole converts external text into a Role, ignoring case and surrounding whitespace.
func ParseRole(raw string) (Role, bool) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(raw)))
	for _, role := range Roles {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

// IsStaffSide reports whether the role belongs on the staff console.
func (r Role) IsStaffSide() bool {
	return r == RoleStaff || r == RoleAdmin
}

// RoleNames renders the role vocabulary as "[STUDENT, STAFF, ADMIN]".
func RoleNames() string {
	names := make([]string, 0, len(Roles))
	for _, role := range Roles {
		names = append(names, string(role))
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// User is an account able to authenticate against the helpdesk.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
