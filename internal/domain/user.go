package domain

import (
	"fmt"
	"time"
)

// Role enumerates staff roles.
type Role string

const (
	RoleManager Role = "manager"
	RoleWaiter  Role = "waiter"
)

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleManager, RoleWaiter:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User is the domain model for restaurant staff accounts.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
