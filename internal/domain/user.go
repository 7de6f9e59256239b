package domain

import "time"

// UserStatus represents lifecycle states for a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is any actor referenced by transition commands: reporters,
// assignees, assigners, escalators, resolvers.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the user may act in transitions.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}
