package domain

import "time"

// Role is the single authoritative role enum. The integer values are the
// persisted representation and also travel inside token claims.
type Role int

const (
	RoleAdmin  Role = 0
	RoleAuthor Role = 1
	RoleReader Role = 2
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleReader:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleAuthor:
		return "author"
	case RoleReader:
		return "reader"
	}
	return "unknown"
}

// CanPublish reports whether the role may create articles.
func (r Role) CanPublish() bool {
	return r == RoleAdmin || r == RoleAuthor
}

// UserStatus marks whether an account may log in.
type UserStatus int

const (
	UserStatusActive   UserStatus = 0
	UserStatusDisabled UserStatus = 1
)

// User is a registered account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Nickname     string     `json:"nickname"`
	Email        string     `json:"email"`
	AvatarURL    string     `json:"avatar_url"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Disabled reports whether the account is blocked from logging in.
func (u *User) Disabled() bool {
	return u.Status == UserStatusDisabled
}
