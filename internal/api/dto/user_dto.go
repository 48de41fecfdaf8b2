package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the issued bearer token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateProfileRequest payload for profile edits.
type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// UpdateAvatarRequest payload for avatar updates.
type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatar_url"`
}

// ChangePasswordRequest payload for password changes.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_pwd"`
	NewPassword     string `json:"new_pwd"`
	ConfirmPassword string `json:"re_pwd"`
}

// UserView is the public projection of an account.
type UserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserView projects a domain user.
func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}
