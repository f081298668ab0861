package domain

import (
	"context"
	"time"
)

// Known user roles. Supabase issues the identity; the role lives in our
// users table and is never trusted from the JWT claim.
const (
	RoleTutor = "tutor"
	RoleAdmin = "admin"
)

type User struct {
	ID                  string    `json:"id"` // Supabase UUID
	Email               string    `json:"email"`
	FullName            string    `json:"full_name"`
	Role                string    `json:"role"`
	AvatarURL           *string   `json:"avatar_url,omitempty"`
	OnboardingCompleted *bool     `json:"onboarding_completed,omitempty"` // Computed field, not in users table
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error
}

type AuthUsecase interface {
	EnsureUserExists(ctx context.Context, user *User) error
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}
