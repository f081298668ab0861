package usecase

import (
	"context"
	"time"

	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// EnsureUserExists syncs the Supabase auth identity into the local users
// table on first sight. Idempotent: existing rows are only touched when a
// field actually changed.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	existing, err := u.userRepo.GetByID(ctx, user.ID)
	if existing != nil && err == nil {
		if user.Email != "" && existing.Email != user.Email {
			existing.Email = user.Email
			existing.UpdatedAt = time.Now()
			return u.userRepo.Update(ctx, existing)
		}
		return nil // Already exists and up to date
	}

	// New tutors default to the tutor role; admin is assigned manually
	if user.Role == "" {
		user.Role = domain.RoleTutor
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	return u.userRepo.Create(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (u *authUsecase) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	return u.userRepo.UpdateAvatarURL(ctx, userID, avatarURL)
}
