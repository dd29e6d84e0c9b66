package api

import (
	"context"

	"campusauth/internal/auth/domain/entities"
)

// UserUseCase определяет порт для операций управления учетными записями.
type UserUseCase interface {
	GetUserProfile(ctx context.Context, userID string) (*entities.User, error)

	ActivateUser(ctx context.Context, userID string) error

	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	SuspendUser(ctx context.Context, userID string) error

	UnlockUser(ctx context.Context, userID string) error
}
