package repositories

import (
	"context"
	"errors"

	"campusauth/internal/auth/domain/entities"
)

// ErrVersionConflict возвращается, когда запись была изменена конкурентно
// и оптимистическая проверка версии при сохранении не прошла.
var ErrVersionConflict = errors.New("user was modified concurrently")

// UserRepository определяет порт для долговременного хранения агрегатов
// пользователя. Save использует оптимистическую блокировку: запись
// применяется только если версия в хранилище совпадает с версией агрегата.
type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id entities.UserID) (*entities.User, error)

	FindByEmail(ctx context.Context, email entities.Email) (*entities.User, error)

	ExistsByEmail(ctx context.Context, email entities.Email) (bool, error)
}
