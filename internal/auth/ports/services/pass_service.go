package services

import (
	"context"

	"campusauth/internal/auth/domain/entities"
)

// PasswordService определяет операции хэширования и сверки паролей.
// Сверка выполняется за постоянное время относительно верных и неверных
// предположений одной длины; открытый текст никогда не сравнивается
// с хэшем напрямую.
type PasswordService interface {
	Hash(ctx context.Context, raw entities.Password) (entities.Password, error)

	Verify(ctx context.Context, raw, hashed entities.Password) (bool, error)
}
