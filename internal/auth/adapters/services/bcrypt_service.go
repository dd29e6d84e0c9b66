package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"campusauth/internal/auth/domain/entities"
	svc "campusauth/internal/auth/ports/services"
)

const (
	errMsgFailedToGenerateHash = "failed to generate password hash"
	errMsgErrorComparingHash   = "error comparing password with hash"
)

// Ошибки сервиса паролей.
var (
	ErrRawPasswordExpected    = errors.New("raw password expected")
	ErrHashedPasswordExpected = errors.New("hashed password expected")
)

// ServiceBcrypt реализует интерфейс PasswordService поверх bcrypt.
// Сравнение пароля с хэшем выполняется за постоянное время.
type ServiceBcrypt struct {
	cost int
}

// NewBcrypt создает новый экземпляр сервиса bcrypt.
func NewBcrypt(cost int) svc.PasswordService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &ServiceBcrypt{cost: cost}
}

// Hash хэширует сырой пароль с помощью bcrypt.
func (s *ServiceBcrypt) Hash(_ context.Context, raw entities.Password) (entities.Password, error) {
	if raw.IsHashed() || raw.IsZero() {
		return entities.Password{}, ErrRawPasswordExpected
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(raw.Value()), s.cost)
	if err != nil {
		return entities.Password{}, fmt.Errorf("%s: %w", errMsgFailedToGenerateHash, err)
	}

	hashed, err := entities.NewHashedPassword(string(hashedBytes))
	if err != nil {
		return entities.Password{}, fmt.Errorf("%s: %w", errMsgFailedToGenerateHash, err)
	}

	return hashed, nil
}

// Verify проверяет соответствие сырого пароля хэшу.
func (s *ServiceBcrypt) Verify(_ context.Context, raw, hashed entities.Password) (bool, error) {
	if raw.IsHashed() || raw.IsZero() {
		return false, ErrRawPasswordExpected
	}
	if !hashed.IsHashed() {
		return false, ErrHashedPasswordExpected
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashed.Value()), []byte(raw.Value()))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", errMsgErrorComparingHash, err)
	}

	return true, nil
}
