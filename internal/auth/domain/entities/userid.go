package entities

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidUserID возвращается при разборе некорректного идентификатора.
var ErrInvalidUserID = errors.New("invalid user id format")

// UserID - непрозрачный 128-битный идентификатор пользователя.
// Генерируется при создании и никогда не переиспользуется.
type UserID struct {
	value uuid.UUID
}

// NewUserID генерирует новый уникальный идентификатор.
func NewUserID() UserID {
	return UserID{value: uuid.New()}
}

// ParseUserID разбирает идентификатор из строкового представления.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return UserID{}, fmt.Errorf("%w: %q", ErrInvalidUserID, raw)
	}
	return UserID{value: parsed}, nil
}

// IsZero сообщает, является ли идентификатор нулевым.
func (id UserID) IsZero() bool {
	return id.value == uuid.Nil
}

// String возвращает каноническое строковое представление.
func (id UserID) String() string {
	return id.value.String()
}
