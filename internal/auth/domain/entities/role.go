package entities

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Ошибки валидации роли.
var (
	ErrEmptyRoleCode        = errors.New("role code cannot be empty")
	ErrEmptyRoleDescription = errors.New("role description cannot be empty")
	ErrRoleCodeTooLong      = errors.New("role code cannot exceed 50 characters")
	ErrInvalidRoleCode      = errors.New("role code must contain only uppercase letters and underscores")
	ErrUnknownRole          = errors.New("unknown role")
)

// MaxRoleCodeLength - предел длины кода роли.
const MaxRoleCodeLength = 50

var roleCodeRegex = regexp.MustCompile(`^[A-Z_]+$`)

// UserRole - роль пользователя: закрытый набор предопределенных ролей
// плюс расширяемые пользовательские коды.
type UserRole struct {
	code        string
	description string
}

// Предопределенные роли.
var (
	RoleAdmin     = UserRole{code: "ADMIN", description: "System Administrator"}
	RoleUser      = UserRole{code: "USER", description: "Regular User"}
	RoleModerator = UserRole{code: "MODERATOR", description: "Content Moderator"}
	RoleGuest     = UserRole{code: "GUEST", description: "Guest User"}
)

var predefinedRoles = map[string]UserRole{
	RoleAdmin.code:     RoleAdmin,
	RoleUser.code:      RoleUser,
	RoleModerator.code: RoleModerator,
	RoleGuest.code:     RoleGuest,
}

// RoleOf возвращает предопределенную роль по коду.
func RoleOf(code string) (UserRole, error) {
	role, ok := predefinedRoles[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return UserRole{}, fmt.Errorf("%w: %q", ErrUnknownRole, code)
	}
	return role, nil
}

// NewCustomRole создает пользовательскую роль с произвольным кодом.
func NewCustomRole(code, description string) (UserRole, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	description = strings.TrimSpace(description)

	if code == "" {
		return UserRole{}, ErrEmptyRoleCode
	}
	if description == "" {
		return UserRole{}, ErrEmptyRoleDescription
	}
	if len(code) > MaxRoleCodeLength {
		return UserRole{}, ErrRoleCodeTooLong
	}
	if !roleCodeRegex.MatchString(code) {
		return UserRole{}, ErrInvalidRoleCode
	}

	return UserRole{code: code, description: description}, nil
}

// Code возвращает код роли.
func (r UserRole) Code() string {
	return r.code
}

// Description возвращает описание роли.
func (r UserRole) Description() string {
	return r.description
}

// IsZero сообщает, задана ли роль.
func (r UserRole) IsZero() bool {
	return r.code == ""
}

// IsAdmin сообщает, является ли роль административной.
func (r UserRole) IsAdmin() bool {
	return r.code == RoleAdmin.code
}

// HasElevatedPrivileges сообщает, имеет ли роль расширенные права.
func (r UserRole) HasElevatedPrivileges() bool {
	return r.code == RoleAdmin.code || r.code == RoleModerator.code
}

// String возвращает код роли.
func (r UserRole) String() string {
	return r.code
}
