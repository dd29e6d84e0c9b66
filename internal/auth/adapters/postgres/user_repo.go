package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/ports/repositories"
	"campusauth/pkg/logger"
)

// PgxPoolInterface описывает подмножество pgxpool.Pool, используемое репозиториями.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

const userColumns = `id, email, password_hash, role, status, first_name, last_name,
        created_at, updated_at, last_login_at, failed_login_attempts, locked_until, version`

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

// userRow - плоское представление строки таблицы users.
type userRow struct {
	ID                  string
	Email               string
	PasswordHash        string
	Role                string
	Status              string
	FirstName           string
	LastName            string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastLoginAt         *time.Time
	FailedLoginAttempts int
	LockedUntil         *time.Time
	Version             int64
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var r userRow
	err := row.Scan(
		&r.ID,
		&r.Email,
		&r.PasswordHash,
		&r.Role,
		&r.Status,
		&r.FirstName,
		&r.LastName,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.LastLoginAt,
		&r.FailedLoginAttempts,
		&r.LockedUntil,
		&r.Version,
	)
	if err != nil {
		return nil, err
	}

	return r.toEntity()
}

// toEntity восстанавливает агрегат из строки, проходя через конструкторы
// объектов-значений. Строка, записанная этим же репозиторием, всегда проходит
// проверки; ошибка здесь означает поврежденные данные.
func (r userRow) toEntity() (*entities.User, error) {
	id, err := entities.ParseUserID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("restoring user id: %w", err)
	}

	email, err := entities.NewEmail(r.Email)
	if err != nil {
		return nil, fmt.Errorf("restoring user email: %w", err)
	}

	password, err := entities.NewHashedPassword(r.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("restoring password hash: %w", err)
	}

	role, err := entities.RoleOf(r.Role)
	if err != nil {
		return nil, fmt.Errorf("restoring user role: %w", err)
	}

	status, err := entities.StatusOf(r.Status)
	if err != nil {
		return nil, fmt.Errorf("restoring user status: %w", err)
	}

	user := &entities.User{
		ID:                  id,
		Email:               email,
		Password:            password,
		Role:                role,
		Status:              status,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
		FailedLoginAttempts: r.FailedLoginAttempts,
		LastLoginAt:         r.LastLoginAt,
		LockedUntil:         r.LockedUntil,
		Version:             r.Version,
	}

	return user, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id entities.UserID) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByID"))

	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
    `

	user, err := scanUser(r.pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("id", id.String()))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by id", zap.Error(err))
		return nil, fmt.Errorf("error querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email entities.Email) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByEmail"))

	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1
    `

	user, err := scanUser(r.pool.QueryRow(ctx, query, email.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("email", email.String()))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by email", zap.Error(err))
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}

	return user, nil
}

// ExistsByEmail проверяет, зарегистрирован ли email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email entities.Email) (bool, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "ExistsByEmail"))

	query := `
        SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
    `

	var exists bool
	err := r.pool.QueryRow(ctx, query, email.String()).Scan(&exists)
	if err != nil {
		log.Error(ctx, "error checking email existence", zap.Error(err))
		return false, fmt.Errorf("error checking email existence: %w", err)
	}

	return exists, nil
}

// Save сохраняет агрегат. Новый пользователь (версия 0) вставляется,
// существующий обновляется с оптимистической проверкой версии: если строка
// была изменена конкурентно, возвращается repositories.ErrVersionConflict.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) (*entities.User, error) {
	if user.Version == 0 {
		return r.insert(ctx, user)
	}

	return r.update(ctx, user)
}

func (r *UserRepository) insert(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Save"))

	query := `
        INSERT INTO users (id, email, password_hash, role, status, first_name, last_name,
            created_at, updated_at, last_login_at, failed_login_attempts, locked_until, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
        RETURNING ` + userColumns + `
    `

	saved, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID.String(),
		user.Email.String(),
		user.Password.Value(),
		user.Role.Code(),
		user.Status.String(),
		user.FirstName,
		user.LastName,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastLoginAt,
		user.FailedLoginAttempts,
		user.LockedUntil,
	))
	if err != nil {
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) update(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Save"))

	query := `
        UPDATE users
        SET email = $2, password_hash = $3, role = $4, status = $5,
            first_name = $6, last_name = $7, updated_at = $8, last_login_at = $9,
            failed_login_attempts = $10, locked_until = $11, version = version + 1
        WHERE id = $1 AND version = $12
        RETURNING ` + userColumns + `
    `

	saved, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID.String(),
		user.Email.String(),
		user.Password.Value(),
		user.Role.Code(),
		user.Status.String(),
		user.FirstName,
		user.LastName,
		user.UpdatedAt,
		user.LastLoginAt,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.Version,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.versionConflictOrMissing(ctx, log, user)
		}
		log.Error(ctx, "error updating user", zap.Error(err))
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return saved, nil
}

// versionConflictOrMissing различает конкурентное изменение и отсутствие строки.
func (r *UserRepository) versionConflictOrMissing(ctx context.Context, log *logger.Logger, user *entities.User) error {
	query := `
        SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
    `

	var exists bool
	if err := r.pool.QueryRow(ctx, query, user.ID.String()).Scan(&exists); err != nil {
		log.Error(ctx, "error checking user existence", zap.Error(err))
		return fmt.Errorf("error updating user: %w", err)
	}

	if !exists {
		log.Debug(ctx, "user not found for update", zap.String("id", user.ID.String()))
		return entities.ErrUserNotFound
	}

	log.Debug(ctx, "version conflict on save",
		zap.String("id", user.ID.String()),
		zap.Int64("version", user.Version),
	)

	return repositories.ErrVersionConflict
}
