package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/Paw-Connect/user-service/internal/model"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const pgUniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateSkills(ctx context.Context, id uuid.UUID, skills []string) (*model.User, error)
	ReplaceAvailability(ctx context.Context, userID uuid.UUID, slots []model.AvailabilitySlot) error
	ListAvailability(ctx context.Context, userID uuid.UUID) ([]model.AvailabilitySlot, error)
}

type postgresUserRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewPostgresUserRepository(db *sqlx.DB, queryTimeout time.Duration) UserRepository {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &postgresUserRepository{db: db, queryTimeout: queryTimeout}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, roles, skills, points, badges, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Phone)
	err := row.Scan(&user.ID, &user.Roles, &user.Skills, &user.Points, &user.Badges, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var user model.User
	query := `SELECT id, name, email, password_hash, phone, roles, skills, points, badges, created_at, updated_at FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var user model.User
	query := `SELECT id, name, email, password_hash, phone, roles, skills, points, badges, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) UpdateSkills(ctx context.Context, id uuid.UUID, skills []string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var user model.User
	query := `
		UPDATE users SET skills = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, name, email, password_hash, phone, roles, skills, points, badges, created_at, updated_at
	`
	err := r.db.GetContext(ctx, &user, query, model.StringList(skills), id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// ReplaceAvailability swaps a user's full slot set inside one transaction:
// every prior slot is deleted, then every slot in the input is inserted.
// Any failure rolls the whole thing back, including the delete, so readers
// always see either the old set or the new set.
func (r *postgresUserRepository) ReplaceAvailability(ctx context.Context, userID uuid.UUID, slots []model.AvailabilitySlot) error {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM volunteer_availability WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO volunteer_availability (user_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4)
	`
	for _, slot := range slots {
		_, err = tx.ExecContext(ctx, insertQuery, userID, slot.DayOfWeek, slot.StartTime, slot.EndTime)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresUserRepository) ListAvailability(ctx context.Context, userID uuid.UUID) ([]model.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	slots := []model.AvailabilitySlot{}
	query := `SELECT id, user_id, day_of_week, start_time, end_time FROM volunteer_availability WHERE user_id = $1 ORDER BY day_of_week, start_time`
	err := r.db.SelectContext(ctx, &slots, query, userID)

	if err != nil {
		return nil, err
	}

	return slots, nil
}
