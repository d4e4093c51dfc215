package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Paw-Connect/user-service/internal/model"
	repo "github.com/Paw-Connect/user-service/internal/repository"
)

func newMockRepo(t *testing.T) (repo.UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB, 5*time.Second)

	return r, mock, func() { db.Close() }
}

func TestPostgresUserRepository_Create(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "roles", "skills", "points", "badges", "created_at", "updated_at"}).
		AddRow(id, []byte(`["volunteer"]`), []byte(`[]`), 0, []byte(`[]`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, roles, skills, points, badges, created_at, updated_at
	`)).WithArgs("Ann", "ann@x.com", "hash", nil).WillReturnRows(rows)

	created, err := r.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.Equal(t, id, created.ID)
	require.Equal(t, model.StringList{"volunteer"}, created.Roles)
	require.Equal(t, 0, created.Points)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_Create_DuplicateEmail(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("Ann", "ann@x.com", "hash", nil).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := r.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, repo.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByEmail_Success(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "phone", "roles", "skills", "points", "badges", "created_at", "updated_at"}).
		AddRow(id, "Ann", "ann@x.com", "hash", nil, []byte(`["volunteer"]`), []byte(`["dog_walking"]`), 10, []byte(`[]`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, phone, roles, skills, points, badges, created_at, updated_at FROM users WHERE email = $1`)).
		WithArgs("ann@x.com").WillReturnRows(rows)

	u, err := r.FindByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", u.Email)
	require.Equal(t, model.StringList{"dog_walking"}, u.Skills)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByEmail_NotFound(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("missing@x.com").WillReturnError(sql.ErrNoRows)

	u, err := r.FindByEmail(context.Background(), "missing@x.com")
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.Nil(t, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByID_NotFound(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)

	_, err := r.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_UpdateSkills(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "phone", "roles", "skills", "points", "badges", "created_at", "updated_at"}).
		AddRow(id, "Ann", "ann@x.com", "hash", nil, []byte(`["volunteer"]`), []byte(`["cat_care"]`), 0, []byte(`[]`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET skills = $1, updated_at = now()`)).
		WithArgs([]byte(`["cat_care"]`), id).WillReturnRows(rows)

	u, err := r.UpdateSkills(context.Background(), id, []string{"cat_care"})
	require.NoError(t, err)
	require.Equal(t, model.StringList{"cat_care"}, u.Skills)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_UpdateSkills_NotFound(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET skills = $1, updated_at = now()`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)

	_, err := r.UpdateSkills(context.Background(), uuid.New(), []string{})
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ReplaceAvailability_Commit(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	userID := uuid.New()
	slots := []model.AvailabilitySlot{
		{DayOfWeek: 6, StartTime: "09:00", EndTime: "13:00"},
		{DayOfWeek: 0, StartTime: "12:00", EndTime: "17:00"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM volunteer_availability WHERE user_id = $1`)).
		WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO volunteer_availability (user_id, day_of_week, start_time, end_time)`)).
		WithArgs(userID, 6, "09:00", "13:00").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO volunteer_availability (user_id, day_of_week, start_time, end_time)`)).
		WithArgs(userID, 0, "12:00", "17:00").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, r.ReplaceAvailability(context.Background(), userID, slots))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ReplaceAvailability_RollbackOnInsertFailure(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	userID := uuid.New()
	slots := []model.AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "11:00"},
	}

	insertErr := errors.New("check constraint violation")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM volunteer_availability WHERE user_id = $1`)).
		WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO volunteer_availability`)).
		WithArgs(userID, 1, "09:00", "11:00").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO volunteer_availability`)).
		WithArgs(userID, 2, "09:00", "11:00").WillReturnError(insertErr)
	mock.ExpectRollback()

	err := r.ReplaceAvailability(context.Background(), userID, slots)
	require.ErrorIs(t, err, insertErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ReplaceAvailability_EmptySetCommits(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM volunteer_availability WHERE user_id = $1`)).
		WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, r.ReplaceAvailability(context.Background(), userID, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ListAvailability(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "user_id", "day_of_week", "start_time", "end_time"}).
		AddRow(uuid.New(), userID, 6, "09:00", "13:00")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM volunteer_availability WHERE user_id = $1`)).
		WithArgs(userID).WillReturnRows(rows)

	slots, err := r.ListAvailability(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "09:00", slots[0].StartTime)
	require.NoError(t, mock.ExpectationsWereMet())
}
