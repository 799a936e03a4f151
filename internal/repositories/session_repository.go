package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"archive-service/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository resolves session tokens to principals. A token
// resolves only while its session row exists and has not expired; an
// expired row behaves exactly like an absent one.
type SessionRepository interface {
	EmployeeByToken(ctx context.Context, token string, now time.Time) (models.Principal, error)
	UserByToken(ctx context.Context, token string, now time.Time) (models.Principal, error)
}

// SessionRepo is a sqlx-backed SessionRepository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

type principalRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

// EmployeeByToken resolves an employee session token.
func (r *SessionRepo) EmployeeByToken(ctx context.Context, token string, now time.Time) (models.Principal, error) {
	var row principalRow
	err := r.db.GetContext(ctx, &row,
		`SELECT e.id, e.name
         FROM employee_sessions s
         JOIN employees e ON e.id = s.employee_id
         WHERE s.token = $1 AND s.expires_at > $2`, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Principal{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{ID: row.ID, Kind: models.PrincipalEmployee, Name: row.Name}, nil
}

// UserByToken resolves a legacy-user session token.
func (r *SessionRepo) UserByToken(ctx context.Context, token string, now time.Time) (models.Principal, error) {
	var row principalRow
	err := r.db.GetContext(ctx, &row,
		`SELECT u.id, u.name
         FROM sessions s
         JOIN users u ON u.id = s.user_id
         WHERE s.token = $1 AND s.expires_at > $2`, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Principal{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{ID: row.ID, Kind: models.PrincipalUser, Name: row.Name}, nil
}
