package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"archive-service/internal/models"
)

// pq error class for a relation that does not exist.
const pqUndefinedTable = "42P01"

// ArchiveRepository is the read surface over the archive store.
type ArchiveRepository interface {
	ListMonths(ctx context.Context) ([]string, error)
	ListByMonth(ctx context.Context, month string) ([]models.ArchivedMessage, error)
}

// ArchiveRepo is a sqlx-backed ArchiveRepository. The archive table may
// not exist yet on a fresh deployment; read paths treat that as an empty
// archive rather than an error.
type ArchiveRepo struct {
	db *sqlx.DB
}

// NewArchiveRepo constructs ArchiveRepo.
func NewArchiveRepo(db *sqlx.DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

// ListMonths returns the distinct archive months, newest first.
func (r *ArchiveRepo) ListMonths(ctx context.Context) ([]string, error) {
	months := []string{}
	err := r.db.SelectContext(ctx, &months,
		`SELECT DISTINCT archive_month FROM message_archives ORDER BY archive_month DESC`)
	if isUndefinedTable(err) {
		return []string{}, nil
	}
	return months, err
}

// ListByMonth returns the archived messages of one month ascending by
// original send time.
func (r *ArchiveRepo) ListByMonth(ctx context.Context, month string) ([]models.ArchivedMessage, error) {
	msgs := []models.ArchivedMessage{}
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, content, sender_id, employee_id, sender_name, sender_avatar,
                timestamp, archive_month, is_employee, created_at
         FROM message_archives
         WHERE archive_month = $1
         ORDER BY timestamp ASC`, month)
	if isUndefinedTable(err) {
		return []models.ArchivedMessage{}, nil
	}
	return msgs, err
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable
}
