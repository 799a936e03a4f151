package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"archive-service/internal/models"
)

// archiveRunLockID keys the advisory lock that makes archival runs
// single-flight across processes.
const archiveRunLockID int64 = 0x6172_6368 // "arch"

// RunStore opens the transactional unit of work an archival run executes
// in.
type RunStore interface {
	Begin(ctx context.Context) (RunTx, error)
}

// RunTx is one archival transaction. Every method runs against the same
// database transaction; Commit or Rollback ends it. Rollback after a
// successful Commit is a no-op, so callers may defer it unconditionally.
type RunTx interface {
	AcquireRunLock(ctx context.Context) error
	SnapshotMessages(ctx context.Context) ([]models.ArchiveSource, error)
	InsertArchived(ctx context.Context, msg models.ArchivedMessage) error
	DeleteMessages(ctx context.Context, ids []int) (int64, error)
	InsertSystemNotice(ctx context.Context, content string, at time.Time) (int, error)
	Commit() error
	Rollback() error
}

// ArchiveRunStore is the sqlx-backed RunStore. Runs execute under
// SERIALIZABLE isolation so messages sent while a run is in flight either
// land in the snapshot or survive the delete untouched.
type ArchiveRunStore struct {
	db *sqlx.DB
}

// NewArchiveRunStore constructs ArchiveRunStore.
func NewArchiveRunStore(db *sqlx.DB) *ArchiveRunStore {
	return &ArchiveRunStore{db: db}
}

// Begin opens a serializable transaction for one run.
func (s *ArchiveRunStore) Begin(ctx context.Context) (RunTx, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &archiveRunTx{tx: tx}, nil
}

type archiveRunTx struct {
	tx *sqlx.Tx
}

// AcquireRunLock blocks until this transaction holds the run lock. The
// lock is transaction-scoped, so commit and rollback both release it.
func (t *archiveRunTx) AcquireRunLock(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, archiveRunLockID)
	return err
}

// SnapshotMessages reads every live message ascending by send time, each
// joined with its referenced employee or user for name and avatar
// resolution.
func (t *archiveRunTx) SnapshotMessages(ctx context.Context) ([]models.ArchiveSource, error) {
	rows := []models.ArchiveSource{}
	err := t.tx.SelectContext(ctx, &rows,
		`SELECT m.id, m.content, m.sender_id, m.employee_id, m.sender_name, m.timestamp, m.created_at,
                e.name AS employee_name, e.avatar AS employee_avatar,
                u.name AS user_name, u.avatar AS user_avatar
         FROM messages m
         LEFT JOIN employees e ON e.id = m.employee_id
         LEFT JOIN users u ON u.id = m.sender_id
         ORDER BY m.timestamp ASC`)
	return rows, err
}

// InsertArchived writes one archive row.
func (t *archiveRunTx) InsertArchived(ctx context.Context, msg models.ArchivedMessage) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO message_archives
            (id, content, sender_id, employee_id, sender_name, sender_avatar, timestamp, archive_month, is_employee)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.Content, msg.SenderID, msg.EmployeeID, msg.SenderName,
		msg.SenderAvatar, msg.Timestamp, msg.ArchiveMonth, msg.IsEmployee)
	return err
}

// DeleteMessages removes the given live rows and reports how many went.
func (t *archiveRunTx) DeleteMessages(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM messages WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertSystemNotice appends a system-authored message to the live store.
func (t *archiveRunTx) InsertSystemNotice(ctx context.Context, content string, at time.Time) (int, error) {
	var id int
	err := t.tx.QueryRowxContext(ctx,
		`INSERT INTO messages (content, sender_name, timestamp) VALUES ($1, $2, $3) RETURNING id`,
		content, models.SystemSenderName, at).Scan(&id)
	return id, err
}

func (t *archiveRunTx) Commit() error {
	return t.tx.Commit()
}

func (t *archiveRunTx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
