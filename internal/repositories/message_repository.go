package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"archive-service/internal/models"
)

// MessageRepository defines interactions with the live message store.
type MessageRepository interface {
	Create(ctx context.Context, principal models.Principal, content string, at time.Time) (models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository over the live messages table.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a user-authored message, setting exactly one sender
// reference depending on the principal kind and denormalizing the display
// name.
func (r *MessageRepo) Create(ctx context.Context, principal models.Principal, content string, at time.Time) (models.Message, error) {
	var senderID, employeeID *int
	switch principal.Kind {
	case models.PrincipalEmployee:
		employeeID = &principal.ID
	case models.PrincipalUser:
		senderID = &principal.ID
	default:
		return models.Message{}, fmt.Errorf("unknown principal kind %q", principal.Kind)
	}

	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (content, sender_id, employee_id, sender_name, timestamp)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, content, sender_id, employee_id, sender_name, timestamp, created_at`,
		content, senderID, employeeID, principal.Name, at).
		StructScan(&msg)
	return msg, err
}

// List returns every live message ascending by send time, system notices
// included.
func (r *MessageRepo) List(ctx context.Context) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, content, sender_id, employee_id, sender_name, timestamp, created_at
         FROM messages
         ORDER BY timestamp ASC`)
	return msgs, err
}
