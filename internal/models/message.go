package models

import "time"

// SystemSenderName is the display name attached to system-authored notices.
const SystemSenderName = "System"

// Message is a row in the live message store. Exactly one of SenderID
// (legacy user) or EmployeeID is set for user-authored messages; both are
// nil for system notices.
type Message struct {
	ID         int       `db:"id" json:"id"`
	Content    string    `db:"content" json:"content"`
	SenderID   *int      `db:"sender_id" json:"sender_id,omitempty"`
	EmployeeID *int      `db:"employee_id" json:"employee_id,omitempty"`
	SenderName string    `db:"sender_name" json:"sender_name"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SystemAuthored reports whether the message carries no sender reference.
func (m Message) SystemAuthored() bool {
	return m.SenderID == nil && m.EmployeeID == nil
}

// ArchivedMessage is a row in the archive store. The id is generated at
// archival time and carries no relation to the source message id.
type ArchivedMessage struct {
	ID           string    `db:"id" json:"id"`
	Content      string    `db:"content" json:"content"`
	SenderID     *int      `db:"sender_id" json:"sender_id,omitempty"`
	EmployeeID   *int      `db:"employee_id" json:"employee_id,omitempty"`
	SenderName   string    `db:"sender_name" json:"sender_name"`
	SenderAvatar *string   `db:"sender_avatar" json:"sender_avatar,omitempty"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	ArchiveMonth string    `db:"archive_month" json:"archive_month"`
	IsEmployee   bool      `db:"is_employee" json:"is_employee"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ArchiveSource is a live message joined with its referenced employee or
// legacy user, as read by the archival snapshot.
type ArchiveSource struct {
	Message
	EmployeeName   *string `db:"employee_name"`
	EmployeeAvatar *string `db:"employee_avatar"`
	UserName       *string `db:"user_name"`
	UserAvatar     *string `db:"user_avatar"`
}

// ResolvedSenderName prefers the referenced principal's current name over
// the denormalized one stored with the message.
func (s ArchiveSource) ResolvedSenderName() string {
	switch {
	case s.EmployeeID != nil && s.EmployeeName != nil:
		return *s.EmployeeName
	case s.SenderID != nil && s.UserName != nil:
		return *s.UserName
	case s.SenderName != "":
		return s.SenderName
	default:
		return "Unknown User"
	}
}

// ResolvedSenderAvatar returns the referenced principal's avatar, if any.
func (s ArchiveSource) ResolvedSenderAvatar() *string {
	if s.EmployeeID != nil {
		return s.EmployeeAvatar
	}
	if s.SenderID != nil {
		return s.UserAvatar
	}
	return nil
}
