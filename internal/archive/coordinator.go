package archive

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"archive-service/internal/models"
	"archive-service/internal/observability"
	"archive-service/internal/rabbitmq"
	"archive-service/internal/repositories"
	"archive-service/internal/telemetry"
)

// Result summarizes one successful archival run.
type Result struct {
	ArchivedCount   int    `json:"archived_count"`
	DeletedCount    int    `json:"deleted_count"`
	Month           string `json:"month"`
	SystemMessageID int    `json:"system_message_id,omitempty"`
}

// RunError wraps any failure inside an archival run. The transaction is
// rolled back before it is returned, so a failed run leaves no state
// behind and is safe to re-invoke.
type RunError struct {
	Step string
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("archive run failed at %s: %v", e.Step, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Coordinator executes archival runs: snapshot, copy, purge, notify, all
// inside a single serializable transaction.
type Coordinator struct {
	store  repositories.RunStore
	events rabbitmq.Publisher
	audit  *telemetry.AuditEmitter
}

// NewCoordinator builds a Coordinator. events and audit may be nil;
// post-commit notifications are then skipped.
func NewCoordinator(store repositories.RunStore, events rabbitmq.Publisher, audit *telemetry.AuditEmitter) *Coordinator {
	return &Coordinator{store: store, events: events, audit: audit}
}

// Run archives every user-authored live message into the month preceding
// now, purges the archived rows, and appends a system notice. It either
// commits everything or changes nothing. System notices already in the
// live store are left in place and never archived; a completely empty
// live store commits a no-op without adding a notice.
func (c *Coordinator) Run(ctx context.Context, now time.Time) (Result, error) {
	ctx, span := otel.Tracer("archive-service/archive").Start(ctx, "archive.run")
	defer span.End()

	start := time.Now()
	runID := uuid.NewString()
	month := MonthBefore(now)

	result, err := c.runTx(ctx, now, month)
	if err != nil {
		observability.ObserveArchiveRun("failed", time.Since(start))
		c.emitAudit(ctx, "ERROR", fmt.Sprintf("archival run failed: %v", err), runID)
		return Result{}, err
	}

	observability.ObserveArchiveRun("succeeded", time.Since(start))
	observability.AddArchivedMessages(result.ArchivedCount)
	observability.AddPurgedLiveMessages(result.DeletedCount)

	c.emitAudit(ctx, "INFO",
		fmt.Sprintf("archived %d messages into %s", result.ArchivedCount, result.Month), runID)
	c.publishCompleted(ctx, runID, result)

	return result, nil
}

func (c *Coordinator) runTx(ctx context.Context, now time.Time, month string) (Result, error) {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return Result{}, &RunError{Step: "begin", Err: err}
	}
	defer tx.Rollback()

	if err := tx.AcquireRunLock(ctx); err != nil {
		return Result{}, &RunError{Step: "lock", Err: err}
	}

	snapshot, err := tx.SnapshotMessages(ctx)
	if err != nil {
		return Result{}, &RunError{Step: "snapshot", Err: err}
	}

	// Nothing live at all: commit the no-op and skip the notice.
	if len(snapshot) == 0 {
		if err := tx.Commit(); err != nil {
			return Result{}, &RunError{Step: "commit", Err: err}
		}
		return Result{Month: month}, nil
	}

	archivedIDs := make([]int, 0, len(snapshot))
	for _, src := range snapshot {
		if src.SystemAuthored() {
			continue
		}
		row := models.ArchivedMessage{
			ID:           uuid.NewString(),
			Content:      src.Content,
			SenderID:     src.SenderID,
			EmployeeID:   src.EmployeeID,
			SenderName:   src.ResolvedSenderName(),
			SenderAvatar: src.ResolvedSenderAvatar(),
			Timestamp:    src.Timestamp,
			ArchiveMonth: month,
			IsEmployee:   src.EmployeeID != nil,
		}
		if err := tx.InsertArchived(ctx, row); err != nil {
			return Result{}, &RunError{Step: "copy", Err: err}
		}
		archivedIDs = append(archivedIDs, src.ID)
	}

	deleted, err := tx.DeleteMessages(ctx, archivedIDs)
	if err != nil {
		return Result{}, &RunError{Step: "purge", Err: err}
	}

	noticeID, err := tx.InsertSystemNotice(ctx, noticeContent(month), now)
	if err != nil {
		return Result{}, &RunError{Step: "notify", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return Result{}, &RunError{Step: "commit", Err: err}
	}

	return Result{
		ArchivedCount:   len(archivedIDs),
		DeletedCount:    int(deleted),
		Month:           month,
		SystemMessageID: noticeID,
	}, nil
}

func noticeContent(month string) string {
	return fmt.Sprintf("Messages from %s have been archived and are now available under Archives.", month)
}

type runCompletedEvent struct {
	RunID string `json:"run_id"`
	Result
}

func (c *Coordinator) publishCompleted(ctx context.Context, runID string, result Result) {
	if c.events == nil {
		return
	}
	event := runCompletedEvent{RunID: runID, Result: result}
	if err := c.events.Publish(ctx, "archive.run.completed", event); err != nil {
		log.Printf("archive event publish failed: %v", err)
	}
}

func (c *Coordinator) emitAudit(ctx context.Context, level, text, runID string) {
	if c.audit == nil {
		return
	}
	c.audit.Emit(ctx, level, text, runID, nil)
}
