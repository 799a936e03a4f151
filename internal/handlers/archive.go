package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"archive-service/internal/archive"
	"archive-service/internal/middleware"
	"archive-service/internal/models"
	"archive-service/internal/observability"
	"archive-service/internal/repositories"
	"archive-service/internal/telemetry"
)

var archiveMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ArchiveRunner triggers an archival run. Satisfied by archive.Coordinator.
type ArchiveRunner interface {
	Run(ctx context.Context, now time.Time) (archive.Result, error)
}

// ArchiveHandler serves the archive query surface. Authentication is
// enforced by the session middleware on the route group; a missing
// archive table is an empty archive, not an error.
type ArchiveHandler struct {
	archiveRepo repositories.ArchiveRepository
	runner      ArchiveRunner
	audit       *telemetry.AuditEmitter
}

// NewArchiveHandler builds an ArchiveHandler. runner and audit may be nil
// when the manual trigger endpoint is not mounted.
func NewArchiveHandler(archiveRepo repositories.ArchiveRepository, runner ArchiveRunner, audit *telemetry.AuditEmitter) *ArchiveHandler {
	return &ArchiveHandler{archiveRepo: archiveRepo, runner: runner, audit: audit}
}

// ListMonths returns the distinct archived months, newest first.
func (h *ArchiveHandler) ListMonths(c *gin.Context) {
	months, err := h.archiveRepo.ListMonths(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load archive months"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": months, "count": len(months)})
}

// ListMonthMessages returns one month's archived messages ascending by
// original send time.
func (h *ArchiveHandler) ListMonthMessages(c *gin.Context) {
	month := c.Param("month")
	if !archiveMonthPattern.MatchString(month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid archive month"})
		return
	}

	msgs, err := h.archiveRepo.ListByMonth(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load archived messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "messages": msgs, "count": len(msgs)})
}

// RunArchival triggers an archival run by hand. Restricted to employee
// principals; legacy users can read archives but not cut them over.
func (h *ArchiveHandler) RunArchival(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if principal.Kind != models.PrincipalEmployee {
		c.JSON(http.StatusForbidden, gin.H{"error": "employee access required"})
		return
	}
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "archival trigger not configured"})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archival run failed"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("manual archival run by employee %q from %s: archived %d into %s",
			principal.Name, observability.IPFromRequest(c.Request), result.ArchivedCount, result.Month),
		observability.RequestIDFromRequest(c.Request), &principal.ID)

	c.JSON(http.StatusOK, result)
}
