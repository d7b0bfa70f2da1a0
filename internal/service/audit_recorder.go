package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// AuditRecorder appends audit entries as the second step of a mutation.
// The primary write is already committed when Record runs, so a failure here
// is logged and swallowed.
type AuditRecorder struct {
	repo   repository.AuditRepository
	logger *zap.Logger
	now    Clock
}

// NewAuditRecorder builds a recorder. A nil repo disables auditing.
func NewAuditRecorder(repo repository.AuditRepository, logger *zap.Logger, now Clock) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRecorder{repo: repo, logger: logger, now: clockOrDefault(now)}
}

// Record writes one entry attributed to actorID.
func (r *AuditRecorder) Record(ctx context.Context, actorID string, action domain.AuditAction, details string) {
	if r == nil || r.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		Action:    action,
		Details:   details,
		UserID:    actorID,
		CreatedAt: r.now(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Error("audit write failed",
			zap.String("action", string(action)),
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
	}
}
