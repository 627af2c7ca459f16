// Package audit records user and admin activity.
package audit

import (
	"context"
	"time"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// Recorder appends audit entries. Write failures are logged and never
// fail the action being recorded.
type Recorder struct {
	store  interfaces.AuditStore
	logger *common.Logger
}

// NewRecorder creates a Recorder over store.
func NewRecorder(store interfaces.AuditStore, logger *common.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record writes an entry for an action on userID performed by actorID.
// An empty actorID means the user acted on their own account.
func (r *Recorder) Record(ctx context.Context, userID, actorID, action, detail string) {
	if r == nil || r.store == nil {
		return
	}
	if actorID == "" {
		actorID = userID
	}
	entry := &models.AuditEntry{
		UserID:    userID,
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		IP:        common.ClientIPFromContext(ctx),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.Warn().Err(err).Str("action", action).Str("user_id", userID).Msg("Failed to write audit entry")
	}
}

// Prune deletes entries older than retention and returns the count.
func (r *Recorder) Prune(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-retention)
	n, err := r.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Info().Int("deleted", n).Str("cutoff", cutoff.Format(time.RFC3339)).Msg("Pruned audit log")
	}
	return n, nil
}
