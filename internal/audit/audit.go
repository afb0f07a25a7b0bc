package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventcrm/internal/models"
)

// Outcomes recorded for authorization decisions and lifecycle transitions.
const (
	OutcomeAllowed  = "allowed"
	OutcomeDenied   = "denied"
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Entry is one structured audit event.
type Entry struct {
	ActorID    string
	Action     string
	EntityKind string
	EntityID   string
	Outcome    string
	Metadata   map[string]interface{}
}

// Sink receives audit entries. Implementations are fire-and-forget: a
// failing sink must never fail the business operation it describes.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// Recorder logs every entry through zap and persists it as an AuditLog
// row. It writes through the root database handle, not the caller's
// transaction, so denied attempts survive the rollback of the operation
// that triggered them.
type Recorder struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewRecorder(db *gorm.DB, lg *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, lg: lg}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	r.lg.Infow("audit",
		"actor", e.ActorID,
		"action", e.Action,
		"kind", e.EntityKind,
		"entity", e.EntityID,
		"outcome", e.Outcome,
	)
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		meta = []byte("{}")
	}
	row := models.AuditLog{
		Action:     e.Action,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		Outcome:    e.Outcome,
		Metadata:   models.JSONB(meta),
		CreatedAt:  time.Now(),
	}
	if e.ActorID != "" {
		actor := e.ActorID
		row.ActorID = &actor
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.lg.Warnw("audit write failed", "error", err)
	}
}

// Nop discards every entry. Used in tests.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
