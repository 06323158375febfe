// Package audit records who did what to what resource. Writes are a
// best-effort side channel: they never fail or delay the business operation
// that triggered them. This trades completeness for availability.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

// Audit action names.
const (
	ActionLogin              = "login"
	ActionLogout             = "logout"
	ActionPasswordChange     = "password_change"
	ActionPasswordReset      = "password_reset"
	ActionUserCreate         = "user_create"
	ActionUserUpdate         = "user_update"
	ActionUserDelete         = "user_delete"
	ActionAssignmentCreate   = "assignment_create"
	ActionAssignmentUpdate   = "assignment_update"
	ActionAssignmentDelete   = "assignment_delete"
	ActionMarkToggle         = "mark_permission_toggle"
	ActionSessionDelete      = "session_delete"
	ActionConversationDelete = "conversation_delete"
	ActionAgentDelete        = "agent_delete"
	ActionSummaryEdit        = "summary_edit"
	ActionExclusionRestore   = "exclusion_restore"
	ActionExportData         = "export_data"
)

// RequestMeta carries the caller identity extracted from the HTTP request.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Event is one pending audit row.
type Event struct {
	ActorID      *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   string
	Request      RequestMeta
	Metadata     model.JSONMap
}

// Recorder appends audit rows asynchronously. Record never blocks the
// caller: events queue on a buffered channel and a single worker persists
// them. A full queue or a failed write drops the event with a log line.
type Recorder struct {
	repo   repository.AuditRepository
	logger *zap.Logger
	events chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRecorder starts a recorder with the given queue depth.
func NewRecorder(repo repository.AuditRepository, logger *zap.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		repo:   repo,
		logger: logger,
		events: make(chan Event, queueSize),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for ev := range r.events {
		entry := &model.AuditLog{
			ActorID:      ev.ActorID,
			Action:       ev.Action,
			ResourceType: ev.ResourceType,
			ResourceID:   ev.ResourceID,
			IP:           ev.Request.IP,
			UserAgent:    ev.Request.UserAgent,
			Metadata:     ev.Metadata,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.repo.Create(ctx, entry); err != nil {
			r.logger.Warn("audit write failed",
				zap.String("action", ev.Action),
				zap.Error(err))
		}
		cancel()
	}
}

// Record queues one audit event. It never blocks and never returns an error.
func (r *Recorder) Record(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.logger.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close drains the queue and stops the worker.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.events)
	})
	r.wg.Wait()
}
