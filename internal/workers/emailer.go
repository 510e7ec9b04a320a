// Package workers contains the background job processors.
package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/khushik17/notesweb/internal/notify"
	"github.com/khushik17/notesweb/internal/queue"
)

// sendTimeout bounds a single SMTP delivery attempt
const sendTimeout = 30 * time.Second

// Emailer processes note-created jobs by sending notification emails.
// Delivery is best effort: a failed send is logged and the job is
// acknowledged anyway, never retried.
type Emailer struct {
	mailer notify.Mailer
	logger *zap.Logger
}

// NewEmailer creates a new email worker
func NewEmailer(mailer notify.Mailer, logger *zap.Logger) *Emailer {
	return &Emailer{
		mailer: mailer,
		logger: logger,
	}
}

// ProcessJob handles a single queued message. The returned error reports
// acknowledgement problems only; send failures are absorbed.
func (e *Emailer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.Type != queue.JobTypeNoteCreated {
		e.logger.Warn("discarding job of unknown type",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
		)
		if err := msg.Ack(); err != nil {
			return fmt.Errorf("failed to ack unknown job: %w", err)
		}
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := e.mailer.SendNoteCreated(sendCtx, job.Note); err != nil {
		e.logger.Warn("failed to send note-created email",
			zap.String("job_id", job.ID.String()),
			zap.String("note_id", job.NoteID.String()),
			zap.Error(err),
		)
	} else {
		e.logger.Info("sent note-created email",
			zap.String("job_id", job.ID.String()),
			zap.String("note_id", job.NoteID.String()),
		)
	}

	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}
