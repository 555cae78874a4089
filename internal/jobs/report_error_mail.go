// Package jobs defines River Queue job types for async processing.
//
// Import Path: hostconsole.io/provisioning/internal/jobs
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/notification"
	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
	"hostconsole.io/provisioning/internal/pkg/logger"
)

// QueueMail is the River queue that carries outbound mail.
const QueueMail = "mail"

// ---------------------------------------------------------------------------
// Job Args
// ---------------------------------------------------------------------------

// ReportErrorMailArgs carries the rendered administrator mail. Reports are
// not persisted by this service, so the job holds the message itself.
type ReportErrorMailArgs struct {
	Notification notification.Params `json:"notification"`
}

// Kind returns the job kind identifier for failed-report mail.
func (ReportErrorMailArgs) Kind() string { return "report_error_mail" }

// InsertOpts deduplicates identical mail for the same report within an hour.
func (ReportErrorMailArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueMail,
		MaxAttempts: 5,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByQueue:  true,
			ByPeriod: time.Hour,
		},
	}
}

// ---------------------------------------------------------------------------
// Worker
// ---------------------------------------------------------------------------

// ReportErrorMailWorker delivers queued failed-report mail.
type ReportErrorMailWorker struct {
	river.WorkerDefaults[ReportErrorMailArgs]
	sender notification.Sender
}

// NewReportErrorMailWorker creates a worker that sends through sender.
func NewReportErrorMailWorker(sender notification.Sender) *ReportErrorMailWorker {
	return &ReportErrorMailWorker{sender: sender}
}

// Work sends the mail. Invalid params cancel the job; delivery failures are
// retried by River.
func (w *ReportErrorMailWorker) Work(ctx context.Context, job *river.Job[ReportErrorMailArgs]) error {
	if w == nil || w.sender == nil {
		return fmt.Errorf("report error mail worker is not initialized")
	}

	params := job.Args.Notification
	if params.ID == "" {
		// Stable across retries so the relay sees one Message-ID.
		params.ID = messageID(job.ID).String()
	}

	if err := w.sender.Send(ctx, params); err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotificationInvalid) {
			return river.JobCancel(err)
		}
		logger.Warn("report error mail delivery failed",
			zap.Int64("job_id", job.ID),
			zap.Int("attempt", job.Attempt),
			zap.String("resource_id", params.ResourceID),
			zap.Error(err),
		)
		return err
	}

	logger.Info("report error mail delivered",
		zap.Int64("job_id", job.ID),
		zap.String("resource_id", params.ResourceID),
	)
	return nil
}

func messageID(jobID int64) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("report_error_mail/%d", jobID)))
}
