package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/notification"
	"hostconsole.io/provisioning/internal/pkg/logger"
)

// JobInserter is the subset of *river.Client used to enqueue jobs.
type JobInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// QueueDispatcher enqueues notifications as report_error_mail jobs.
type QueueDispatcher struct {
	inserter JobInserter
}

// NewQueueDispatcher creates a River-backed dispatcher.
func NewQueueDispatcher(inserter JobInserter) *QueueDispatcher {
	return &QueueDispatcher{inserter: inserter}
}

// Dispatch inserts one job. A job skipped as a duplicate is not an error.
func (d *QueueDispatcher) Dispatch(ctx context.Context, params notification.Params) error {
	res, err := d.inserter.Insert(ctx, ReportErrorMailArgs{Notification: params}, nil)
	if err != nil {
		return fmt.Errorf("enqueue report error mail for %s: %w", params.ResourceID, err)
	}
	if res != nil && res.UniqueSkippedAsDuplicate {
		logger.Debug("report error mail already queued",
			zap.String("resource_id", params.ResourceID),
			zap.Int64("job_id", res.Job.ID),
		)
	}
	return nil
}

var _ notification.Dispatcher = (*QueueDispatcher)(nil)
