package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/domain"
	"hostconsole.io/provisioning/internal/pkg/logger"
	"hostconsole.io/provisioning/internal/pkg/worker"
)

// Settings controls failed-report mail.
type Settings struct {
	FailedReportEmail bool
	Administrator     string
}

// Dispatcher hands a notification to a delivery mechanism.
type Dispatcher interface {
	Dispatch(ctx context.Context, params Params) error
}

// InlineDispatcher sends synchronously on the caller's goroutine.
type InlineDispatcher struct {
	sender Sender
}

// NewInlineDispatcher creates an inline dispatcher.
func NewInlineDispatcher(sender Sender) *InlineDispatcher {
	return &InlineDispatcher{sender: sender}
}

// Dispatch sends params and returns the delivery error, if any.
func (d *InlineDispatcher) Dispatch(ctx context.Context, params Params) error {
	return d.sender.Send(ctx, params)
}

// PoolDispatcher sends on the mail worker pool. Dispatch returns once the
// task is queued; delivery failures are logged.
type PoolDispatcher struct {
	sender Sender
	pools  *worker.Pools
}

// NewPoolDispatcher creates a dispatcher backed by the mail pool.
func NewPoolDispatcher(sender Sender, pools *worker.Pools) *PoolDispatcher {
	return &PoolDispatcher{sender: sender, pools: pools}
}

// Dispatch queues params on the mail pool. The send runs under the service
// lifecycle context so it outlives the caller's request.
func (d *PoolDispatcher) Dispatch(_ context.Context, params Params) error {
	return d.pools.SubmitDetached(worker.PoolMail, func(ctx context.Context) {
		if err := d.sender.Send(ctx, params); err != nil {
			logger.Error("pooled notification delivery failed",
				zap.String("type", params.Type),
				zap.String("resource_id", params.ResourceID),
				zap.Error(err),
			)
		}
	})
}

var (
	_ Dispatcher = (*InlineDispatcher)(nil)
	_ Dispatcher = (*PoolDispatcher)(nil)
)

// ReportObserver reacts to persisted configuration reports.
type ReportObserver struct {
	settings   Settings
	dispatcher Dispatcher
}

// NewReportObserver creates an observer.
func NewReportObserver(settings Settings, dispatcher Dispatcher) *ReportObserver {
	return &ReportObserver{settings: settings, dispatcher: dispatcher}
}

// AfterSave runs after a report is saved. It notifies the administrator when
// saved is in error and previous, the stored version before the save, is
// absent or was not. It reports whether a notification was dispatched.
func (o *ReportObserver) AfterSave(ctx context.Context, previous *domain.Report, saved domain.Report) (bool, error) {
	if !o.settings.FailedReportEmail || !saved.Error() {
		return false, nil
	}
	if previous != nil && previous.Error() {
		return false, nil
	}

	params := ReportErrorParams(o.settings.Administrator, saved)
	if err := o.dispatcher.Dispatch(ctx, params); err != nil {
		logger.Error("failed to dispatch report error notification",
			zap.String("report_id", saved.ID),
			zap.String("host", saved.HostName),
			zap.Error(err),
		)
		return false, err
	}

	logger.Info("report error notification dispatched",
		zap.String("report_id", saved.ID),
		zap.String("host", saved.HostName),
	)
	return true, nil
}

// ReportErrorParams builds the administrator mail for a failed report.
func ReportErrorParams(administrator string, r domain.Report) Params {
	var body strings.Builder
	fmt.Fprintf(&body, "Configuration run on %s reported errors.\n\n", r.HostName)
	fmt.Fprintf(&body, "Reported at: %s\n", r.ReportedAt.UTC().Format(time.RFC3339))
	for _, m := range domain.ReportMetrics() {
		fmt.Fprintf(&body, "%s: %d\n", m, r.Status.Metric(m))
	}

	return Params{
		Recipient:    administrator,
		Type:         TypeReportError,
		Title:        fmt.Sprintf("Configuration error on %s", r.HostName),
		Message:      body.String(),
		ResourceType: "report",
		ResourceID:   r.ID,
	}
}
