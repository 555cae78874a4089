package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"

	"hostconsole.io/provisioning/internal/domain"
	"hostconsole.io/provisioning/internal/notification"
	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
)

type stubSender struct {
	sent []notification.Params
	err  error
}

func (s *stubSender) Send(_ context.Context, p notification.Params) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, p)
	return nil
}

type stubInserter struct {
	args []river.JobArgs
	res  *rivertype.JobInsertResult
	err  error
}

func (s *stubInserter) Insert(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.args = append(s.args, args)
	return s.res, nil
}

func mailJob(id int64, params notification.Params) *river.Job[ReportErrorMailArgs] {
	return &river.Job[ReportErrorMailArgs]{
		JobRow: &rivertype.JobRow{ID: id, Attempt: 1},
		Args:   ReportErrorMailArgs{Notification: params},
	}
}

var adminMail = notification.Params{
	Recipient:    "admin@example.com",
	Type:         notification.TypeReportError,
	Title:        "Configuration error on web01",
	Message:      "failed: 1",
	ResourceType: "report",
	ResourceID:   "report-1",
}

func TestReportErrorMailArgsKind(t *testing.T) {
	t.Parallel()

	if got := (ReportErrorMailArgs{}).Kind(); got != "report_error_mail" {
		t.Fatalf("Kind() = %q, want %q", got, "report_error_mail")
	}
}

func TestReportErrorMailArgsInsertOpts(t *testing.T) {
	t.Parallel()

	opts := (ReportErrorMailArgs{}).InsertOpts()
	if opts.Queue != QueueMail {
		t.Fatalf("Queue = %q, want %q", opts.Queue, QueueMail)
	}
	if opts.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want 5", opts.MaxAttempts)
	}
	if !opts.UniqueOpts.ByArgs || !opts.UniqueOpts.ByQueue {
		t.Fatal("UniqueOpts must dedupe by args and queue")
	}
	if opts.UniqueOpts.ByPeriod != time.Hour {
		t.Fatalf("UniqueOpts.ByPeriod = %s, want 1h", opts.UniqueOpts.ByPeriod)
	}
}

func TestReportErrorMailWorkerWork(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	w := NewReportErrorMailWorker(sender)

	require.NoError(t, w.Work(context.Background(), mailJob(42, adminMail)))
	require.Len(t, sender.sent, 1)
	require.Equal(t, "admin@example.com", sender.sent[0].Recipient)
	require.Equal(t, messageID(42).String(), sender.sent[0].ID)
}

func TestReportErrorMailWorkerWork_StableMessageID(t *testing.T) {
	t.Parallel()

	require.Equal(t, messageID(7), messageID(7))
	require.NotEqual(t, messageID(7), messageID(8))
}

func TestReportErrorMailWorkerWork_Errors(t *testing.T) {
	t.Parallel()

	t.Run("nil receiver", func(t *testing.T) {
		var w *ReportErrorMailWorker
		err := w.Work(context.Background(), mailJob(1, adminMail))
		if err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Fatalf("Work() error = %v, want contains %q", err, "not initialized")
		}
	})

	t.Run("invalid params cancel the job", func(t *testing.T) {
		invalid := apperrors.Wrap(errors.New("recipient is required"), apperrors.CodeNotificationInvalid, "notification params invalid")
		w := NewReportErrorMailWorker(&stubSender{err: invalid})

		err := w.Work(context.Background(), mailJob(1, adminMail))
		require.ErrorIs(t, err, invalid)
		require.NotSame(t, invalid, err)
	})

	t.Run("delivery failure is retried", func(t *testing.T) {
		boom := errors.New("relay refused")
		w := NewReportErrorMailWorker(&stubSender{err: boom})

		err := w.Work(context.Background(), mailJob(1, adminMail))
		require.Same(t, boom, err)
	})
}

func TestQueueDispatcher(t *testing.T) {
	t.Parallel()

	ins := &stubInserter{res: &rivertype.JobInsertResult{Job: &rivertype.JobRow{ID: 9}}}
	d := NewQueueDispatcher(ins)

	require.NoError(t, d.Dispatch(context.Background(), adminMail))
	require.Len(t, ins.args, 1)
	args, ok := ins.args[0].(ReportErrorMailArgs)
	require.True(t, ok)
	require.Equal(t, adminMail, args.Notification)
}

func TestQueueDispatcher_Duplicate(t *testing.T) {
	t.Parallel()

	ins := &stubInserter{res: &rivertype.JobInsertResult{
		Job:                      &rivertype.JobRow{ID: 9},
		UniqueSkippedAsDuplicate: true,
	}}
	require.NoError(t, NewQueueDispatcher(ins).Dispatch(context.Background(), adminMail))
}

func TestQueueDispatcher_InsertError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	err := NewQueueDispatcher(&stubInserter{err: boom}).Dispatch(context.Background(), adminMail)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "report-1")
}

func TestQueueDispatcher_WithReportObserver(t *testing.T) {
	t.Parallel()

	ins := &stubInserter{res: &rivertype.JobInsertResult{Job: &rivertype.JobRow{ID: 1}}}
	o := notification.NewReportObserver(notification.Settings{
		FailedReportEmail: true,
		Administrator:     "admin@example.com",
	}, NewQueueDispatcher(ins))

	failed := notificationReport(16781381)
	sent, err := o.AfterSave(context.Background(), nil, failed)
	require.NoError(t, err)
	require.True(t, sent)
	require.Len(t, ins.args, 1)
}

func notificationReport(status uint64) domain.Report {
	return domain.Report{
		ID:         "report-1",
		HostName:   "web01.example.com",
		ReportedAt: time.Date(2026, 2, 14, 8, 30, 0, 0, time.UTC),
		Status:     domain.ReportStatus(status),
	}
}
