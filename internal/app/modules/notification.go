package modules

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"hostconsole.io/provisioning/internal/config"
	"hostconsole.io/provisioning/internal/jobs"
	"hostconsole.io/provisioning/internal/notification"
)

// NotificationModule owns failed-report mail.
type NotificationModule struct {
	cfg    *config.Config
	sender notification.Sender
}

// NewNotificationModule builds the SMTP-backed sender.
func NewNotificationModule(infra *Infrastructure) (*NotificationModule, error) {
	cfg := infra.Config
	mailer, err := notification.NewSMTPMailer(cfg.Mail.Addr(), cfg.Mail.Username, cfg.Mail.Password)
	if err != nil {
		return nil, err
	}
	return &NotificationModule{
		cfg:    cfg,
		sender: notification.NewEmailSender(mailer, cfg.Mail.From),
	}, nil
}

func (m *NotificationModule) Name() string { return "notification" }

// RegisterWorkers registers the report_error_mail worker.
func (m *NotificationModule) RegisterWorkers(workers *river.Workers) {
	river.AddWorker(workers, jobs.NewReportErrorMailWorker(m.sender))
}

func (m *NotificationModule) Shutdown(context.Context) error { return nil }

// ReportObserver builds the observer for the configured delivery mode. The
// queue mode needs the River client, so call this after InitRiver.
func (m *NotificationModule) ReportObserver(infra *Infrastructure) (*notification.ReportObserver, error) {
	dispatcher, err := NewDispatcher(m.cfg.Notification.Delivery, m.sender, infra)
	if err != nil {
		return nil, err
	}
	return notification.NewReportObserver(notification.Settings{
		FailedReportEmail: m.cfg.Notification.FailedReportEmail,
		Administrator:     m.cfg.Notification.Administrator,
	}, dispatcher), nil
}

// NewDispatcher selects a dispatcher by delivery mode.
func NewDispatcher(delivery string, sender notification.Sender, infra *Infrastructure) (notification.Dispatcher, error) {
	switch delivery {
	case config.DeliveryInline:
		return notification.NewInlineDispatcher(sender), nil
	case config.DeliveryPool:
		if infra == nil || infra.Pools == nil {
			return nil, fmt.Errorf("pool delivery needs worker pools")
		}
		return notification.NewPoolDispatcher(sender, infra.Pools), nil
	case config.DeliveryQueue:
		client := infra.RiverClient()
		if client == nil {
			return nil, fmt.Errorf("queue delivery needs an initialized river client")
		}
		return jobs.NewQueueDispatcher(client), nil
	default:
		return nil, fmt.Errorf("unknown notification delivery %q", delivery)
	}
}
