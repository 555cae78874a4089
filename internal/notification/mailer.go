package notification

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

// Message is one outbound mail.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message.
type Mailer interface {
	Deliver(ctx context.Context, msg Message) error
}

// DefaultSMTPTimeout bounds a delivery whose context carries no deadline.
const DefaultSMTPTimeout = 30 * time.Second

// SMTPMailer sends mail through an SMTP relay. Every network operation of a
// delivery is bound to its context.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string

	// Timeout caps dial and session time when ctx has no earlier deadline.
	Timeout time.Duration

	// TLSPolicy defaults to STARTTLS when the relay offers it.
	TLSPolicy mail.TLSPolicy

	// Now is overridden in tests.
	Now func() time.Time

	dialer net.Dialer
}

// NewSMTPMailer creates a mailer for host:port. Credentials are optional.
func NewSMTPMailer(addr, username, password string) (*SMTPMailer, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("parse smtp address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse smtp port %q: %w", portStr, err)
	}
	return &SMTPMailer{
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		Timeout:   DefaultSMTPTimeout,
		TLSPolicy: mail.TLSOpportunistic,
		Now:       time.Now,
	}, nil
}

// Deliver sends msg. Cancelling ctx aborts the session, including reads from
// a relay that stopped answering.
func (m *SMTPMailer) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	composed, err := m.compose(msg)
	if err != nil {
		return err
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultSMTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn := &boundConn{}
	stop := context.AfterFunc(ctx, conn.abort)
	defer stop()

	opts := []mail.Option{
		mail.WithPort(m.Port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(m.TLSPolicy),
		mail.WithDialContextFunc(func(dialCtx context.Context, network, address string) (net.Conn, error) {
			c, err := m.dialer.DialContext(dialCtx, network, address)
			if err != nil {
				return nil, err
			}
			conn.bind(ctx, c)
			return c, nil
		}),
	}
	if m.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.Username),
			mail.WithPassword(m.Password),
		)
	}

	client, err := mail.NewClient(m.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client for %s: %w", m.addr(), err)
	}
	if err := client.DialAndSendWithContext(ctx, composed); err != nil {
		if ctxErr := contextErr(ctx); ctxErr != nil {
			return fmt.Errorf("smtp send to %s: %w", m.addr(), ctxErr)
		}
		return fmt.Errorf("smtp send to %s: %w", m.addr(), err)
	}
	return nil
}

// contextErr reports ctx.Err, counting a passed deadline whose timer has not
// fired yet; the connection deadline can expire first.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *SMTPMailer) addr() string {
	return net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
}

func (m *SMTPMailer) compose(msg Message) (*mail.Msg, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	out := mail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return nil, fmt.Errorf("mail from %q: %w", msg.From, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail to %q: %w", msg.To, err)
	}
	// Strip CR/LF so values cannot inject headers.
	out.Subject(strings.NewReplacer("\r", "", "\n", "").Replace(msg.Subject))
	out.SetDateWithValue(now().UTC())
	if msg.ID != "" {
		out.SetMessageIDWithValue(msg.ID + "@provisioning-console")
	}
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

// boundConn ties the session connection to the delivery context: the
// connection inherits its deadline and is expired when it is cancelled.
type boundConn struct {
	mu      sync.Mutex
	conn    net.Conn
	aborted bool
}

func (b *boundConn) bind(ctx context.Context, c net.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conn = c
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.SetDeadline(deadline)
	}
	if b.aborted {
		_ = c.SetDeadline(time.Unix(1, 0))
	}
}

func (b *boundConn) abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aborted = true
	if b.conn != nil {
		_ = b.conn.SetDeadline(time.Unix(1, 0))
	}
}

var _ Mailer = (*SMTPMailer)(nil)
