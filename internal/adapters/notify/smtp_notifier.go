package notify

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

// SMTPNotifier delivers reminder emails through an SMTP submission server.
type SMTPNotifier struct {
	addr      string
	username  string
	password  string
	from      string
	recipient string
	logger    *zap.Logger
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(host string, port int, username, password, from, recipient string, logger *zap.Logger) (*SMTPNotifier, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if recipient == "" {
		return nil, fmt.Errorf("SMTP recipient is required")
	}
	if from == "" {
		from = username
	}
	return &SMTPNotifier{
		addr:      fmt.Sprintf("%s:%d", host, port),
		username:  username,
		password:  password,
		from:      from,
		recipient: recipient,
		logger:    logger,
	}, nil
}

// Notify sends a reminder email for the given subscription
func (n *SMTPNotifier) Notify(ctx context.Context, rem *core.Reminder, sub *core.Subscription) error {
	message := n.buildMessage(rem, sub)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	// Connect to the server with a timeout
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	// Set a deadline for the whole exchange
	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if n.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", n.username, n.password)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := c.Mail(n.from, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(n.recipient, nil); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err = wc.Write([]byte(message)); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		n.logger.Warn("QUIT command failed", zap.Error(err))
		// The message was already accepted at this point
	}

	n.logger.Info("Sent reminder email",
		zap.String("reminder_id", rem.ID),
		zap.String("subscription", sub.Name),
		zap.String("recipient", n.recipient))
	return nil
}

func (n *SMTPNotifier) buildMessage(rem *core.Reminder, sub *core.Subscription) string {
	var subject string
	switch rem.Type {
	case core.ReminderTrialExpiration:
		subject = fmt.Sprintf("Trial for %s expires soon", sub.Name)
	case core.ReminderPriceChange:
		subject = fmt.Sprintf("Price change for %s", sub.Name)
	default:
		subject = fmt.Sprintf("%s renews on %s", sub.Name, sub.NextBillingDate.Format("Jan 2, 2006"))
	}

	body := rem.Message
	if body == "" {
		body = fmt.Sprintf("Your %s subscription (%.2f %s, billed %s) renews on %s.",
			sub.Name, sub.Price, sub.Currency, sub.BillingCycle,
			sub.NextBillingDate.Format("January 2, 2006"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", n.recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}
