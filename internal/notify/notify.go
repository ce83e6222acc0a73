package notify

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers rendered messages. The delivery channel (SMTP, SMS, an
// external provider) is a black box behind this interface.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render substitutes {{name}} placeholders in tmpl with bindings. Unknown
// placeholders are left as-is.
func Render(tmpl string, bindings map[string]string) string {
	out := tmpl
	for k, v := range bindings {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// LogSender writes messages to the log instead of delivering them. Default
// in development and when no channel is configured.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info("outbound notification",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// RetryingSender wraps a Sender with bounded exponential backoff. Delivery
// failures are usually transient; after the last retry the error is logged
// and returned, and callers decide whether it can be ignored.
type RetryingSender struct {
	inner  Sender
	logger *zap.Logger
	base   time.Duration
}

func NewRetrying(inner Sender, logger *zap.Logger) *RetryingSender {
	return &RetryingSender{inner: inner, logger: logger, base: 500 * time.Millisecond}
}

func (s *RetryingSender) Send(ctx context.Context, msg Message) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(s.base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.inner.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return err
	}
	return nil
}
