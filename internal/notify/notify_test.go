package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRender(t *testing.T) {
	out := Render("Hello {{name}}, see you on {{date}} at {{time}}.", map[string]string{
		"name": "Jean",
		"date": "2026-09-14",
		"time": "10:30",
	})
	assert.Equal(t, "Hello Jean, see you on 2026-09-14 at 10:30.", out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Hi {{name}}, code {{code}}", map[string]string{"name": "Ada"})
	assert.Equal(t, "Hi Ada, code {{code}}", out)
}

type flakySender struct {
	calls    int
	failures int
}

func (s *flakySender) Send(_ context.Context, _ Message) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func TestRetryingSenderRecovers(t *testing.T) {
	inner := &flakySender{failures: 2}
	s := &RetryingSender{inner: inner, logger: zap.NewNop(), base: time.Millisecond}

	require.NoError(t, s.Send(context.Background(), Message{To: "a@b.c"}))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingSenderGivesUp(t *testing.T) {
	inner := &flakySender{failures: 100}
	s := &RetryingSender{inner: inner, logger: zap.NewNop(), base: time.Millisecond}

	require.Error(t, s.Send(context.Background(), Message{To: "a@b.c"}))
	assert.Equal(t, 4, inner.calls, "initial attempt plus three retries")
}

func TestLogSender(t *testing.T) {
	s := &LogSender{Logger: zap.NewNop()}
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@b.c", Subject: "hi"}))
}
