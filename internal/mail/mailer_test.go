package mail

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []job
	err  error
}

func (s *recordingSender) Send(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, job{to: to, subject: subject, body: body})
	return nil
}

func (s *recordingSender) messages() []job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]job(nil), s.sent...)
}

func TestMailerDeliversQueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender, slog.Default())

	m.SendWelcome("alice@example.com", "alice")
	m.SendOrderConfirmation("alice@example.com", "alice", 7, "INV-20260828-abc123", 1799)
	m.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 2)

	byTo := map[string]int{}
	for _, msg := range msgs {
		byTo[msg.to]++
	}
	require.Equal(t, 2, byTo["alice@example.com"])

	var confirmation job
	for _, msg := range msgs {
		if strings.Contains(msg.subject, "Order") {
			confirmation = msg
		}
	}
	require.Contains(t, confirmation.body, "INV-20260828-abc123")
	require.Contains(t, confirmation.body, "alice")
}

func TestMailerSendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	m := NewMailer(sender, slog.Default())

	// must not panic or block the caller
	m.SendAccountStatus("bob@example.com", "bob", true)
	m.Close()
	require.Empty(t, sender.messages())
}

func TestMailerNilSenderDropsQuietly(t *testing.T) {
	m := NewMailer(nil, slog.Default())
	m.SendWelcome("alice@example.com", "alice")
	m.Close()
}

func TestNilMailerIsSafe(t *testing.T) {
	var m *Mailer
	m.SendWelcome("alice@example.com", "alice")
	m.SendManagerInvite("mgr@example.com", "mgr", "secret")
	m.Close()
}

func TestCloseIsIdempotent(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender, slog.Default())
	m.SendWelcome("alice@example.com", "alice")
	m.Close()
	m.Close()
	require.Len(t, sender.messages(), 1)
}

func TestManagerInviteVariants(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender, slog.Default())

	m.SendManagerInvite("new@example.com", "new", "s3cr3t")
	m.SendManagerInvite("existing@example.com", "existing", "")
	m.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	for _, msg := range msgs {
		switch msg.to {
		case "new@example.com":
			require.Contains(t, msg.body, "s3cr3t")
		case "existing@example.com":
			require.NotContains(t, msg.body, "Password:")
		}
	}
}
