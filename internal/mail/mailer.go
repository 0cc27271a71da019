package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWorkers = 4
	defaultQueue   = 64
	sendTimeout    = 15 * time.Second
)

type job struct {
	to      string
	subject string
	body    string
}

// Mailer dispatches messages on a bounded worker pool. Delivery is
// fire-and-forget: a failed or dropped send is logged once and never
// propagated to the request that triggered it.
type Mailer struct {
	sender Sender
	log    *slog.Logger
	jobs   chan job
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func NewMailer(sender Sender, log *slog.Logger) *Mailer {
	m := &Mailer{
		sender: sender,
		log:    log.With("component", "mailer"),
		jobs:   make(chan job, defaultQueue),
	}
	for i := 0; i < defaultWorkers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

func (m *Mailer) worker() {
	defer m.wg.Done()
	for j := range m.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := m.sender.Send(ctx, j.to, j.subject, j.body)
		cancel()
		if err != nil {
			m.log.Error("mail send failed", "to", j.to, "subject", j.subject, "error", err)
			continue
		}
		m.log.Info("mail sent", "to", j.to, "subject", j.subject)
	}
}

// enqueue never blocks the caller: with a full queue the message is
// dropped with a log line, matching the no-retry delivery contract.
func (m *Mailer) enqueue(to, subject, body string) {
	if m == nil {
		return
	}
	if m.sender == nil {
		m.log.Debug("mail disabled, dropping message", "to", to, "subject", subject)
		return
	}
	select {
	case m.jobs <- job{to: to, subject: subject, body: body}:
	default:
		m.log.Error("mail queue full, dropping message", "to", to, "subject", subject)
	}
}

func (m *Mailer) SendWelcome(to, username string) {
	subject, body := welcomeMessage(username)
	m.enqueue(to, subject, body)
}

func (m *Mailer) SendOrderConfirmation(to, username string, orderID uint, invoiceNumber string, total float64) {
	subject, body := orderConfirmationMessage(username, orderID, invoiceNumber, total)
	m.enqueue(to, subject, body)
}

func (m *Mailer) SendAccountStatus(to, username string, blocked bool) {
	subject, body := accountStatusMessage(username, blocked)
	m.enqueue(to, subject, body)
}

func (m *Mailer) SendManagerInvite(to, username string, oneTimePassword string) {
	subject, body := managerInviteMessage(username, to, oneTimePassword)
	m.enqueue(to, subject, body)
}

// Close stops accepting new messages and waits for in-flight sends.
func (m *Mailer) Close() {
	if m == nil {
		return
	}
	m.closeOnce.Do(func() {
		close(m.jobs)
		m.wg.Wait()
	})
}
