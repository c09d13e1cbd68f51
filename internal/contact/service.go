package contact

import (
	"context"
	"fmt"
	"io"
	"time"

	"charm.land/log/v2"
	"github.com/google/uuid"
)

// Delivery states recorded in the inbox.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
	// StatusHeld means no mailer was configured; the message is only archived.
	StatusHeld = "held"
)

// Record is an archived submission.
type Record struct {
	ID         string
	Name       string
	Email      string
	Message    string
	Newsletter bool
	Status     string
	Error      string
	CreatedAt  time.Time
}

// Inbox archives submissions.
type Inbox interface {
	Record(ctx context.Context, r Record) error
}

// Service validates submissions, mails them and archives them.
type Service struct {
	mailer Mailer
	inbox  Inbox
	from   string
	to     string
	domain string
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMailer sets the delivery backend. Without one every valid
// submission fails with ErrNotConfigured.
func WithMailer(m Mailer, from, to string) Option {
	return func(s *Service) {
		s.mailer = m
		s.from = from
		s.to = to
	}
}

// WithInbox archives every valid submission.
func WithInbox(i Inbox) Option {
	return func(s *Service) { s.inbox = i }
}

// WithDomain sets the site domain used in subjects.
func WithDomain(d string) Option {
	return func(s *Service) { s.domain = d }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a contact service.
func NewService(opts ...Option) *Service {
	s := &Service{
		domain: "localhost",
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit processes one submission. Honeypot hits succeed without sending.
// Errors wrap ErrInvalid, ErrNotConfigured or ErrDelivery.
func (s *Service) Submit(ctx context.Context, sub Submission) error {
	if sub.IsSpam() {
		s.logger.Info("dropping honeypot submission")
		return nil
	}
	if err := sub.Validate(); err != nil {
		return err
	}

	rec := Record{
		ID:         uuid.NewString(),
		Name:       sub.Name,
		Email:      sub.Email,
		Message:    sub.Message,
		Newsletter: sub.Newsletter,
		CreatedAt:  s.now().UTC(),
	}

	var result error
	switch {
	case s.mailer == nil || s.from == "" || s.to == "":
		s.logger.Error("contact mail settings missing")
		rec.Status = StatusHeld
		result = ErrNotConfigured
	default:
		err := s.mailer.Send(ctx, Compose(sub, s.from, s.to, s.domain))
		if err != nil {
			s.logger.Error("failed to send contact mail", "id", rec.ID, "err", err)
			rec.Status = StatusFailed
			rec.Error = err.Error()
			result = fmt.Errorf("%w: %w", ErrDelivery, err)
		} else {
			rec.Status = StatusSent
			s.logger.Info("contact mail sent", "id", rec.ID, "newsletter", sub.Newsletter)
		}
	}

	s.archive(ctx, rec)
	return result
}

func (s *Service) archive(ctx context.Context, rec Record) {
	if s.inbox == nil {
		return
	}
	if err := s.inbox.Record(ctx, rec); err != nil {
		s.logger.Warn("failed to archive contact message", "id", rec.ID, "err", err)
	}
}
