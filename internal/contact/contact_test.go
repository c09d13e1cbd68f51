package contact

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskfolio/deskfolio/internal/config"
)

type fakeMailer struct {
	sent []Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, e Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

type memInbox struct {
	records []Record
}

func (i *memInbox) Record(_ context.Context, r Record) error {
	i.records = append(i.records, r)
	return nil
}

func valid() Submission {
	return Submission{Name: "Ada", Email: "ada@example.com", Message: "Hello\nthere"}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Submission)
		wantMsg string
	}{
		{"valid", func(*Submission) {}, ""},
		{"missing name", func(s *Submission) { s.Name = "" }, MsgMissingFields},
		{"missing email", func(s *Submission) { s.Email = "" }, MsgMissingFields},
		{"missing message", func(s *Submission) { s.Message = "" }, MsgMissingFields},
		{"bad email", func(s *Submission) { s.Email = "ada@example" }, MsgInvalidEmail},
		{"email with space", func(s *Submission) { s.Email = "a da@example.com" }, MsgInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Equal(t, tt.wantMsg, PublicMessage(err))
		})
	}
}

func TestFromForm(t *testing.T) {
	s := FromForm(url.Values{
		"name":       {"Ada"},
		"email":      {"ada@example.com"},
		"message":    {"hi"},
		"newsletter": {"on"},
	})
	assert.True(t, s.Newsletter)
	assert.False(t, s.IsSpam())

	s = FromForm(url.Values{"newsletter": {"yes"}, "fax": {"555"}})
	assert.False(t, s.Newsletter)
	assert.True(t, s.IsSpam())
}

func TestCompose(t *testing.T) {
	s := valid()
	s.Name = "<b>Ada</b>"
	s.Newsletter = true

	e := Compose(s, "site@example.com", "me@example.com", "example.com")

	assert.Equal(t, "<b>Ada</b>", e.FromName)
	assert.Equal(t, "site@example.com", e.From)
	assert.Equal(t, "ada@example.com", e.ReplyTo)
	assert.Equal(t, "Contact Form Submission from <b>Ada</b> via example.com", e.Subject)
	assert.Contains(t, e.Text, "Message:\nHello\nthere\nNewsletter: Yes")
	assert.Contains(t, e.HTML, "&lt;b&gt;Ada&lt;/b&gt;")
	assert.Contains(t, e.HTML, "Hello<br>there")
	assert.NotContains(t, e.HTML, "<b>Ada")
}

func TestSubmitSends(t *testing.T) {
	mailer := &fakeMailer{}
	inbox := &memInbox{}
	svc := NewService(WithMailer(mailer, "site@example.com", "me@example.com"), WithInbox(inbox), WithDomain("example.com"))

	require.NoError(t, svc.Submit(context.Background(), valid()))
	require.Len(t, mailer.sent, 1)
	require.Len(t, inbox.records, 1)
	assert.Equal(t, StatusSent, inbox.records[0].Status)
	assert.NotEmpty(t, inbox.records[0].ID)
}

func TestSubmitHoneypot(t *testing.T) {
	mailer := &fakeMailer{}
	inbox := &memInbox{}
	svc := NewService(WithMailer(mailer, "a@b.c", "d@e.f"), WithInbox(inbox))

	s := Submission{Fax: "bot"}
	require.NoError(t, svc.Submit(context.Background(), s))
	assert.Empty(t, mailer.sent)
	assert.Empty(t, inbox.records)
}

func TestSubmitInvalidIsNotArchived(t *testing.T) {
	inbox := &memInbox{}
	svc := NewService(WithMailer(&fakeMailer{}, "a@b.c", "d@e.f"), WithInbox(inbox))

	err := svc.Submit(context.Background(), Submission{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, inbox.records)
}

func TestSubmitNotConfigured(t *testing.T) {
	inbox := &memInbox{}
	svc := NewService(WithInbox(inbox))

	err := svc.Submit(context.Background(), valid())
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, MsgNotConfigured, PublicMessage(err))
	require.Len(t, inbox.records, 1)
	assert.Equal(t, StatusHeld, inbox.records[0].Status)
}

func TestSubmitDeliveryFailure(t *testing.T) {
	inbox := &memInbox{}
	svc := NewService(WithMailer(&fakeMailer{err: errors.New("connection refused")}, "a@b.c", "d@e.f"), WithInbox(inbox))

	err := svc.Submit(context.Background(), valid())
	require.ErrorIs(t, err, ErrDelivery)
	assert.Equal(t, MsgDelivery, PublicMessage(err))
	require.Len(t, inbox.records, 1)
	assert.Equal(t, StatusFailed, inbox.records[0].Status)
	assert.True(t, strings.Contains(inbox.records[0].Error, "connection refused"))
}

func TestNewSMTPMailerRequiresConfig(t *testing.T) {
	_, err := NewSMTPMailer(config.MailConfig{Host: "smtp.example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	m, err := NewSMTPMailer(config.MailConfig{
		Host: "smtp.example.com", Username: "u", Password: "p", To: "me@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
