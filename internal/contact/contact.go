// Package contact handles contact form submissions: validation, the
// honeypot, mail delivery and the inbox archive.
package contact

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
)

// Messages shown to the visitor.
const (
	MsgMissingFields = "Please fill out all fields."
	MsgInvalidEmail  = "Please provide a valid email address."
	MsgNotConfigured = "Server configuration error. Could not send email."
	MsgDelivery      = "Failed to send message. Please try again later."
)

var (
	// ErrInvalid marks submissions rejected by validation.
	ErrInvalid = errors.New("invalid submission")
	// ErrNotConfigured is returned when no mailer is configured.
	ErrNotConfigured = errors.New("mail not configured")
	// ErrDelivery is returned when the mailer fails.
	ErrDelivery = errors.New("mail delivery failed")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Submission is one contact form post.
type Submission struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Newsletter bool   `json:"newsletter"`
	// Fax is a hidden field only bots fill in.
	Fax string `json:"-"`
}

// FromForm reads a submission from form values.
func FromForm(v url.Values) Submission {
	return Submission{
		Name:       v.Get("name"),
		Email:      v.Get("email"),
		Message:    v.Get("message"),
		Newsletter: v.Get("newsletter") == "on",
		Fax:        v.Get("fax"),
	}
}

// IsSpam reports whether the honeypot was filled.
func (s Submission) IsSpam() bool {
	return s.Fax != ""
}

// Validate checks required fields and the email format.
func (s Submission) Validate() error {
	if s.Name == "" || s.Email == "" || s.Message == "" {
		return fmt.Errorf("%w: %s", ErrInvalid, MsgMissingFields)
	}
	if !ValidEmail(s.Email) {
		return fmt.Errorf("%w: %s", ErrInvalid, MsgInvalidEmail)
	}
	return nil
}

// PublicMessage maps a Submit error to the text shown to the visitor.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalid):
		if strings.Contains(err.Error(), MsgInvalidEmail) {
			return MsgInvalidEmail
		}
		return MsgMissingFields
	case errors.Is(err, ErrNotConfigured):
		return MsgNotConfigured
	default:
		return MsgDelivery
	}
}

// Email is a composed message ready for a Mailer.
type Email struct {
	FromName string
	From     string
	ReplyTo  string
	To       string
	Subject  string
	Text     string
	HTML     string
}

// Compose builds the notification mail for s. The sender's name is the
// display name, the address is the site's own, and replies go to the sender.
func Compose(s Submission, from, to, domain string) Email {
	yesNo := "No"
	if s.Newsletter {
		yesNo = "Yes"
	}

	text := fmt.Sprintf("Name: %s\nEmail: %s\nMessage:\n%s\nNewsletter: %s", s.Name, s.Email, s.Message, yesNo)

	name := html.EscapeString(s.Name)
	addr := html.EscapeString(s.Email)
	body := strings.ReplaceAll(html.EscapeString(s.Message), "\n", "<br>")
	htmlBody := fmt.Sprintf(`<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> <a href="mailto:%s">%s</a></p>
<p><strong>Message:</strong></p>
<p>%s</p>
<p><strong>Newsletter:</strong> %s</p>`, name, addr, addr, body, yesNo)

	return Email{
		FromName: s.Name,
		From:     from,
		ReplyTo:  s.Email,
		To:       to,
		Subject:  fmt.Sprintf("Contact Form Submission from %s via %s", s.Name, domain),
		Text:     text,
		HTML:     htmlBody,
	}
}
