package desktop

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/contact"
	"github.com/deskfolio/deskfolio/internal/theme"
)

const (
	contactTimeout = 30 * time.Second
	msgSent        = "Thanks! Your message has been sent."
)

type formField int

const (
	fieldName formField = iota
	fieldEmail
	fieldMessage
	fieldNewsletter
	fieldSubmit
	fieldCount
)

// messageHeight is the number of rows of the message box.
const messageHeight = 4

// contactForm is the state of a contact window.
type contactForm struct {
	name       textinput.Model
	email      textinput.Model
	message    textarea.Model
	newsletter bool

	focus     formField
	sending   bool
	status    string
	statusErr bool
}

type contactResultMsg struct {
	id  string
	err error
}

func newContactForm() *contactForm {
	f := &contactForm{}
	f.reset()
	return f
}

func newFieldInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	return ti
}

// editing reports whether key presses go to a text field.
func (f *contactForm) editing() bool {
	return !f.sending && f.focus <= fieldMessage
}

// update hands msg to the focused text field. The cursor does not blink, so
// the field's commands are dropped.
func (f *contactForm) update(msg tea.Msg) {
	switch f.focus {
	case fieldName:
		f.name, _ = f.name.Update(msg)
	case fieldEmail:
		f.email, _ = f.email.Update(msg)
	case fieldMessage:
		f.message, _ = f.message.Update(msg)
	}
}

func (f *contactForm) setFocus(field formField) {
	f.focus = field
	f.name.Blur()
	f.email.Blur()
	f.message.Blur()
	switch field {
	case fieldName:
		_ = f.name.Focus()
	case fieldEmail:
		_ = f.email.Focus()
	case fieldMessage:
		_ = f.message.Focus()
	}
}

func (f *contactForm) move(delta int) {
	f.setFocus(formField((int(f.focus) + delta + int(fieldCount)) % int(fieldCount)))
}

// fieldAt maps a row of lines output to the field drawn there.
func (f *contactForm) fieldAt(row int) (formField, bool) {
	bounds := []struct {
		field formField
		rows  int
	}{
		{fieldName, 2},
		{fieldEmail, 2},
		{fieldMessage, 1 + messageHeight},
		{fieldNewsletter, 1},
		{fieldSubmit, 1},
	}
	for _, b := range bounds {
		if row < b.rows {
			return b.field, row >= 0
		}
		row -= b.rows
	}
	return 0, false
}

func (f *contactForm) submission() contact.Submission {
	return contact.Submission{
		Name:       strings.TrimSpace(f.name.Value()),
		Email:      strings.TrimSpace(f.email.Value()),
		Message:    strings.TrimSpace(f.message.Value()),
		Newsletter: f.newsletter,
	}
}

// reset empties the form and focuses the name field.
func (f *contactForm) reset() {
	f.name = newFieldInput("Your name")
	f.email = newFieldInput("you@example.com")

	f.message = textarea.New()
	f.message.Prompt = ""
	f.message.Placeholder = "Say hello"
	f.message.CharLimit = 4096
	f.message.ShowLineNumbers = false
	f.message.SetHeight(messageHeight)
	f.message.KeyMap.InsertNewline.SetKeys("ctrl+j", "shift+enter")

	f.newsletter = false
	f.sending = false
	f.setStatus("", false)
	f.setFocus(fieldName)
}

func (f *contactForm) setStatus(msg string, isErr bool) {
	f.status = msg
	f.statusErr = isErr
}

// lines renders the form to width cells.
func (f *contactForm) lines(width int) []string {
	label := lipgloss.NewStyle().Foreground(theme.Muted())
	focused := lipgloss.NewStyle().Foreground(theme.Accent()).Bold(true)
	inner := max(width-2, 1)

	f.name.SetWidth(inner)
	f.email.SetWidth(inner)
	f.message.SetWidth(inner)

	heading := func(name string, which formField) string {
		if f.focus == which {
			return focused.Render("> " + name)
		}
		return label.Render("  " + name)
	}
	// Views are cut to the rows fieldAt expects.
	box := func(view string, rows int) []string {
		parts := strings.Split(view, "\n")
		out := make([]string, rows)
		for i := range out {
			if i < len(parts) {
				out[i] = "  " + ansi.Truncate(parts[i], inner, "…")
			}
		}
		return out
	}

	var out []string
	out = append(out, heading("Name", fieldName))
	out = append(out, box(f.name.View(), 1)...)
	out = append(out, heading("Email", fieldEmail))
	out = append(out, box(f.email.View(), 1)...)
	out = append(out, heading("Message", fieldMessage))
	out = append(out, box(f.message.View(), messageHeight)...)

	check := "[ ]"
	if f.newsletter {
		check = "[x]"
	}
	out = append(out, heading(check+" Subscribe to the newsletter", fieldNewsletter))

	send := "[ Send ]"
	if f.sending {
		send = "[ Sending... ]"
	}
	out = append(out, heading(send, fieldSubmit))

	if f.status != "" {
		color := theme.NotificationInfo()
		if f.statusErr {
			color = theme.NotificationError()
		}
		out = append(out, "", lipgloss.NewStyle().Foreground(color).Render(f.status))
	}
	return out
}

// activateForm handles enter on a contact window.
func (d *Desktop) activateForm(v *windowView) tea.Cmd {
	f := v.form
	switch f.focus {
	case fieldNewsletter:
		f.newsletter = !f.newsletter
		return nil
	case fieldSubmit:
		return d.submitContact(v)
	default:
		f.move(1)
		return nil
	}
}

// submitContact validates locally and hands the submission to the contact
// service off the event loop.
func (d *Desktop) submitContact(v *windowView) tea.Cmd {
	f := v.form
	if f.sending {
		return nil
	}
	sub := f.submission()
	if err := sub.Validate(); err != nil {
		f.setStatus(contact.PublicMessage(err), true)
		return nil
	}
	if d.contact == nil {
		f.setStatus(contact.MsgNotConfigured, true)
		return nil
	}

	f.sending = true
	f.setStatus("", false)
	svc, id := d.contact, v.id
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), contactTimeout)
		defer cancel()
		return contactResultMsg{id: id, err: svc.Submit(ctx, sub)}
	}
}

func (d *Desktop) handleContactResult(msg contactResultMsg) {
	if msg.err != nil {
		d.ShowNotification(contact.PublicMessage(msg.err), "error", config.NotificationDuration)
	} else {
		d.ShowNotification(msgSent, "info", config.NotificationDuration)
	}

	v, ok := d.views[msg.id]
	if !ok || v.form == nil {
		return
	}
	v.form.sending = false
	if msg.err != nil {
		v.form.setStatus(contact.PublicMessage(msg.err), true)
		return
	}
	v.form.reset()
	v.form.setStatus(msgSent, false)
}
