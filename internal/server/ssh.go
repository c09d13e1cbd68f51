package server

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/wish/v2"
	"charm.land/wish/v2/activeterm"
	bm "charm.land/wish/v2/bubbletea"
	"charm.land/wish/v2/logging"
	"github.com/charmbracelet/ssh"
	"github.com/google/uuid"

	"github.com/deskfolio/deskfolio/pkg/deskfolio"
)

// anonymousProfile is the layout profile of users without a usable name.
const anonymousProfile = "anonymous"

var profileUnsafe = regexp.MustCompile(`[^a-z0-9._-]+`)

// ProfileFor maps an SSH user name to a layout profile.
func ProfileFor(user string) string {
	p := profileUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(user)), "")
	if p == "" {
		return anonymousProfile
	}
	return "ssh:" + p
}

// NewSSHServer builds the SSH listener. The host key is created on first
// start.
func (s *Server) NewSSHServer() (*ssh.Server, error) {
	keyPath := s.cfg.Server.HostKeyPath
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create host key directory: %w", err)
	}

	srv, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(s.cfg.Server.SSHHost, s.cfg.Server.SSHPort)),
		wish.WithHostKeyPath(keyPath),
		wish.WithMiddleware(
			bm.Middleware(s.sshHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(s.logger),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	return srv, nil
}

// windowSize adapts an SSH window to deskfolio.PTY.
type windowSize struct{ w, h int }

func (p windowSize) Width() int  { return p.w }
func (p windowSize) Height() int { return p.h }

func (s *Server) sshHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	profile := ProfileFor(sess.User())
	logger := s.logger.With("session", uuid.NewString(), "profile", profile)

	opts := []deskfolio.Option{
		deskfolio.WithProfile(profile),
		deskfolio.WithLogger(logger),
		deskfolio.WithBell(sess),
	}
	if s.layouts != nil && profile != anonymousProfile {
		opts = append(opts, deskfolio.WithLayouts(s.layouts))
	}
	if route := strings.TrimSpace(strings.Join(sess.Command(), " ")); strings.HasPrefix(route, "/") {
		opts = append(opts, deskfolio.WithRoute(route))
	}

	model, err := s.newDesktop(windowSize{pty.Window.Width, pty.Window.Height}, opts...)
	if err != nil {
		logger.Error("failed to start desktop", "err", err)
		wish.Fatalln(sess, "could not start the desktop")
		return nil, nil
	}
	logger.Info("desktop session started", "user", sess.User(), "term", pty.Term)
	return model, deskfolio.ProgramOptions()
}

// newDesktop builds a session desktop over the shared state.
func (s *Server) newDesktop(pty deskfolio.PTY, opts ...deskfolio.Option) (*deskfolio.Model, error) {
	base := []deskfolio.Option{
		deskfolio.WithUserConfig(s.cfg),
		deskfolio.WithLibrary(s.library),
		deskfolio.WithGallery(s.gallery),
		deskfolio.WithContact(s.contact),
	}
	return deskfolio.NewForPTY(pty, append(base, opts...)...)
}
