package server

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/sip"
	"github.com/google/uuid"

	"github.com/deskfolio/deskfolio/pkg/deskfolio"
)

// webProfile names browser sessions. Their layouts are not kept: visitors
// are anonymous.
const webProfile = "web"

// ServeWeb serves the desktop into browser tabs until ctx is done.
func (s *Server) ServeWeb(ctx context.Context) error {
	cfg := sip.DefaultConfig()
	cfg.Host = s.cfg.Server.WebHost
	cfg.Port = s.cfg.Server.WebPort

	s.logger.Info("web terminal listening", "host", cfg.Host, "port", cfg.Port)
	if err := sip.NewServer(cfg).Serve(ctx, s.webHandler); err != nil && ctx.Err() == nil {
		return fmt.Errorf("web terminal: %w", err)
	}
	return nil
}

func (s *Server) webHandler(sess sip.Session) (tea.Model, []tea.ProgramOption) {
	logger := s.logger.With("session", uuid.NewString(), "profile", webProfile)
	pty := sess.Pty()
	model, err := s.newDesktop(windowSize{pty.Width, pty.Height},
		deskfolio.WithProfile(webProfile),
		deskfolio.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to start desktop", "err", err)
		return nil, nil
	}
	logger.Info("desktop session started")
	return model, deskfolio.ProgramOptions()
}
