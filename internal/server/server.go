// Package server exposes the portfolio over HTTP, serves the desktop over
// SSH and into a browser terminal, and runs them together until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"charm.land/log/v2"
	"github.com/charmbracelet/ssh"
	"golang.org/x/sync/errgroup"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/contact"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/gallery"
	"github.com/deskfolio/deskfolio/internal/tts"
	"github.com/deskfolio/deskfolio/internal/watch"
	"github.com/deskfolio/deskfolio/pkg/deskfolio"
)

// Server holds the shared state behind every listener. Each SSH or web
// session gets its own desktop over the same library, gallery and contact
// service.
type Server struct {
	cfg     *config.UserConfig
	library *content.Library
	gallery *gallery.Provider
	contact *contact.Service
	tts     *tts.Client
	layouts deskfolio.LayoutStore
	logger  *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGallery sets the image provider.
func WithGallery(p *gallery.Provider) Option {
	return func(s *Server) { s.gallery = p }
}

// WithContact sets the contact service.
func WithContact(c *contact.Service) Option {
	return func(s *Server) { s.contact = c }
}

// WithTTS enables the speech proxy.
func WithTTS(c *tts.Client) Option {
	return func(s *Server) { s.tts = c }
}

// WithLayouts keeps SSH window layouts per user.
func WithLayouts(store deskfolio.LayoutStore) Option {
	return func(s *Server) { s.layouts = store }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a server for cfg over lib. Without a contact service every
// submission reports a configuration error.
func New(cfg *config.UserConfig, lib *content.Library, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		library: lib,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gallery == nil {
		s.gallery = gallery.NewStaticProvider(nil)
	}
	if s.contact == nil {
		s.contact = contact.NewService(contact.WithLogger(s.logger))
	}
	return s
}

// RunOptions selects the listeners started by Run.
type RunOptions struct {
	HTTP  bool
	SSH   bool
	Web   bool
	Watch bool // reload content and gallery on change
}

// Run serves until ctx is cancelled or a listener fails, then shuts the
// others down within config.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, opts RunOptions) error {
	g, ctx := errgroup.WithContext(ctx)

	if opts.HTTP {
		srv := &http.Server{
			Addr:              s.cfg.Server.HTTPAddr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			s.logger.Info("http server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return shutdown("http", srv.Shutdown)
		})
	}

	if opts.SSH {
		srv, err := s.NewSSHServer()
		if err != nil {
			return err
		}
		g.Go(func() error {
			s.logger.Info("ssh server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				return fmt.Errorf("ssh server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return shutdown("ssh", srv.Shutdown)
		})
	}

	if opts.Web {
		g.Go(func() error {
			return s.ServeWeb(ctx)
		})
	}

	if opts.Watch {
		w, err := s.newWatcher()
		if err != nil {
			s.logger.Warn("hot reload disabled", "err", err)
		} else {
			g.Go(func() error {
				return w.Run(ctx)
			})
		}
	}

	return g.Wait()
}

func shutdown(name string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s shutdown: %w", name, err)
	}
	return nil
}

// newWatcher watches the content root, the image root and the gallery
// index, skipping those that do not exist yet.
func (s *Server) newWatcher() (*watch.Watcher, error) {
	var paths []string
	for _, p := range []string{s.library.Root(), s.gallery.Root(), s.cfg.Site.GalleryIndex} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			s.logger.Debug("not watching", "path", p, "err", err)
			continue
		}
		paths = append(paths, p)
	}
	return watch.New(s.reload, paths,
		watch.WithDebounce(config.WatchDebounce),
		watch.WithLogger(s.logger),
	)
}

func (s *Server) reload() {
	if err := s.library.Reload(); err != nil {
		s.logger.Error("failed to reload content", "err", err)
	}
	s.gallery.Reload()
	s.logger.Info("content reloaded", "version", s.library.Version(), "images", s.gallery.Len())
}
