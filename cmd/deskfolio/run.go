package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"
	"github.com/charmbracelet/colorprofile"
	"golang.org/x/term"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/contact"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/desktop"
	"github.com/deskfolio/deskfolio/internal/gallery"
	"github.com/deskfolio/deskfolio/internal/logging"
	"github.com/deskfolio/deskfolio/internal/persistence"
	"github.com/deskfolio/deskfolio/internal/server"
	"github.com/deskfolio/deskfolio/internal/theme"
	"github.com/deskfolio/deskfolio/internal/tts"
	"github.com/deskfolio/deskfolio/internal/watch"
	"github.com/deskfolio/deskfolio/pkg/deskfolio"
)

type serveFlags struct {
	httpAddr   string
	sshHost    string
	sshPort    string
	sshKeyPath string
	web        bool
	noHTTP     bool
	noSSH      bool
	noWatch    bool
}

// loadConfig reads the user config, applies the global flags and loads the
// chosen theme.
func loadConfig(overrides config.Overrides) *config.UserConfig {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		userConfig = config.DefaultConfig()
	}

	overrides.ASCIIOnly = asciiOnly
	overrides.BorderStyle = borderStyle
	overrides.HideClock = hideClock
	overrides.HideStats = hideStats
	overrides.ThemeName = themeName
	overrides.ContentDir = contentDir
	overrides.Debug = debugMode

	if name := config.ApplyOverrides(overrides, userConfig); name != "" {
		if err := theme.Initialize(name); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if res := config.ValidateConfig(userConfig); res.HasWarnings() {
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w.Message)
		}
	}
	return userConfig
}

// backend is the state shared by the local desktop and the servers.
type backend struct {
	library *content.Library
	gallery *gallery.Provider
	contact *contact.Service
	layouts *persistence.LayoutRepo
	db      *sql.DB
}

func (b *backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// openBackend loads the content and gallery, opens the database and wires
// the contact form to SMTP and the inbox. A database that cannot be opened
// disables layouts and the inbox.
func openBackend(ctx context.Context, cfg *config.UserConfig, logger *log.Logger) (*backend, error) {
	lib, err := content.NewLibrary(cfg.Site.ContentDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	b := &backend{
		library: lib,
		gallery: gallery.NewProvider(cfg.Site.GalleryDir, cfg.Site.GalleryIndex, logger),
	}

	contactOpts := []contact.Option{
		contact.WithDomain(cfg.Site.Domain),
		contact.WithLogger(logger),
	}
	if cfg.Mail.Configured() {
		mailer, err := contact.NewSMTPMailer(cfg.Mail)
		if err != nil {
			return nil, err
		}
		contactOpts = append(contactOpts, contact.WithMailer(mailer, cfg.Mail.From, cfg.Mail.To))
	} else {
		logger.Warn("mail not configured, contact form will report an error")
	}

	db, err := persistence.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("storage disabled", "path", cfg.Storage.DatabasePath, "err", err)
	} else {
		b.db = db
		b.layouts = persistence.NewLayoutRepo(db)
		contactOpts = append(contactOpts, contact.WithInbox(persistence.NewMessageRepo(db)))
	}

	b.contact = contact.NewService(contactOpts...)
	return b, nil
}

func runLocal(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("deskfolio needs an interactive terminal; use 'deskfolio serve' to run headless")
	}

	userConfig := loadConfig(config.Overrides{})

	switch colorprofile.Detect(os.Stdout, os.Environ()) {
	case colorprofile.Ascii, colorprofile.NoTTY:
		theme.Disable()
	}

	// The desktop owns the terminal, so logs go to a file.
	logFile, err := logging.OpenFile(userConfig.Logging.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger, err := logging.New(logFile, userConfig.Logging)
	if err != nil {
		return err
	}
	if debugMode {
		configPath, _ := config.GetConfigPath()
		logger.Debug("starting", "config", configPath, "log", logFile.Name())
	}

	be, err := openBackend(ctx, userConfig, logger)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	profile := userConfig.Storage.Profile
	if profileName != "" {
		profile = profileName
	}
	opts := []deskfolio.Option{
		deskfolio.WithUserConfig(userConfig),
		deskfolio.WithLibrary(be.library),
		deskfolio.WithGallery(be.gallery),
		deskfolio.WithContact(be.contact),
		deskfolio.WithProfile(profile),
		deskfolio.WithRoute(initialRoute),
		deskfolio.WithLogger(logger),
		deskfolio.WithBell(os.Stdout),
	}
	if be.layouts != nil {
		opts = append(opts, deskfolio.WithLayouts(be.layouts))
	}
	model, err := deskfolio.New(opts...)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, append(deskfolio.ProgramOptions(), tea.WithoutSignalHandler())...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		p.Send(tea.QuitMsg{})
	}()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go watchLocal(watchCtx, be, userConfig, logger, func() {
		p.Send(desktop.ContentReloadedMsg{})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// watchLocal reloads the content and gallery on change and tells the
// desktop about it.
func watchLocal(ctx context.Context, be *backend, cfg *config.UserConfig, logger *log.Logger, notify func()) {
	var paths []string
	for _, p := range []string{be.library.Root(), be.gallery.Root(), cfg.Site.GalleryIndex} {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	w, err := watch.New(func() {
		if err := be.library.Reload(); err != nil {
			logger.Error("failed to reload content", "err", err)
			return
		}
		be.gallery.Reload()
		notify()
	}, paths, watch.WithDebounce(config.WatchDebounce), watch.WithLogger(logger))
	if err != nil {
		logger.Warn("hot reload disabled", "err", err)
		return
	}
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("watcher stopped", "err", err)
	}
}

func runServe(ctx context.Context, flags serveFlags) error {
	userConfig := loadConfig(config.Overrides{
		HTTPAddr: flags.httpAddr,
		SSHPort:  flags.sshPort,
	})
	if flags.sshHost != "" {
		userConfig.Server.SSHHost = flags.sshHost
	}
	if flags.sshKeyPath != "" {
		userConfig.Server.HostKeyPath = flags.sshKeyPath
	}

	logger, err := logging.New(os.Stderr, userConfig.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, userConfig, logger)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	opts := []server.Option{
		server.WithGallery(be.gallery),
		server.WithContact(be.contact),
		server.WithLogger(logger),
	}
	if be.layouts != nil {
		opts = append(opts, server.WithLayouts(be.layouts))
	}
	speech, err := tts.NewClient(userConfig.TTS)
	switch {
	case err == nil:
		opts = append(opts, server.WithTTS(speech))
	case errors.Is(err, tts.ErrNotConfigured):
		logger.Warn("text to speech not configured")
	default:
		return err
	}

	run := server.RunOptions{
		HTTP:  !flags.noHTTP,
		SSH:   !flags.noSSH,
		Web:   flags.web || userConfig.Server.Web,
		Watch: !flags.noWatch,
	}
	if !run.HTTP && !run.SSH && !run.Web {
		return errors.New("nothing to serve: every listener is disabled")
	}

	logger.Info("starting", "version", version, "posts", len(be.library.Posts()), "images", be.gallery.Len())
	if err := server.New(userConfig, be.library, opts...).Run(ctx, run); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("stopped")
	return nil
}
