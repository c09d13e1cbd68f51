// Package deskfolio provides the portfolio desktop as a Bubble Tea model
// that can be embedded in other programs or served over SSH and the web.
//
// The desktop shows the site's pages, portfolio posts, image gallery and
// contact form as overlapping windows that can be focused, dragged,
// resized, minimized to the dock and closed.
//
// # Basic Usage
//
// Create a desktop with default options:
//
//	model, err := deskfolio.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	p := tea.NewProgram(model, deskfolio.ProgramOptions()...)
//	if _, err := p.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// # Custom Configuration
//
//	model, err := deskfolio.New(
//		deskfolio.WithTheme("dracula"),
//		deskfolio.WithBorderStyle("double"),
//		deskfolio.WithRoute("/portfolio"),
//	)
//
// # Sharing Content Between Sessions
//
// Servers load the content once and hand it to every session:
//
//	lib, _ := content.NewLibrary(dir, logger)
//	model, err := deskfolio.NewForPTY(pty,
//		deskfolio.WithLibrary(lib),
//		deskfolio.WithProfile(user),
//	)
//
// # Using with sip (Web Terminal)
//
//	server := sip.NewServer(sip.DefaultConfig())
//	server.Serve(ctx, func(sess sip.Session) (tea.Model, []tea.ProgramOption) {
//		model, _ := deskfolio.NewForPTY(sess.Pty())
//		return model, nil
//	})
package deskfolio

import (
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/contact"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/desktop"
	"github.com/deskfolio/deskfolio/internal/gallery"
	"github.com/deskfolio/deskfolio/internal/theme"
)

// Model is the desktop model that implements tea.Model.
type Model = desktop.Desktop

// LayoutStore persists window layouts per profile.
type LayoutStore = desktop.LayoutStore

// Options configures a desktop.
type Options struct {
	// Theme is the color theme name (e.g., "dracula", "nord", "tokyonight").
	// Leave empty to keep the current theme.
	Theme string

	// ASCIIOnly uses ASCII characters for decorations and markdown.
	ASCIIOnly bool

	// BorderStyle sets the window border style.
	// Valid values: "rounded", "normal", "thick", "double", "hidden", "block", "ascii"
	BorderStyle string

	// HideClock hides the dock clock.
	HideClock bool

	// HideStats hides the dock CPU/RAM indicator.
	HideStats bool

	// Width is the initial width (set automatically if 0).
	Width int

	// Height is the initial height (set automatically if 0).
	Height int

	// Profile names the saved layout to restore and update.
	Profile string

	// Route is opened on start, on top of the restored layout.
	Route string

	// UserConfig is a custom user configuration. If nil, the config file
	// is loaded, falling back to defaults.
	UserConfig *config.UserConfig

	// Library is the content to show. If nil it is loaded from
	// site.content_dir.
	Library *content.Library

	// Gallery backs gallery windows. If nil it is loaded from
	// site.gallery_dir.
	Gallery *gallery.Provider

	// Contact receives contact form submissions. If nil the form reports
	// that mail is not configured.
	Contact *contact.Service

	// Layouts persists window layouts. If nil layouts are not kept.
	Layouts LayoutStore

	// Logger receives diagnostics. If nil nothing is logged.
	Logger *log.Logger

	// Bell is the terminal output the drag bell is written to when
	// appearance.sound is on. If nil the desktop stays silent.
	Bell io.Writer
}

// Option is a functional option for configuring a desktop.
type Option func(*Options)

// WithTheme sets the color theme.
func WithTheme(name string) Option {
	return func(o *Options) {
		o.Theme = name
	}
}

// WithASCIIOnly enables ASCII-only mode.
func WithASCIIOnly(enabled bool) Option {
	return func(o *Options) {
		o.ASCIIOnly = enabled
	}
}

// WithBorderStyle sets the window border style.
func WithBorderStyle(style string) Option {
	return func(o *Options) {
		o.BorderStyle = style
	}
}

// WithHideClock hides the dock clock.
func WithHideClock(hide bool) Option {
	return func(o *Options) {
		o.HideClock = hide
	}
}

// WithHideStats hides the dock CPU/RAM indicator.
func WithHideStats(hide bool) Option {
	return func(o *Options) {
		o.HideStats = hide
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithProfile sets the layout profile.
func WithProfile(profile string) Option {
	return func(o *Options) {
		o.Profile = profile
	}
}

// WithRoute opens route on start.
func WithRoute(route string) Option {
	return func(o *Options) {
		o.Route = route
	}
}

// WithUserConfig sets a custom user configuration.
func WithUserConfig(cfg *config.UserConfig) Option {
	return func(o *Options) {
		o.UserConfig = cfg
	}
}

// WithLibrary shares an already loaded content library.
func WithLibrary(lib *content.Library) Option {
	return func(o *Options) {
		o.Library = lib
	}
}

// WithGallery shares an image provider.
func WithGallery(p *gallery.Provider) Option {
	return func(o *Options) {
		o.Gallery = p
	}
}

// WithContact sets the contact service.
func WithContact(s *contact.Service) Option {
	return func(o *Options) {
		o.Contact = s
	}
}

// WithLayouts sets the layout store.
func WithLayouts(store LayoutStore) Option {
	return func(o *Options) {
		o.Layouts = store
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithBell sets the terminal output for the drag bell.
func WithBell(w io.Writer) Option {
	return func(o *Options) {
		o.Bell = w
	}
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Profile: "local",
	}
}

// New creates a desktop with the given options.
// This is the main entry point for using deskfolio as a library.
func New(opts ...Option) (*Model, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return newModel(options)
}

// PTY is the terminal size of an SSH or web session.
type PTY interface {
	Width() int
	Height() int
}

// NewForPTY creates a desktop sized for a PTY session.
func NewForPTY(pty PTY, opts ...Option) (*Model, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	options.Width = pty.Width()
	options.Height = pty.Height()

	return newModel(options)
}

func newModel(options Options) (*Model, error) {
	// Apply global config options
	if options.ASCIIOnly {
		config.UseASCIIOnly = true
	}
	if options.BorderStyle != "" {
		config.BorderStyle = options.BorderStyle
	}
	if options.HideClock {
		config.HideClock = true
	}
	if options.HideStats {
		config.HideStats = true
	}

	logger := options.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// Load or create user config
	userConfig := options.UserConfig
	if userConfig == nil {
		var err error
		userConfig, err = config.LoadUserConfig()
		if err != nil {
			logger.Warn("using default config", "err", err)
			userConfig = config.DefaultConfig()
		}
	}
	if name := userConfig.Site.Name; name != "" && name != config.SiteName {
		config.SiteName = name
	}

	// Initialize theme
	if options.Theme != "" {
		if err := theme.Initialize(options.Theme); err != nil {
			logger.Warn("unknown theme", "theme", options.Theme, "err", err)
		}
	}

	lib := options.Library
	if lib == nil {
		var err error
		lib, err = content.NewLibrary(userConfig.Site.ContentDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
	}
	gal := options.Gallery
	if gal == nil {
		gal = gallery.NewProvider(userConfig.Site.GalleryDir, userConfig.Site.GalleryIndex, logger)
	}

	style := content.StyleDark
	if config.UseASCIIOnly {
		style = content.StyleASCII
	}

	desktopOpts := []desktop.Option{
		desktop.WithGallery(gal),
		desktop.WithKeybindings(config.NewKeybindRegistry(userConfig.Keybindings)),
		desktop.WithHomeRoute(userConfig.Site.HomeRoute),
		desktop.WithInitialRoute(options.Route),
		desktop.WithRenderer(content.NewRenderer(style)),
		desktop.WithLogger(logger),
	}
	if options.Contact != nil {
		desktopOpts = append(desktopOpts, desktop.WithContact(options.Contact))
	}
	if options.Layouts != nil {
		desktopOpts = append(desktopOpts, desktop.WithLayouts(options.Layouts, options.Profile))
	}
	if userConfig.Appearance.Sound && options.Bell != nil {
		desktopOpts = append(desktopOpts, desktop.WithSound(desktop.Bell{W: options.Bell}))
	}

	model := desktop.New(lib, desktopOpts...)
	model.Width = options.Width
	model.Height = options.Height
	return model, nil
}

// ProgramOptions returns recommended tea.ProgramOption values for running
// the desktop:
//
//	model, _ := deskfolio.New()
//	p := tea.NewProgram(model, deskfolio.ProgramOptions()...)
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithFPS(config.NormalFPS),
		tea.WithFilter(FilterMouseMotion),
	}
}

// FilterMouseMotion is a tea.WithFilter function that drops mouse motion
// nobody listens to. Motion passes only while a window press, drag or
// resize is in progress.
func FilterMouseMotion(model tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseMotionMsg); !ok {
		return msg
	}

	d, ok := model.(*Model)
	if !ok {
		return msg
	}
	if d.WantsMotion() {
		return msg
	}
	return nil
}

// Config re-exports the config package for customization.
// This allows users to access configuration types without importing internal packages.
var Config = struct {
	// LoadUserConfig loads the user's configuration file.
	LoadUserConfig func() (*config.UserConfig, error)
	// DefaultConfig returns the default configuration.
	DefaultConfig func() *config.UserConfig
	// GetConfigPath returns the path to the configuration file.
	GetConfigPath func() (string, error)
}{
	LoadUserConfig: config.LoadUserConfig,
	DefaultConfig:  config.DefaultConfig,
	GetConfigPath:  config.GetConfigPath,
}
