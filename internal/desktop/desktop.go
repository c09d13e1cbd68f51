// Package desktop is the terminal rendition of the portfolio desktop: an
// address bar, a wallpaper with overlapping windows and a dock, driven by
// bubbletea and drawn with lipgloss layers.
package desktop

import (
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/contact"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/drag"
	"github.com/deskfolio/deskfolio/internal/gallery"
	"github.com/deskfolio/deskfolio/internal/wm"
)

// TickerMsg refreshes the clock and expires notifications.
type TickerMsg time.Time

// ContentReloadedMsg reports that the library or the gallery changed on
// disk.
type ContentReloadedMsg struct{}

// Desktop is the bubbletea model of one desktop session. Every SSH or web
// visitor gets its own Desktop; the content library, gallery and contact
// service behind it are shared.
type Desktop struct {
	store    *wm.Store
	scope    *drag.Dispatcher
	address  *addressBar
	resolver *content.Resolver
	library  *content.Library
	renderer *content.Renderer
	gallery  *gallery.Provider
	contact  *contact.Service
	layouts  LayoutStore
	keys     *config.KeybindRegistry
	sound    Sound
	logger   *log.Logger

	profile      string
	homeRoute    string
	initialRoute string

	views map[string]*windowView

	Width  int
	Height int

	interacting bool
	ready       bool

	stats         stats
	now           time.Time
	Notifications []Notification

	layoutDirty bool
	layoutGen   int
}

// Notification is a short status message shown under the address bar.
type Notification struct {
	Message   string
	Type      string // "info", "error"
	StartTime time.Time
	Duration  time.Duration
}

// Option configures a Desktop.
type Option func(*Desktop)

// WithGallery sets the image provider of gallery windows.
func WithGallery(p *gallery.Provider) Option {
	return func(d *Desktop) { d.gallery = p }
}

// WithContact sets the service contact windows submit to.
func WithContact(s *contact.Service) Option {
	return func(d *Desktop) { d.contact = s }
}

// WithLayouts enables layout restore and save under profile.
func WithLayouts(store LayoutStore, profile string) Option {
	return func(d *Desktop) {
		d.layouts = store
		d.profile = profile
	}
}

// WithKeybindings replaces the default key map.
func WithKeybindings(r *config.KeybindRegistry) Option {
	return func(d *Desktop) {
		if r != nil {
			d.keys = r
		}
	}
}

// WithHomeRoute sets the route opened on an empty desktop.
func WithHomeRoute(route string) Option {
	return func(d *Desktop) {
		if route != "" {
			d.homeRoute = route
		}
	}
}

// WithInitialRoute opens route on start, on top of the restored layout.
func WithInitialRoute(route string) Option {
	return func(d *Desktop) { d.initialRoute = route }
}

// WithRenderer sets the markdown renderer.
func WithRenderer(r *content.Renderer) Option {
	return func(d *Desktop) {
		if r != nil {
			d.renderer = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Desktop) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a desktop over lib.
func New(lib *content.Library, opts ...Option) *Desktop {
	d := &Desktop{
		scope:     drag.NewDispatcher(),
		address:   &addressBar{},
		library:   lib,
		resolver:  content.NewResolver(lib),
		renderer:  content.NewRenderer(content.StyleDark),
		keys:      config.NewKeybindRegistry(config.DefaultConfig().Keybindings),
		logger:    log.New(io.Discard),
		homeRoute: "/home",
		views:     make(map[string]*windowView),
		now:       time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.store = wm.New(
		wm.WithSiteName(config.SiteName),
		wm.WithNavigator(d.address),
		wm.WithLogger(d.logger),
	)
	d.store.Subscribe(d.markLayoutDirty)
	return d
}

// Store exposes the window state of the desktop.
func (d *Desktop) Store() *wm.Store {
	return d.store
}

// Location returns the route shown in the address bar.
func (d *Desktop) Location() string {
	return d.address.Location()
}

// Title returns the document title.
func (d *Desktop) Title() string {
	return d.address.title
}

// Interacting reports whether a window is being dragged or resized.
func (d *Desktop) Interacting() bool {
	return d.interacting
}

// WantsMotion reports whether pointer motion has a consumer: a gesture in
// progress or a press that may turn into one.
func (d *Desktop) WantsMotion() bool {
	return d.interacting || d.scope.Listeners(drag.PointerMove) > 0
}

// Init starts the clock, the stats sampler and the layout restore.
func (d *Desktop) Init() tea.Cmd {
	cmds := []tea.Cmd{
		TickCmd(),
		d.loadLayoutCmd(),
	}
	if !config.HideStats {
		cmds = append(cmds, sampleStatsCmd())
	}
	return tea.Batch(cmds...)
}

// TickCmd schedules the next clock tick.
func TickCmd() tea.Cmd {
	return tea.Tick(config.ClockUpdateInterval, func(t time.Time) tea.Msg {
		return TickerMsg(t)
	})
}

// Update handles one message.
func (d *Desktop) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.Width = msg.Width
		d.Height = msg.Height
		d.syncViews()
		d.scope.Dispatch(drag.Resize, drag.Event{Button: drag.ButtonNone})

	case TickerMsg:
		d.now = time.Time(msg)
		d.CleanupNotifications()
		cmds = append(cmds, TickCmd())

	case statsMsg:
		d.stats = msg.stats
		cmds = append(cmds, nextStatsCmd())

	case layoutLoadedMsg:
		d.restoreLayout(msg)

	case saveLayoutMsg:
		if msg.gen == d.layoutGen {
			cmds = append(cmds, d.saveLayoutCmd())
		}

	case layoutSavedMsg:
		if msg.err != nil {
			d.logger.Warn("failed to save layout", "profile", d.profile, "err", msg.err)
		}

	case contactResultMsg:
		d.handleContactResult(msg)

	case ContentReloadedMsg:
		d.contentReloaded()

	case tea.KeyPressMsg:
		cmds = append(cmds, d.handleKey(msg))

	case tea.MouseClickMsg:
		cmds = append(cmds, d.handleMouseClick(msg))

	case tea.MouseMotionMsg:
		d.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		d.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		d.handleMouseWheel(msg)
	}

	if cmd := d.scheduleLayoutSave(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return d, tea.Batch(cmds...)
}

// contentReloaded keeps list selections and gallery pages in range after
// a reload.
func (d *Desktop) contentReloaded() {
	posts := len(d.library.Posts())
	for _, v := range d.views {
		switch v.kind() {
		case content.KindPortfolio:
			v.selected = max(min(v.selected, posts-1), 0)
		case content.KindGallery:
			e, ok := v.entry()
			if !ok {
				continue
			}
			view, _ := e.Component.(content.View)
			v.page = max(min(v.page, d.pageCount(view.Key)-1), 0)
		}
	}
	d.ShowNotification("Content updated", "info", config.NotificationDuration)
}

// ShowNotification displays a temporary notification.
func (d *Desktop) ShowNotification(message, notifType string, duration time.Duration) {
	d.Notifications = append(d.Notifications, Notification{
		Message:   message,
		Type:      notifType,
		StartTime: d.now,
		Duration:  duration,
	})

	switch notifType {
	case "error":
		d.logger.Warn(message)
	default:
		d.logger.Info(message)
	}
}

// CleanupNotifications removes expired notifications.
func (d *Desktop) CleanupNotifications() {
	var active []Notification
	for _, n := range d.Notifications {
		if d.now.Sub(n.StartTime) < n.Duration {
			active = append(active, n)
		}
	}
	d.Notifications = active
}
