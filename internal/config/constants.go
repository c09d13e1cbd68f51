// Package config provides configuration constants, keybinding management, and user settings.
package config

import (
	"time"

	"charm.land/lipgloss/v2"
)

// =============================================================================
// Window Defaults
// =============================================================================

const (
	// DefaultWindowWidth is the width of a window whose route has no size hint
	DefaultWindowWidth = 60

	// DefaultWindowHeight is the height of a window whose route has no size hint
	DefaultWindowHeight = 18

	// MinWindowWidth is the minimum width a window can be resized to
	MinWindowWidth = 20

	// MinWindowHeight is the minimum height a window can be resized to
	MinWindowHeight = 5

	// CascadeStep is the offset between windows opened without a position
	CascadeStep = 3

	// AlertWidth is the width of modal alert windows
	AlertWidth = 40

	// AlertHeight is the height of modal alert windows
	AlertHeight = 7
)

// =============================================================================
// Timeouts and Intervals
// =============================================================================

const (
	// StatsUpdateInterval is the interval between CPU/RAM samples for the dock
	StatsUpdateInterval = 2 * time.Second

	// ClockUpdateInterval is how often the dock clock is refreshed
	ClockUpdateInterval = time.Second

	// LayoutSaveDelay debounces layout persistence after window changes
	LayoutSaveDelay = 500 * time.Millisecond

	// WatchDebounce coalesces bursts of filesystem events
	WatchDebounce = 250 * time.Millisecond

	// ShutdownTimeout bounds graceful server shutdown
	ShutdownTimeout = 10 * time.Second

	// NotificationDuration is how long status notifications stay visible
	NotificationDuration = 2 * time.Second
)

// =============================================================================
// FPS
// =============================================================================

const (
	// NormalFPS is the refresh rate of the desktop
	NormalFPS = 60

	// InteractionFPS is the refresh rate while dragging or resizing
	InteractionFPS = 30
)

// =============================================================================
// UI Layout Dimensions
// =============================================================================

const (
	// AddressBarHeight is the height of the address bar at the top
	AddressBarHeight = 1

	// DockHeight is the height of the dock at the bottom
	DockHeight = 1

	// TitleBarHeight is the height of a window's title row
	TitleBarHeight = 1
)

// =============================================================================
// Network Defaults
// =============================================================================

const (
	// DefaultHTTPAddr is the listen address of the HTTP API
	DefaultHTTPAddr = ":8080"

	// DefaultSSHHost is the SSH listen host
	DefaultSSHHost = "localhost"

	// DefaultSSHPort is the SSH listen port
	DefaultSSHPort = "2222"

	// DefaultWebHost is the listen host of the browser terminal
	DefaultWebHost = "localhost"

	// DefaultWebPort is the listen port of the browser terminal
	DefaultWebPort = "7681"

	// DefaultSMTPPort is the SMTP submission port
	DefaultSMTPPort = 587

	// DefaultTTSBaseURL is the ElevenLabs API base
	DefaultTTSBaseURL = "https://api.elevenlabs.io"

	// DefaultTTSModel is the speech model used by the TTS proxy
	DefaultTTSModel = "eleven_flash_v2_5"

	// DefaultTTSFormat is the audio format requested from the TTS API
	DefaultTTSFormat = "pcm_16000"

	// DefaultGalleryPageSize is the page size of /api/gallery
	DefaultGalleryPageSize = 12

	// MaxGalleryPageSize caps the page size a client can request
	MaxGalleryPageSize = 100
)

// =============================================================================
// Runtime Configuration
// =============================================================================

// UseASCIIOnly controls whether to use ASCII fallback characters
// Set via --ascii-only command-line flag
var UseASCIIOnly = false

// BorderStyle controls which border style to use for windows
// Set via --border-style flag or appearance.border_style config
var BorderStyle = "rounded"

// HideClock controls whether the dock clock is hidden
var HideClock = false

// HideStats controls whether the dock CPU/RAM indicator is hidden
var HideStats = false

// SiteName is the suffix of every document title
var SiteName = "deskfolio"

// =============================================================================
// Window Decoration Characters
// =============================================================================

const (
	// WindowButtonClose is the close button in the title bar
	WindowButtonClose = " ⤫ "
	// WindowButtonCloseASCII is the ASCII fallback of the close button
	WindowButtonCloseASCII = " x "
	// WindowButtonMinimize sends a window to the dock
	WindowButtonMinimize = " — "
	// WindowButtonMinimizeASCII is the ASCII fallback of the minimize button
	WindowButtonMinimizeASCII = " _ "
	// ResizeHandle marks the bottom-right resize corner
	ResizeHandle = "◢"
	// ResizeHandleASCII is the ASCII fallback of the resize corner
	ResizeHandleASCII = "/"
	// DockSeparator separates dock items
	DockSeparator = " │ "
	// DockSeparatorASCII is the ASCII fallback of the dock separator
	DockSeparatorASCII = " | "
)

// GetBorderForStyle returns the lipgloss Border for the current style
func GetBorderForStyle() lipgloss.Border {
	if UseASCIIOnly || BorderStyle == "ascii" {
		return lipgloss.ASCIIBorder()
	}
	switch BorderStyle {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	case "block":
		return lipgloss.BlockBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// GetWindowButtonClose returns the close button for the current charset
func GetWindowButtonClose() string {
	if UseASCIIOnly {
		return WindowButtonCloseASCII
	}
	return WindowButtonClose
}

// GetWindowButtonMinimize returns the minimize button for the current charset
func GetWindowButtonMinimize() string {
	if UseASCIIOnly {
		return WindowButtonMinimizeASCII
	}
	return WindowButtonMinimize
}

// GetResizeHandle returns the resize corner for the current charset
func GetResizeHandle() string {
	if UseASCIIOnly {
		return ResizeHandleASCII
	}
	return ResizeHandle
}

// GetDockSeparator returns the dock separator for the current charset
func GetDockSeparator() string {
	if UseASCIIOnly {
		return DockSeparatorASCII
	}
	return DockSeparator
}
