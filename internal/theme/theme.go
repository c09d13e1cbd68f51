// Package theme provides the color roles of the desktop, backed by
// bubbletint themes.
package theme

import (
	"fmt"
	"image/color"

	"charm.land/lipgloss/v2"
	"charm.land/log/v2"
	tint "github.com/lrstanley/bubbletint/v2"
)

var enabled bool

// Initialize sets up the theme registry with the specified theme name.
// Call this once at application startup.
// If themeName is empty, theming will be disabled and the fallback palette is used.
func Initialize(themeName string) error {
	if themeName == "" {
		enabled = false
		return nil
	}

	enabled = true
	tint.NewDefaultRegistry()

	if themesDir, err := GetThemesDir(); err == nil {
		if _, err := LoadCustomThemes(themesDir); err != nil {
			log.Warn("error loading custom themes", "err", err)
		}
	}

	if !tint.SetTintID(themeName) {
		tint.SetTintID("default")
		return fmt.Errorf("theme %q not found, using default", themeName)
	}
	return nil
}

// Disable turns theming off.
func Disable() {
	enabled = false
}

// IsEnabled returns true if theming is enabled
func IsEnabled() bool {
	return enabled
}

// Current returns the currently active theme.
// Returns nil if theming is disabled.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

// IDs lists the registered theme ids, custom themes included.
func IDs() []string {
	tint.NewDefaultRegistry()
	if themesDir, err := GetThemesDir(); err == nil {
		_, _ = LoadCustomThemes(themesDir)
	}
	return tint.TintIDs()
}

func pick(fallback string, from func(t *tint.Tint) color.Color) color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color(fallback)
	}
	return from(t)
}

// DesktopBg is the wallpaper color.
func DesktopBg() color.Color {
	return pick("#1e1e2e", func(t *tint.Tint) color.Color { return t.Bg })
}

// DesktopFg is the color of wallpaper text.
func DesktopFg() color.Color {
	return pick("#585b70", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// WindowFg is the color of window body text.
func WindowFg() color.Color {
	return pick("#cdd6f4", func(t *tint.Tint) color.Color { return t.Fg })
}

// BorderActive returns the border color of the focused window.
func BorderActive() color.Color {
	return pick("#AFFFFF", func(t *tint.Tint) color.Color { return t.BrightCyan })
}

// BorderInactive returns the border color of unfocused windows.
func BorderInactive() color.Color {
	return pick("#6c7086", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// BorderAlert returns the border color of alert windows.
func BorderAlert() color.Color {
	return pick("#f38ba8", func(t *tint.Tint) color.Color { return t.BrightRed })
}

// TitleFg returns the color of the window title text.
func TitleFg() color.Color {
	return pick("#000000", func(t *tint.Tint) color.Color { return t.Black })
}

// AddressBarBg returns the background of the address bar.
func AddressBarBg() color.Color {
	return pick("#313244", func(t *tint.Tint) color.Color { return t.Black })
}

// AddressBarFg returns the color of the address bar text.
func AddressBarFg() color.Color {
	return pick("#bac2de", func(t *tint.Tint) color.Color { return t.White })
}

// AddressBarRoute returns the color of the current route.
func AddressBarRoute() color.Color {
	return pick("#89b4fa", func(t *tint.Tint) color.Color { return t.BrightBlue })
}

// DockBg returns the dock background.
func DockBg() color.Color {
	return pick("#181825", func(t *tint.Tint) color.Color { return t.Black })
}

// DockFg returns the dock text color.
func DockFg() color.Color {
	return pick("#a6adc8", func(t *tint.Tint) color.Color { return t.White })
}

// DockHighlight returns the color of dock items whose window is open.
func DockHighlight() color.Color {
	return pick("#a6e3a1", func(t *tint.Tint) color.Color { return t.BrightGreen })
}

// DockDimmed returns the color of secondary dock text.
func DockDimmed() color.Color {
	return pick("#6c7086", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// Accent returns the color of selected list items and links.
func Accent() color.Color {
	return pick("#f9e2af", func(t *tint.Tint) color.Color { return t.Yellow })
}

// Muted returns the color of metadata text.
func Muted() color.Color {
	return pick("#7f849c", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// NotificationError returns the color of error notifications.
func NotificationError() color.Color {
	return pick("#ff0000", func(t *tint.Tint) color.Color { return t.Red })
}

// NotificationInfo returns the color of info notifications.
func NotificationInfo() color.Color {
	return pick("#00cdcd", func(t *tint.Tint) color.Color { return t.Cyan })
}

// ColorToString converts a color to a hex string for lipgloss styles.
func ColorToString(c color.Color) string {
	if c == nil {
		return ""
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
