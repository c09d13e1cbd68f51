package deskfolio

import (
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/deskfolio/deskfolio/internal/config"
)

type fakePTY struct{ w, h int }

func (p fakePTY) Width() int  { return p.w }
func (p fakePTY) Height() int { return p.h }

func testConfig(t *testing.T) *config.UserConfig {
	t.Helper()
	root := t.TempDir()
	pages := filepath.Join(root, "content", "pages")
	if err := os.MkdirAll(pages, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pages, "home.md"), []byte("---\ntitle: Home\n---\nhello\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Site.ContentDir = filepath.Join(root, "content")
	cfg.Site.GalleryDir = filepath.Join(root, "img")
	cfg.Site.GalleryIndex = filepath.Join(root, "gallery.json")
	return cfg
}

func restoreGlobals(t *testing.T) {
	t.Helper()
	ascii, border, clock, stats, site := config.UseASCIIOnly, config.BorderStyle, config.HideClock, config.HideStats, config.SiteName
	t.Cleanup(func() {
		config.UseASCIIOnly = ascii
		config.BorderStyle = border
		config.HideClock = clock
		config.HideStats = stats
		config.SiteName = site
	})
}

func TestNewAppliesOptions(t *testing.T) {
	restoreGlobals(t)
	cfg := testConfig(t)
	cfg.Site.Name = "Jane Doe"

	model, err := New(
		WithUserConfig(cfg),
		WithSize(100, 30),
		WithBorderStyle("double"),
		WithHideStats(true),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if model.Width != 100 || model.Height != 30 {
		t.Errorf("size = %dx%d, want 100x30", model.Width, model.Height)
	}
	if config.BorderStyle != "double" {
		t.Errorf("BorderStyle = %q, want double", config.BorderStyle)
	}
	if !config.HideStats {
		t.Error("HideStats not applied")
	}
	if config.SiteName != "Jane Doe" {
		t.Errorf("SiteName = %q, want Jane Doe", config.SiteName)
	}
	if model.Store().Len() != 0 {
		t.Errorf("windows open before the layout is restored: %d", model.Store().Len())
	}
}

func TestNewForPTYUsesSessionSize(t *testing.T) {
	restoreGlobals(t)
	model, err := NewForPTY(fakePTY{w: 80, h: 24}, WithUserConfig(testConfig(t)), WithSize(1, 1))
	if err != nil {
		t.Fatalf("NewForPTY: %v", err)
	}
	if model.Width != 80 || model.Height != 24 {
		t.Errorf("size = %dx%d, want 80x24", model.Width, model.Height)
	}
}

func TestNewFailsOnUnreadableContent(t *testing.T) {
	restoreGlobals(t)
	cfg := testConfig(t)
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.Site.ContentDir = file

	if _, err := New(WithUserConfig(cfg)); err == nil {
		t.Fatal("expected an error for a content dir that is a file")
	}
}

func TestFilterMouseMotion(t *testing.T) {
	restoreGlobals(t)
	model, err := New(WithUserConfig(testConfig(t)), WithSize(80, 24))
	if err != nil {
		t.Fatal(err)
	}

	motion := tea.MouseMotionMsg{X: 10, Y: 10}
	if got := FilterMouseMotion(model, motion); got != nil {
		t.Errorf("idle motion passed the filter: %v", got)
	}

	click := tea.MouseClickMsg{X: 10, Y: 10, Button: tea.MouseLeft}
	if got := FilterMouseMotion(model, click); got == nil {
		t.Error("click was filtered")
	}

	var other tea.Model
	if got := FilterMouseMotion(other, motion); got == nil {
		t.Error("motion for a foreign model was filtered")
	}
}
