package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
[site]
name = "Jane Doe"

[keybindings.desktop]
quit = ["Q"]
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	def := DefaultConfig()
	if cfg.Site.Name != "Jane Doe" {
		t.Errorf("site name = %q", cfg.Site.Name)
	}
	if cfg.Site.HomeRoute != def.Site.HomeRoute {
		t.Errorf("home route = %q, want %q", cfg.Site.HomeRoute, def.Site.HomeRoute)
	}
	if cfg.Mail.Port != DefaultSMTPPort {
		t.Errorf("mail port = %d", cfg.Mail.Port)
	}
	if got := cfg.Keybindings.Desktop["quit"]; len(got) != 1 || got[0] != "Q" {
		t.Errorf("quit binding = %v, want [Q]", got)
	}
	if _, ok := cfg.Keybindings.Desktop["next_window"]; !ok {
		t.Error("missing default next_window binding")
	}
	if len(cfg.Keybindings.Alert) == 0 {
		t.Error("alert bindings not filled")
	}
}

func TestLoadFromEnvSecrets(t *testing.T) {
	t.Setenv(EnvSMTPPassword, "hunter2")
	t.Setenv(EnvTTSAPIKey, "key")
	t.Setenv(EnvTTSVoiceID, "voice")

	cfg, err := LoadFrom(writeConfig(t, "[mail]\npassword = \"file\"\n"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Mail.Password != "hunter2" {
		t.Errorf("password = %q, want env value", cfg.Mail.Password)
	}
	if !cfg.TTS.Configured() {
		t.Error("tts should be configured from env")
	}
}

func TestLoadFromValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
		{"bad home route", "[site]\nhome_route = \"home\"\n"},
		{"bad mail address", "[mail]\nto = \"not an address\"\n"},
		{"bad port", "[mail]\nport = 70000\n"},
		{"bad toml", "[site\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateConfigWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Appearance.BorderStyle = "wavy"
	cfg.Keybindings.Desktop["open_home"] = []string{"tab"}

	v := ValidateConfig(cfg)
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %+v", v.Errors)
	}
	if cfg.Appearance.BorderStyle != "rounded" {
		t.Errorf("border style not reset: %q", cfg.Appearance.BorderStyle)
	}

	var duplicate bool
	for _, w := range v.Warnings {
		if strings.Contains(w.Message, `"tab" already bound`) {
			duplicate = true
		}
	}
	if !duplicate {
		t.Errorf("expected duplicate key warning, got %+v", v.Warnings)
	}
}

func TestWriteDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if _, err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# deskfolio configuration") {
		t.Error("missing header")
	}
	if _, err := LoadFrom(path); err != nil {
		t.Errorf("default config does not load: %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Cleanup(func() {
		UseASCIIOnly, BorderStyle, HideClock, HideStats, SiteName = false, "rounded", false, false, "deskfolio"
	})

	cfg := DefaultConfig()
	cfg.Appearance.BorderStyle = "double"
	cfg.Appearance.Theme = "nord"
	cfg.Appearance.HideStats = true
	cfg.Site.Name = "Jane"

	theme := ApplyOverrides(Overrides{BorderStyle: "thick", HTTPAddr: ":9000", Debug: true}, cfg)
	if BorderStyle != "thick" {
		t.Errorf("border = %q, want flag value", BorderStyle)
	}
	if theme != "nord" {
		t.Errorf("theme = %q, want config value", theme)
	}
	if !HideStats || HideClock {
		t.Errorf("hide stats/clock = %v/%v", HideStats, HideClock)
	}
	if SiteName != "Jane" {
		t.Errorf("site name = %q", SiteName)
	}
	if cfg.Server.HTTPAddr != ":9000" || cfg.Logging.Level != "debug" {
		t.Errorf("config not overridden: %+v %+v", cfg.Server, cfg.Logging)
	}

	if got := ApplyOverrides(Overrides{ThemeName: "dracula"}, cfg); got != "dracula" {
		t.Errorf("theme = %q, want flag value", got)
	}
	ApplyOverrides(Overrides{}, cfg)
	if BorderStyle != "double" {
		t.Errorf("border = %q, want config value", BorderStyle)
	}
}

func TestKeybindRegistry(t *testing.T) {
	r := NewKeybindRegistry(DefaultConfig().Keybindings)

	tests := []struct {
		section, key, want string
	}{
		{"desktop", "tab", "next_window"},
		{"desktop", "CTRL+W", "close_window"},
		{"desktop", "x", "close_window"},
		{"desktop", "X", ""},
		{"window", "j", "scroll_down"},
		{"alert", "enter", "confirm"},
		{"alert", "tab", ""},
		{"missing", "q", ""},
	}
	for _, tt := range tests {
		if got := r.Action(tt.section, tt.key); got != tt.want {
			t.Errorf("Action(%s, %s) = %q, want %q", tt.section, tt.key, got, tt.want)
		}
	}

	sections := GetKeybindings(r)
	if len(sections) != 3 || sections[0].Title != "Desktop" || len(sections[0].Bindings) == 0 {
		t.Errorf("unexpected help sections: %+v", sections)
	}
}
