package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

const configRelPath = "deskfolio/config.toml"

// Environment variables that override secrets in the config file.
const (
	EnvSMTPPassword = "DESKFOLIO_SMTP_PASSWORD"
	EnvTTSAPIKey    = "ELEVENLABS_API_KEY"
	EnvTTSVoiceID   = "ELEVENLABS_VOICE_ID"
)

// UserConfig represents the user's custom configuration
type UserConfig struct {
	Site        SiteConfig        `toml:"site"`
	Server      ServerConfig      `toml:"server"`
	Mail        MailConfig        `toml:"mail"`
	TTS         TTSConfig         `toml:"tts"`
	Appearance  AppearanceConfig  `toml:"appearance"`
	Logging     LoggingConfig     `toml:"logging"`
	Storage     StorageConfig     `toml:"storage"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// SiteConfig describes the portfolio itself
type SiteConfig struct {
	Name         string `toml:"name"`          // Suffix of every window title
	Domain       string `toml:"domain"`        // Used in contact mail subjects
	ContentDir   string `toml:"content_dir"`   // Holds pages/ and portfolio/ markdown
	GalleryDir   string `toml:"gallery_dir"`   // Image root served under /img
	GalleryIndex string `toml:"gallery_index"` // Generated gallery.json
	HomeRoute    string `toml:"home_route"`    // Route opened on an empty desktop
}

// ServerConfig holds listen addresses
type ServerConfig struct {
	HTTPAddr    string `toml:"http_addr"`
	SSHHost     string `toml:"ssh_host"`
	SSHPort     string `toml:"ssh_port"`
	HostKeyPath string `toml:"host_key_path"`
	Web         bool   `toml:"web"` // Also serve the desktop in a browser tab
	WebHost     string `toml:"web_host"`
	WebPort     string `toml:"web_port"`
}

// MailConfig holds SMTP settings for the contact form
type MailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// TTSConfig holds text-to-speech proxy settings
type TTSConfig struct {
	APIKey  string `toml:"api_key"`
	VoiceID string `toml:"voice_id"`
	Model   string `toml:"model"`
	Format  string `toml:"format"`
	BaseURL string `toml:"base_url"`
}

// AppearanceConfig holds appearance-related settings
type AppearanceConfig struct {
	Theme       string `toml:"theme"`        // Color theme name (e.g., dracula, nord, my-custom-theme)
	BorderStyle string `toml:"border_style"` // rounded, normal, thick, double, hidden, block, ascii
	HideClock   bool   `toml:"hide_clock"`
	HideStats   bool   `toml:"hide_stats"`
	Sound       bool   `toml:"sound"` // Ring the terminal bell when a window drag starts and ends
}

// LoggingConfig controls the logger
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json, logfmt
	File   string `toml:"file"`   // Log file for the local desktop
}

// StorageConfig controls the SQLite database
type StorageConfig struct {
	DatabasePath string `toml:"database_path"`
	Profile      string `toml:"profile"` // Layout profile of the local desktop
}

// KeybindingsConfig holds all keybinding configurations
type KeybindingsConfig struct {
	Desktop map[string][]string `toml:"desktop"`
	Window  map[string][]string `toml:"window"`
	Alert   map[string][]string `toml:"alert"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *UserConfig {
	dataDir := filepath.Join(xdg.DataHome, "deskfolio")
	return &UserConfig{
		Site: SiteConfig{
			Name:         "deskfolio",
			Domain:       "localhost",
			ContentDir:   filepath.Join(dataDir, "content"),
			GalleryDir:   filepath.Join(dataDir, "img"),
			GalleryIndex: filepath.Join(dataDir, "gallery.json"),
			HomeRoute:    "/home",
		},
		Server: ServerConfig{
			HTTPAddr:    DefaultHTTPAddr,
			SSHHost:     DefaultSSHHost,
			SSHPort:     DefaultSSHPort,
			HostKeyPath: filepath.Join(dataDir, "ssh", "host_ed25519"),
			WebHost:     DefaultWebHost,
			WebPort:     DefaultWebPort,
		},
		Mail: MailConfig{
			Port: DefaultSMTPPort,
		},
		TTS: TTSConfig{
			Model:   DefaultTTSModel,
			Format:  DefaultTTSFormat,
			BaseURL: DefaultTTSBaseURL,
		},
		Appearance: AppearanceConfig{
			BorderStyle: "rounded",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(dataDir, "deskfolio.db"),
			Profile:      "local",
		},
		Keybindings: KeybindingsConfig{
			Desktop: map[string][]string{
				"next_window":    {"tab"},
				"prev_window":    {"shift+tab"},
				"close_window":   {"ctrl+w", "x"},
				"defocus":        {"esc"},
				"open_home":      {"1"},
				"open_about":     {"2"},
				"open_portfolio": {"3"},
				"open_gallery":   {"4"},
				"open_contact":   {"5"},
				"quit":           {"q", "ctrl+c"},
			},
			Window: map[string][]string{
				"scroll_up":   {"up", "k"},
				"scroll_down": {"down", "j"},
				"page_up":     {"pgup"},
				"page_down":   {"pgdown"},
				"prev_item":   {"left", "h"},
				"next_item":   {"right", "l"},
				"open_item":   {"enter"},
			},
			Alert: map[string][]string{
				"confirm": {"y", "enter"},
				"cancel":  {"n", "esc"},
			},
		},
	}
}

// LoadUserConfig loads the user configuration from XDG config directory
func LoadUserConfig() (*UserConfig, error) {
	configPath, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		return createDefaultConfig()
	}
	return LoadFrom(configPath)
}

// LoadFrom reads, completes and validates a config file.
func LoadFrom(configPath string) (*UserConfig, error) {
	// #nosec G304 - reading the user's config is intentional
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg UserConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaultCfg := DefaultConfig()
	fillMissing(&cfg, defaultCfg)
	fillMissingKeybinds(&cfg, defaultCfg)
	applyEnv(&cfg)

	validation := ValidateConfig(&cfg)
	if validation.HasErrors() {
		for _, err := range validation.Errors {
			fmt.Fprintf(os.Stderr, "Config error in [%s]: %s - %s\n", err.Field, err.Key, err.Message)
		}
		return nil, fmt.Errorf("configuration has %d error(s), please fix and restart", len(validation.Errors))
	}
	for _, warn := range validation.Warnings {
		fmt.Fprintf(os.Stderr, "Config warning in [%s]: %s - %s\n", warn.Field, warn.Key, warn.Message)
	}

	return &cfg, nil
}

// createDefaultConfig creates a default config file in the user's config directory
func createDefaultConfig() (*UserConfig, error) {
	configPath, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	cfg, err := WriteDefaultConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// WriteDefaultConfig writes the default configuration with a commented
// header to path, replacing any existing file.
func WriteDefaultConfig(configPath string) (*UserConfig, error) {
	cfg := DefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# deskfolio configuration\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration location: " + configPath + "\n")
	sb.WriteString("# For keybindings, run: deskfolio keybinds list\n")
	sb.WriteString("#\n")
	sb.WriteString("# Secrets can be left empty here and supplied through the environment:\n")
	sb.WriteString("#   " + EnvSMTPPassword + "  mail.password\n")
	sb.WriteString("#   " + EnvTTSAPIKey + "       tts.api_key\n")
	sb.WriteString("#   " + EnvTTSVoiceID + "      tts.voice_id\n")
	sb.WriteString("#\n")
	sb.WriteString("# appearance.border_style: rounded, normal, thick, double, hidden, block, ascii\n")
	sb.WriteString("# appearance.theme: any bubbletint id or a custom theme in the themes directory\n")
	sb.WriteString("# logging.format: text, json, logfmt\n\n")
	sb.Write(data)

	if err := os.WriteFile(configPath, []byte(sb.String()), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfg, nil
}

func fillMissing(cfg, def *UserConfig) {
	fillString(&cfg.Site.Name, def.Site.Name)
	fillString(&cfg.Site.Domain, def.Site.Domain)
	fillString(&cfg.Site.ContentDir, def.Site.ContentDir)
	fillString(&cfg.Site.GalleryDir, def.Site.GalleryDir)
	fillString(&cfg.Site.GalleryIndex, def.Site.GalleryIndex)
	fillString(&cfg.Site.HomeRoute, def.Site.HomeRoute)

	fillString(&cfg.Server.HTTPAddr, def.Server.HTTPAddr)
	fillString(&cfg.Server.SSHHost, def.Server.SSHHost)
	fillString(&cfg.Server.SSHPort, def.Server.SSHPort)
	fillString(&cfg.Server.HostKeyPath, def.Server.HostKeyPath)
	fillString(&cfg.Server.WebHost, def.Server.WebHost)
	fillString(&cfg.Server.WebPort, def.Server.WebPort)

	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = def.Mail.Port
	}

	fillString(&cfg.TTS.Model, def.TTS.Model)
	fillString(&cfg.TTS.Format, def.TTS.Format)
	fillString(&cfg.TTS.BaseURL, def.TTS.BaseURL)

	fillString(&cfg.Appearance.BorderStyle, def.Appearance.BorderStyle)

	fillString(&cfg.Logging.Level, def.Logging.Level)
	fillString(&cfg.Logging.Format, def.Logging.Format)

	fillString(&cfg.Storage.DatabasePath, def.Storage.DatabasePath)
	fillString(&cfg.Storage.Profile, def.Storage.Profile)
}

func fillString(target *string, def string) {
	if *target == "" {
		*target = def
	}
}

// fillMissingKeybinds fills in any missing keybindings with defaults
func fillMissingKeybinds(cfg, defaultCfg *UserConfig) {
	if cfg.Keybindings.Desktop == nil {
		cfg.Keybindings.Desktop = make(map[string][]string)
	}
	if cfg.Keybindings.Window == nil {
		cfg.Keybindings.Window = make(map[string][]string)
	}
	if cfg.Keybindings.Alert == nil {
		cfg.Keybindings.Alert = make(map[string][]string)
	}
	fillMapDefaults(cfg.Keybindings.Desktop, defaultCfg.Keybindings.Desktop)
	fillMapDefaults(cfg.Keybindings.Window, defaultCfg.Keybindings.Window)
	fillMapDefaults(cfg.Keybindings.Alert, defaultCfg.Keybindings.Alert)
}

func fillMapDefaults(target, defaults map[string][]string) {
	for k, v := range defaults {
		if _, exists := target[k]; !exists {
			target[k] = v
		}
	}
}

// applyEnv lets the environment supply secrets.
func applyEnv(cfg *UserConfig) {
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv(EnvTTSAPIKey); v != "" {
		cfg.TTS.APIKey = v
	}
	if v := os.Getenv(EnvTTSVoiceID); v != "" {
		cfg.TTS.VoiceID = v
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		return xdg.ConfigFile(configRelPath)
	}
	return path, nil
}

// Configured reports whether the contact form can send mail.
func (c MailConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.To != ""
}

// Configured reports whether the TTS proxy has credentials.
func (c TTSConfig) Configured() bool {
	return c.APIKey != "" && c.VoiceID != ""
}
