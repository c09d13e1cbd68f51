package config

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
)

// ValidationIssue is one problem found in a config file.
type ValidationIssue struct {
	Field   string
	Key     string
	Message string
}

// ValidationResult collects errors (fatal) and warnings.
type ValidationResult struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// HasErrors reports whether the config is unusable.
func (v *ValidationResult) HasErrors() bool { return len(v.Errors) > 0 }

// HasWarnings reports whether anything looked off.
func (v *ValidationResult) HasWarnings() bool { return len(v.Warnings) > 0 }

func (v *ValidationResult) errorf(field, key, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationIssue{field, key, fmt.Sprintf(format, args...)})
}

func (v *ValidationResult) warnf(field, key, format string, args ...any) {
	v.Warnings = append(v.Warnings, ValidationIssue{field, key, fmt.Sprintf(format, args...)})
}

var (
	validBorderStyles = []string{"rounded", "normal", "thick", "double", "hidden", "block", "ascii"}
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validLogFormats   = []string{"text", "json", "logfmt"}
)

// ValidateConfig checks a completed config.
func ValidateConfig(cfg *UserConfig) *ValidationResult {
	v := &ValidationResult{}

	if !strings.HasPrefix(cfg.Site.HomeRoute, "/") {
		v.errorf("site", "home_route", "must start with '/', got %q", cfg.Site.HomeRoute)
	}
	if !slices.Contains(validBorderStyles, cfg.Appearance.BorderStyle) {
		v.warnf("appearance", "border_style", "unknown style %q, using rounded", cfg.Appearance.BorderStyle)
		cfg.Appearance.BorderStyle = "rounded"
	}
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Logging.Level)) {
		v.errorf("logging", "level", "unknown level %q", cfg.Logging.Level)
	}
	if !slices.Contains(validLogFormats, cfg.Logging.Format) {
		v.errorf("logging", "format", "unknown format %q", cfg.Logging.Format)
	}
	if cfg.Mail.Port <= 0 || cfg.Mail.Port > 65535 {
		v.errorf("mail", "port", "port %d out of range", cfg.Mail.Port)
	}
	for key, addr := range map[string]string{"from": cfg.Mail.From, "to": cfg.Mail.To} {
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			v.errorf("mail", key, "invalid address %q", addr)
		}
	}
	if cfg.Mail.Host == "" {
		v.warnf("mail", "host", "not set, the contact form will report a configuration error")
	}

	checkBindings(v, "keybindings.desktop", cfg.Keybindings.Desktop)
	checkBindings(v, "keybindings.window", cfg.Keybindings.Window)
	checkBindings(v, "keybindings.alert", cfg.Keybindings.Alert)

	return v
}

// checkBindings warns about actions without keys and keys bound twice in
// one section.
func checkBindings(v *ValidationResult, section string, bindings map[string][]string) {
	seen := make(map[string]string)
	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}
	slices.Sort(actions)
	for _, action := range actions {
		keys := bindings[action]
		if len(keys) == 0 {
			v.warnf(section, action, "no keys bound")
		}
		for _, k := range keys {
			if other, ok := seen[k]; ok {
				v.warnf(section, action, "key %q already bound to %s", k, other)
				continue
			}
			seen[k] = action
		}
	}
}
