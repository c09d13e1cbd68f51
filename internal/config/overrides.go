package config

// Overrides contains CLI flag values that can override user config.
// Zero values indicate the flag was not set and should use the user config default.
type Overrides struct {
	// ASCIIOnly uses ASCII characters for window decorations
	ASCIIOnly bool

	// BorderStyle overrides the window border style
	BorderStyle string

	// HideClock overrides hiding the dock clock
	HideClock bool

	// HideStats overrides hiding the dock CPU/RAM indicator
	HideStats bool

	// ThemeName is the theme to load
	ThemeName string

	// ContentDir overrides site.content_dir
	ContentDir string

	// HTTPAddr overrides server.http_addr
	HTTPAddr string

	// SSHPort overrides server.ssh_port
	SSHPort string

	// Debug forces the debug log level
	Debug bool
}

// ApplyOverrides applies CLI flag overrides to the global appearance
// settings and to userConfig, falling back to user config values. It
// returns the theme name to load ("" for none).
func ApplyOverrides(overrides Overrides, userConfig *UserConfig) string {
	if overrides.ASCIIOnly {
		UseASCIIOnly = true
	}

	if overrides.BorderStyle != "" {
		BorderStyle = overrides.BorderStyle
	} else if userConfig != nil && userConfig.Appearance.BorderStyle != "" {
		BorderStyle = userConfig.Appearance.BorderStyle
	}

	if userConfig != nil {
		HideClock = overrides.HideClock || userConfig.Appearance.HideClock
		HideStats = overrides.HideStats || userConfig.Appearance.HideStats
	} else {
		HideClock = overrides.HideClock
		HideStats = overrides.HideStats
	}

	if userConfig != nil {
		if userConfig.Site.Name != "" {
			SiteName = userConfig.Site.Name
		}
		if overrides.ContentDir != "" {
			userConfig.Site.ContentDir = overrides.ContentDir
		}
		if overrides.HTTPAddr != "" {
			userConfig.Server.HTTPAddr = overrides.HTTPAddr
		}
		if overrides.SSHPort != "" {
			userConfig.Server.SSHPort = overrides.SSHPort
		}
		if overrides.Debug {
			userConfig.Logging.Level = "debug"
		}
	}

	themeName := overrides.ThemeName
	if themeName == "" && userConfig != nil {
		themeName = userConfig.Appearance.Theme
	}
	return themeName
}
