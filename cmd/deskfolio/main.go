// Package main implements deskfolio, a portfolio presented as a desktop of
// overlapping windows. It runs in the local terminal, serves the desktop
// over SSH and into browser tabs, and serves the site's JSON API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode    bool
	asciiOnly    bool
	themeName    string
	borderStyle  string
	hideClock    bool
	hideStats    bool
	contentDir   string
	initialRoute string
	profileName  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deskfolio",
		Short: "A portfolio desktop for the terminal",
		Long: `deskfolio - a portfolio desktop for the terminal

Pages, portfolio posts, an image gallery and a contact form open as
windows that can be focused, dragged, resized, minimized to the dock
and closed. The window layout is saved and restored per profile.`,
		Example: `  # Open the desktop
  deskfolio

  # Open straight into a post
  deskfolio --route /portfolio/my-project

  # Run with a theme and ASCII decorations
  deskfolio --theme dracula --ascii-only

  # Serve the API and the desktop over SSH
  deskfolio serve

  # Also serve the desktop into browser tabs
  deskfolio serve --web

  # Rebuild the gallery index
  deskfolio gallery generate`,
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&asciiOnly, "ascii-only", false, "Use ASCII characters for window decorations and markdown")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Color theme to use (e.g., dracula, nord, tokyonight). Leave empty to use standard terminal colors without theming")
	rootCmd.PersistentFlags().StringVar(&borderStyle, "border-style", "", "Window border style: rounded, normal, thick, double, hidden, block, ascii (default: from config or rounded)")
	rootCmd.PersistentFlags().BoolVar(&hideClock, "hide-clock", false, "Hide the dock clock")
	rootCmd.PersistentFlags().BoolVar(&hideStats, "hide-stats", false, "Hide the dock CPU/RAM indicator")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "Content directory with pages/ and portfolio/ (default: from config)")
	rootCmd.Flags().StringVar(&initialRoute, "route", "", "Route to open on start, e.g. /contact")
	rootCmd.Flags().StringVar(&profileName, "profile", "", "Layout profile to restore and save (default: from config or local)")

	var serve serveFlags
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the SSH desktop",
		Long: `Serve the portfolio

Starts the JSON API (gallery, portfolio metadata, contact form and the
text to speech proxy) and the SSH desktop. Each SSH user gets their own
saved layout. With --web the desktop is also served into browser tabs.

Content and gallery changes are picked up without a restart.`,
		Example: `  # API on :8080 and SSH on 2222
  deskfolio serve

  # API only
  deskfolio serve --no-ssh

  # Everything, including the browser terminal
  deskfolio serve --web --http-addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), serve)
		},
	}
	serveCmd.Flags().StringVar(&serve.httpAddr, "http-addr", "", "HTTP listen address (default: from config or :8080)")
	serveCmd.Flags().StringVar(&serve.sshPort, "ssh-port", "", "SSH port (default: from config or 2222)")
	serveCmd.Flags().BoolVar(&serve.web, "web", false, "Also serve the desktop into browser tabs")
	serveCmd.Flags().BoolVar(&serve.noHTTP, "no-http", false, "Do not serve the HTTP API")
	serveCmd.Flags().BoolVar(&serve.noSSH, "no-ssh", false, "Do not serve the SSH desktop")
	serveCmd.Flags().BoolVar(&serve.noWatch, "no-watch", false, "Do not reload content on change")

	var sshHost, sshPort, sshKeyPath string
	sshCmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve the desktop over SSH only",
		Long: `Serve the desktop over SSH

The server generates a host key on first start if none exists.
The SSH user name selects the saved window layout; a route given as the
SSH command opens on connect.`,
		Example: `  # Start on the default port
  deskfolio ssh

  # Connect and open the contact form
  ssh -p 2222 -t localhost /contact`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), serveFlags{
				sshHost:    sshHost,
				sshPort:    sshPort,
				sshKeyPath: sshKeyPath,
				noHTTP:     true,
			})
		},
	}
	sshCmd.Flags().StringVar(&sshPort, "port", "", "SSH server port (default: from config or 2222)")
	sshCmd.Flags().StringVar(&sshHost, "host", "", "SSH server host (default: from config or localhost)")
	sshCmd.Flags().StringVar(&sshKeyPath, "key-path", "", "Path to SSH host key (auto-generated if missing)")

	galleryCmd := &cobra.Command{
		Use:   "gallery",
		Short: "Manage the image gallery",
	}

	var galleryRoot, galleryOut string
	galleryGenerateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan the image directory and write the gallery index",
		Long: `Scan the image directory and write gallery.json

Every image under the gallery directory is listed with its folder and,
where it can be decoded, its dimensions.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return generateGallery(galleryRoot, galleryOut)
		},
	}
	galleryGenerateCmd.Flags().StringVar(&galleryRoot, "root", "", "Image directory (default: from config)")
	galleryGenerateCmd.Flags().StringVarP(&galleryOut, "output", "o", "", "Index file to write (default: from config)")
	galleryCmd.AddCommand(galleryGenerateCmd)

	inboxCmd := &cobra.Command{
		Use:   "inbox",
		Short: "Inspect archived contact messages",
	}

	var inboxLimit int
	var inboxJSON bool
	inboxListCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent contact messages",
		Long:  `List contact form submissions with their delivery status, newest first`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listInbox(cmd.Context(), inboxLimit, inboxJSON)
		},
	}
	inboxListCmd.Flags().IntVarP(&inboxLimit, "limit", "n", 20, "Number of messages to show")
	inboxListCmd.Flags().BoolVar(&inboxJSON, "json", false, "Output as JSON")
	inboxCmd.AddCommand(inboxListCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage deskfolio configuration",
		Long:  `Manage the deskfolio configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Long:  `Print the path to the deskfolio configuration file`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the deskfolio configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return editConfigFile()
		},
	}

	var resetYes bool
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the deskfolio configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return resetConfigToDefaults(resetYes)
		},
	}
	configResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)

	var previewTheme string
	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "List available color themes",
		Example: `  # List all themes
  deskfolio themes

  # Preview the desktop colors of a theme
  deskfolio themes --preview dracula`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if previewTheme != "" {
				return previewThemeColors(previewTheme)
			}
			return listThemes()
		},
	}
	themesCmd.Flags().StringVar(&previewTheme, "preview", "", "Preview the desktop colors of a theme")

	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys", "kb"},
		Short:   "View keybinding configuration",
		Long:    `View and inspect deskfolio keybinding configuration`,
	}

	keybindsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all keybindings",
		Long:  `Display all configured keybindings in a formatted table`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return listKeybindings()
		},
	}
	keybindsCmd.AddCommand(keybindsListCmd)

	rootCmd.AddCommand(serveCmd, sshCmd, galleryCmd, inboxCmd)
	rootCmd.AddCommand(configCmd, themesCmd, keybindsCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}
