package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/gallery"
	"github.com/deskfolio/deskfolio/internal/persistence"
	"github.com/deskfolio/deskfolio/internal/theme"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	keyStyle    = lipgloss.NewStyle().Bold(true).Width(18)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func printConfigPath() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Println(configPath)
	return nil
}

func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if _, err := config.WriteDefaultConfig(configPath); err != nil {
			return err
		}
	}

	editor := findEditor()
	if editor == "" {
		return errors.New("no editor found; set $EDITOR or $VISUAL")
	}

	// #nosec G204 - the editor is chosen by the user
	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	if _, err := config.LoadFrom(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: the saved config has problems: %v\n", err)
	}
	return nil
}

func findEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	for _, e := range []string{"vim", "vi", "nano", "emacs"} {
		if path, err := exec.LookPath(e); err == nil {
			return path
		}
	}
	return ""
}

func resetConfigToDefaults(yes bool) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if !yes {
		fmt.Printf("This will overwrite %s with the defaults. Continue? [y/N] ", configPath)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if _, err := config.WriteDefaultConfig(configPath); err != nil {
		return err
	}
	fmt.Printf("Configuration reset: %s\n", configPath)
	return nil
}

func listKeybindings() error {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		userConfig = config.DefaultConfig()
	}

	sections := config.GetKeybindings(config.NewKeybindRegistry(userConfig.Keybindings))
	for i, section := range sections {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(headerStyle.Render(section.Title))
		for _, b := range section.Bindings {
			fmt.Println("  " + keyStyle.Render(b.Key) + b.Description)
		}
	}
	return nil
}

func listThemes() error {
	for _, id := range theme.IDs() {
		fmt.Println(id)
	}
	return nil
}

// previewThemeColors prints a swatch for each desktop color role.
func previewThemeColors(name string) error {
	if err := theme.Initialize(name); err != nil {
		return err
	}

	roles := []struct {
		name  string
		color func() color.Color
	}{
		{"desktop", theme.DesktopBg},
		{"window text", theme.WindowFg},
		{"active border", theme.BorderActive},
		{"inactive border", theme.BorderInactive},
		{"alert border", theme.BorderAlert},
		{"title", theme.TitleFg},
		{"address bar", theme.AddressBarBg},
		{"dock", theme.DockBg},
		{"accent", theme.Accent},
		{"muted", theme.Muted},
	}

	fmt.Println(headerStyle.Render(theme.Current().DisplayName))
	for _, r := range roles {
		c := r.color()
		swatch := lipgloss.NewStyle().Background(c).Render("    ")
		fmt.Printf("  %s %s %s\n", swatch, keyStyle.Render(r.name), dimStyle.Render(theme.ColorToString(c)))
	}
	return nil
}

func generateGallery(root, out string) error {
	userConfig := loadConfig(config.Overrides{})
	if root == "" {
		root = userConfig.Site.GalleryDir
	}
	if out == "" {
		out = userConfig.Site.GalleryIndex
	}

	n, err := gallery.Generate(root, out)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d images from %s into %s\n", n, root, out)
	return nil
}

type inboxEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Newsletter bool   `json:"newsletter"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

func listInbox(ctx context.Context, limit int, asJSON bool) error {
	userConfig := loadConfig(config.Overrides{})

	db, err := persistence.Open(ctx, userConfig.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	records, err := persistence.NewMessageRepo(db).List(ctx, limit)
	if err != nil {
		return err
	}

	if asJSON {
		entries := make([]inboxEntry, 0, len(records))
		for _, r := range records {
			entries = append(entries, inboxEntry{
				ID:         r.ID,
				Name:       r.Name,
				Email:      r.Email,
				Message:    r.Message,
				Newsletter: r.Newsletter,
				Status:     r.Status,
				Error:      r.Error,
				CreatedAt:  r.CreatedAt.Format(time.RFC3339),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(records) == 0 {
		fmt.Println("No messages.")
		return nil
	}
	for i, r := range records {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s  %s <%s>  %s\n",
			dimStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
			headerStyle.Render(r.Name), r.Email, r.Status)
		if r.Error != "" {
			fmt.Println("  " + dimStyle.Render(r.Error))
		}
		for _, line := range strings.Split(strings.TrimSpace(r.Message), "\n") {
			fmt.Println("  " + line)
		}
	}
	return nil
}
