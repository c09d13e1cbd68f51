package config

import (
	"slices"
	"strings"
)

// Keybinding represents a single keybinding entry
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

var actionDescriptions = map[string]string{
	"next_window":    "Focus next window",
	"prev_window":    "Focus previous window",
	"close_window":   "Close focused window",
	"defocus":        "Defocus all windows",
	"open_home":      "Open home",
	"open_about":     "Open about",
	"open_portfolio": "Open portfolio",
	"open_gallery":   "Open gallery",
	"open_contact":   "Open contact",
	"quit":           "Quit",
	"scroll_up":      "Scroll up",
	"scroll_down":    "Scroll down",
	"page_up":        "Page up",
	"page_down":      "Page down",
	"prev_item":      "Previous item / page",
	"next_item":      "Next item / page",
	"open_item":      "Open selected item",
	"confirm":        "Confirm",
	"cancel":         "Cancel",
}

// KeybindRegistry resolves key strings to actions per section.
type KeybindRegistry struct {
	sections map[string]map[string]string // section -> key -> action
	bindings map[string]map[string][]string
}

// NewKeybindRegistry builds a registry from a completed config.
func NewKeybindRegistry(cfg KeybindingsConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		sections: make(map[string]map[string]string),
		bindings: map[string]map[string][]string{
			"desktop": cfg.Desktop,
			"window":  cfg.Window,
			"alert":   cfg.Alert,
		},
	}
	for section, actions := range r.bindings {
		keys := make(map[string]string)
		for action, ks := range actions {
			for _, k := range ks {
				keys[normalizeKey(k)] = action
			}
		}
		r.sections[section] = keys
	}
	return r
}

// Action returns the action bound to key in section, or "".
func (r *KeybindRegistry) Action(section, key string) string {
	return r.sections[section][normalizeKey(key)]
}

// Keys returns the keys bound to action in section.
func (r *KeybindRegistry) Keys(section, action string) []string {
	return r.bindings[section][action]
}

func normalizeKey(k string) string {
	k = strings.TrimSpace(k)
	if len(k) == 1 {
		// Single characters are case sensitive: "x" and "X" differ.
		return k
	}
	return strings.ToLower(k)
}

// GetKeybindings returns the help sections for the registry.
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	titles := []struct{ section, title string }{
		{"desktop", "Desktop"},
		{"window", "Focused window"},
		{"alert", "Alerts"},
	}
	out := make([]KeybindingSection, 0, len(titles))
	for _, t := range titles {
		actions := make([]string, 0, len(registry.bindings[t.section]))
		for action := range registry.bindings[t.section] {
			actions = append(actions, action)
		}
		slices.Sort(actions)

		section := KeybindingSection{Title: t.title}
		for _, action := range actions {
			desc, ok := actionDescriptions[action]
			if !ok {
				desc = action
			}
			section.Bindings = append(section.Bindings, Keybinding{
				Key:         strings.Join(registry.Keys(t.section, action), ", "),
				Description: desc,
			})
		}
		out = append(out, section)
	}
	return out
}
