package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour/styles"
)

// Markdown styles shipped with glamour
const (
	ThemeAuto       = "auto"
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeDracula    = "dracula"
	ThemeTokyoNight = "tokyo-night"
	ThemePink       = "pink"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// styleAliases maps TUI theme names to the closest markdown style.
var styleAliases = map[string]string{
	"tokyonight": ThemeTokyoNight,
	"catppuccin": ThemeDark,
	"nord":       ThemeDark,
	"none":       ThemeNoTTY,
	"plain":      ThemeNoTTY,
}

// ResolveStyle normalizes a style name. Known names and aliases return the
// glamour standard style name and true; anything else is returned unchanged
// with false and is treated as a path to a JSON style file.
func ResolveStyle(style string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(style))
	if name == "" {
		return ThemeDark, true
	}
	if alias, ok := styleAliases[name]; ok {
		return alias, true
	}
	if IsBuiltinStyle(name) {
		return name, true
	}
	return style, false
}

// IsBuiltinStyle reports whether style names one of glamour's standard styles.
func IsBuiltinStyle(style string) bool {
	if style == ThemeAuto {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// IsStyleFile reports whether style points at a readable JSON style file.
func IsStyleFile(style string) bool {
	info, err := os.Stat(style)
	return err == nil && !info.IsDir()
}

// ThemeInfo describes a markdown style for `config show`.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the markdown styles offered to the user.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeAuto, Description: "Dark or light, detected from the terminal"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemePink, Description: "Pink accents"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the style names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
