package render

import (
	"os"

	"github.com/diogo/localchat/internal/config"
)

// EnvStyle overrides the configured markdown style.
const EnvStyle = "GLAMOUR_STYLE"

// OptionsFromConfig builds render options from cfg. GLAMOUR_STYLE takes
// precedence over the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	// Booleans always overwrite defaults since the config carries explicit defaults.
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv(EnvStyle); style != "" {
		opts.Style = style
	}

	return opts
}
