// Package render turns assistant replies into styled terminal output and
// holds the color themes of the TUI.
package render

// Options configures the markdown renderer behavior.
type Options struct {
	// Width is the word-wrap column; values <= 0 mean 80.
	Width int

	// Style is a glamour standard style ("dark", "light", "auto", ...),
	// an alias such as "tokyonight", or a path to a JSON style file.
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            ThemeDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithEmoji returns Options with emoji support enabled/disabled.
func (o Options) WithEmoji(enabled bool) Options {
	o.EnableEmoji = enabled
	return o
}
