package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/localchat/internal/api"
	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(client api.GatewayClient, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the API client for the effective configuration.
	NewClient func(cfg config.Config, log *slog.Logger) (api.GatewayClient, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsTTY and StdoutIsTTY report whether the streams are terminals.
	StdinIsTTY  func() bool
	StdoutIsTTY func() bool

	// Copy writes text to the system clipboard.
	Copy func(string) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(client api.GatewayClient, opts tui.Options) error {
	return tui.RunChat(client, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient: newAPIClient,
		TUI:       &DefaultTUI{},
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		StdinIsTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		StdoutIsTTY: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
		Copy: clipboard.WriteAll,
	}
}

func newAPIClient(cfg config.Config, log *slog.Logger) (api.GatewayClient, error) {
	return api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithLogger(log),
	)
}
