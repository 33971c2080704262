package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/localchat/internal/logger"
	"github.com/diogo/localchat/internal/render"
	"github.com/diogo/localchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the local API.

Pick a model with Tab, type a message and press Enter. Every message is
sent on its own; the server sees no earlier turns. Press Esc to cancel a
reply, Ctrl+L to clear the conversation, and Esc or Ctrl+C to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg := loadSettings()

	log, closeLog := openLogger(cfg)
	defer closeLog()

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		fmt.Fprintf(deps.Stderr, "Warning: unknown tui_theme %q, using default\n", cfg.TUITheme)
	}
	tui.UpdateTheme()

	client, err := deps.NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	log.Info("starting chat", logger.URL, client.BaseURL(), logger.MODEL, cfg.DefaultModel)

	return deps.TUI.RunChat(client, tui.Options{
		Model:   cfg.DefaultModel,
		Timeout: cfg.Timeout(),
		Probe:   cfg.ProbeOnStart,
		Render:  render.OptionsFromConfig(cfg),
		Logger:  log,
		Copy:    deps.Copy,
	})
}
