package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/localchat/internal/models"
)

// listTimeout bounds the remote model listing.
const listTimeout = 10 * time.Second

var remoteFlag bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models",
	Long: `List the models offered in the chat picker.

With --remote the API server is asked for the models it actually serves.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteFlag {
			return runRemoteModels(cmd.Context())
		}
		return runCatalogModels()
	},
}

func init() {
	modelsCmd.Flags().BoolVar(&remoteFlag, "remote", false, "Query the API server for its models")
}

func runCatalogModels() error {
	cfg := loadSettings()

	idStyle := lipgloss.NewStyle().Foreground(colorTextDim)
	activeStyle := lipgloss.NewStyle().Foreground(colorSuccess)

	for _, m := range models.Catalog() {
		line := fmt.Sprintf("  %-20s %s", m.DisplayName, idStyle.Render(m.ID))
		if m.ID == cfg.DefaultModel {
			line += activeStyle.Render("  ✓ default")
		}
		fmt.Fprintln(deps.Stdout, line)
	}
	return nil
}

func runRemoteModels(ctx context.Context) error {
	cfg := loadSettings()

	log, closeLog := openLogger(cfg)
	defer closeLog()

	client, err := deps.NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	ids, err := client.ListModels(ctx)
	if err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to list models"))
		return fmt.Errorf("failed to list models: %w", err)
	}

	if len(ids) == 0 {
		fmt.Fprintln(deps.Stderr, "The server reported no models.")
		return nil
	}
	for _, id := range ids {
		if m, ok := models.ModelByID(id); ok {
			fmt.Fprintf(deps.Stdout, "%s\t%s\n", id, m.DisplayName)
		} else {
			fmt.Fprintln(deps.Stdout, id)
		}
	}
	return nil
}
