// Package commands provides CLI commands for localchat.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/logger"
	"github.com/diogo/localchat/internal/models"
)

var (
	// Global flags
	modelFlag   string
	baseURLFlag string
	verboseFlag bool

	// Query flags
	outputFlag string
	fileFlag   string
	rawFlag    bool
	renderFlag bool
	copyFlag   bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// deps is replaced in tests.
var deps = NewDependencies()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "localchat [prompt]",
	Short: "Terminal chat client for a local OpenAI-compatible API",
	Long: `localchat talks to a chat completions server running on your machine
(http://127.0.0.1:8000/v1 by default) and streams replies into the terminal.

Examples:
  localchat                             Start interactive chat
  localchat chat -m gpt-4               Start chat with a model preselected
  localchat "What is Go?" -m gpt-4      Send a single query
  localchat -f prompt.md                Read prompt from file
  cat prompt.md | localchat             Read prompt from stdin
  localchat "Hello" -o response.md      Save response to file
  localchat models --remote             List models served by the API`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "localchat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		prompt, ok, err := readPrompt(args)
		if err != nil {
			return err
		}
		if ok {
			return runQuery(cmd.Context(), prompt)
		}

		// No input on a terminal opens the chat; otherwise show help.
		if deps.StdoutIsTTY() {
			return runChat()
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "",
		fmt.Sprintf("Model to use (%s)", strings.Join(models.CatalogIDs(), ", ")))
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "API base URL (default "+models.DefaultBaseURL+")")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Log debug details to the log file")

	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the reply text")
	rootCmd.Flags().BoolVar(&renderFlag, "render", false, "Render the finished reply as markdown instead of streaming it")
	rootCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the reply to the clipboard")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
}

// readPrompt returns the one-shot prompt from -f, piped stdin or the
// positional argument, in that order. ok is false when there is none.
func readPrompt(args []string) (string, bool, error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if !deps.StdinIsTTY() && len(args) == 0 {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), true, nil
		}
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

// loadSettings returns the effective configuration: flags over environment
// over the config file over defaults.
func loadSettings() config.Config {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v (using defaults)\n", err)
	}

	if modelFlag != "" {
		cfg.DefaultModel = models.ModelFromName(modelFlag).ID
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}
	return cfg
}

// openLogger opens the log file for cfg. Failing to open it only disables
// logging. The returned func releases the file.
func openLogger(cfg config.Config) (*slog.Logger, func()) {
	path, err := config.LogPath(cfg)
	if err != nil {
		return logger.Discard(), func() {}
	}

	log, closer, err := logger.Open(path, cfg.Verbose)
	if err != nil {
		if cfg.Verbose {
			fmt.Fprintf(deps.Stderr, "Warning: logging disabled: %v\n", err)
		}
		return logger.Discard(), func() {}
	}
	return log, func() { closer.Close() }
}
