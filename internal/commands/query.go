package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/localchat/internal/api"
	"github.com/diogo/localchat/internal/config"
	apierrors "github.com/diogo/localchat/internal/errors"
	"github.com/diogo/localchat/internal/logger"
	"github.com/diogo/localchat/internal/models"
	"github.com/diogo/localchat/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// spinner handles the animated loading indicator
type spinner struct {
	w       io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner drawing on w
func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.w, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.w, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.w, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.w, "%s %s\n", checkmark, msg)
}

// clear stops the spinner and erases its line
func (s *spinner) clear() {
	s.stopOnce()
	<-s.done
}

// progress draws the spinner while the first fragment is pending. All
// methods are no-ops when quiet is set.
type progress struct {
	spin *spinner
}

func startProgress(w io.Writer, message string, quiet bool) *progress {
	if quiet {
		return &progress{}
	}
	s := newSpinner(w, message)
	s.start()
	return &progress{spin: s}
}

func (p *progress) clear() {
	if p.spin != nil {
		p.spin.clear()
		p.spin = nil
	}
}

// runQuery sends a single prompt and streams the reply to stdout.
func runQuery(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg := loadSettings()
	if cfg.DefaultModel == "" {
		return apierrors.NewValidationError("model", fmt.Errorf("%w: pass --model or set default_model", apierrors.ErrNoModel))
	}

	log, closeLog := openLogger(cfg)
	defer closeLog()

	client, err := deps.NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if timeout := cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Decoration only makes sense on a terminal.
	decorated := !rawFlag && deps.StdoutIsTTY()
	model := models.ModelFromName(cfg.DefaultModel)

	log.Info("sending query", logger.MODEL, model.ID, "chars", len(prompt))
	startTime := time.Now()

	spin := startProgress(deps.Stderr, "Waiting for "+model.Title(), !decorated)
	defer spin.clear()

	stream, err := client.Chat(ctx, model.ID, prompt)
	if err != nil {
		spin.clear()
		log.Error("query failed", logger.ERROR, err)
		if decorated {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Request failed"))
		}
		return fmt.Errorf("request failed: %w", err)
	}

	streaming := !renderFlag || !decorated
	started := false

	text, err := api.Collect(stream, func(u api.Update) {
		if !streaming {
			return
		}
		if !started {
			started = true
			spin.clear()
			if decorated {
				fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ "+model.Title()))
			}
		}
		fmt.Fprint(deps.Stdout, u.Fragment)
	})
	spin.clear()
	if streaming && text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(deps.Stdout)
	}
	if err != nil {
		log.Error("stream failed", logger.ERROR, err, "chars", len(text))
		if decorated {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Reply interrupted"))
		}
		return fmt.Errorf("stream failed: %w", err)
	}
	log.Info("query complete", logger.MODEL, model.ID, "chars", len(text), "skipped", stream.Skipped(),
		"duration", time.Since(startTime).Round(time.Millisecond).String())

	if cfg.Verbose && decorated {
		fmt.Fprintf(deps.Stderr, "[verbose] Request took %s\n", time.Since(startTime).Round(time.Millisecond))
		if n := stream.Skipped(); n > 0 {
			fmt.Fprintf(deps.Stderr, "[verbose] Skipped %d malformed stream lines\n", n)
		}
	}

	if !streaming {
		printRendered(cfg, model, text)
	}

	return finishReply(cfg, text, decorated)
}

// printRendered writes the finished reply as markdown inside the
// assistant bubble.
func printRendered(cfg config.Config, model models.Model, text string) {
	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ "+model.Title()))
	rendered := render.Reply(text, render.OptionsFromConfig(cfg).WithWidth(contentWidth))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}

// finishReply saves and copies the reply as requested.
func finishReply(cfg config.Config, text string, decorated bool) error {
	if copyFlag || cfg.CopyToClipboard {
		if err := deps.Copy(text); err != nil {
			// Log warning but don't fail
			if decorated {
				fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
					fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
			}
		} else if decorated {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Response saved to %s", outputFlag)))
		}
	}

	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, action string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %s", action, apierrors.NoticeText(err))))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsRequestError(err) && apierrors.GetHTTPStatus(err) == 0,
		apierrors.IsConnectivityError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Start the local API server or pass --base-url"))
	case errors.Is(err, context.DeadlineExceeded):
		sb.WriteString(dimStyle.Render("\n  Hint: Raise request_timeout with 'localchat config set request_timeout <seconds>'"))
	}

	return sb.String()
}
