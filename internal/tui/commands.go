package tui

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/localchat/internal/api"
	"github.com/diogo/localchat/internal/conversation"
)

// probeTimeout bounds the startup connectivity check.
const probeTimeout = 5 * time.Second

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI. Every stream message carries the exchange it
// belongs to so events from an abandoned exchange can be dropped.
type (
	probeResultMsg struct {
		err error
	}
	streamOpenedMsg struct {
		exchange int
		stream   *api.Stream
	}
	streamUpdateMsg struct {
		exchange int
		text     string
		stream   *api.Stream
	}
	streamDoneMsg struct {
		exchange int
		err      error
	}
	noticeExpiredMsg struct {
		id int
	}
	clipboardResultMsg struct {
		err error
	}
)

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

func noticeTimer(id int) tea.Cmd {
	return tea.Tick(conversation.NoticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m Model) probe() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		return probeResultMsg{err: client.Probe(ctx)}
	}
}

// openStream sends the exchange's message and reports the opened stream.
func (m Model) openStream(ctx context.Context, ex conversation.Exchange) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		stream, err := client.Chat(ctx, ex.Model, ex.Message)
		if err != nil {
			return streamDoneMsg{exchange: ex.ID, err: err}
		}
		return streamOpenedMsg{exchange: ex.ID, stream: stream}
	}
}

// waitForUpdate reads one update from the stream. Update re-arms it after
// every fragment, so the program loop never blocks on the network.
func waitForUpdate(exchange int, stream *api.Stream) tea.Cmd {
	return func() tea.Msg {
		u, err := stream.Next()
		if err != nil {
			stream.Close()
			if errors.Is(err, io.EOF) {
				err = nil
			}
			return streamDoneMsg{exchange: exchange, err: err}
		}
		return streamUpdateMsg{exchange: exchange, text: u.Text, stream: stream}
	}
}
