// Package conversation holds the state of one chat conversation: the turn
// list, the selected model, the pending input, the reply accumulator and the
// notice currently shown to the user. It knows nothing about terminals or
// HTTP; the TUI drives it through these methods and renders what it exposes.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	apierrors "github.com/diogo/localchat/internal/errors"
	"github.com/diogo/localchat/internal/models"
)

// NoticeDuration is how long a notice stays visible.
const NoticeDuration = 5 * time.Second

// SendState is the state of the send affordance.
type SendState int

const (
	SendDisabled SendState = iota
	SendEnabled
)

func (s SendState) String() string {
	if s == SendEnabled {
		return "enabled"
	}
	return "disabled"
}

// Exchange identifies one submitted message and its pending reply.
type Exchange struct {
	ID      int
	Model   string
	Message string
}

// Session is a single conversation. It is not safe for concurrent use;
// the TUI only touches it from its Update loop.
type Session struct {
	now func() time.Time

	model string
	input string
	turns []models.Turn

	// exchange is the generation of the current (or last) exchange.
	exchange int
	inFlight bool
	pending  string
	// live is the index of the assistant turn of the current exchange, or -1.
	live        int
	accumulator string

	notice   *Notice
	noticeID int
}

// Option configures a Session
type Option func(*Session)

// WithClock overrides the time source used for notice expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithModel preselects a model.
func WithModel(id string) Option {
	return func(s *Session) {
		s.model = strings.TrimSpace(id)
	}
}

// NewSession creates a conversation holding only the welcome turn.
func NewSession(opts ...Option) *Session {
	s := &Session{
		now:  time.Now,
		live: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.turns = []models.Turn{welcomeTurn()}
	return s
}

func welcomeTurn() models.Turn {
	return models.Turn{Role: models.RoleAssistant, Text: models.WelcomeText}
}

// SelectModel sets the model used for the next send. An empty id clears
// the selection.
func (s *Session) SelectModel(id string) {
	s.model = strings.TrimSpace(id)
}

// Model returns the selected model ID, or "" when none is selected.
func (s *Session) Model() string {
	return s.model
}

// SetInput records the current contents of the message input.
func (s *Session) SetInput(text string) {
	s.input = text
}

// Input returns the current contents of the message input.
func (s *Session) Input() string {
	return s.input
}

// InFlight reports whether a reply is being received.
func (s *Session) InFlight() bool {
	return s.inFlight
}

// CurrentExchange returns the ID of the current (or last) exchange.
func (s *Session) CurrentExchange() int {
	return s.exchange
}

// CanSend reports whether a model is selected, the input is not blank and
// no request is in flight.
func (s *Session) CanSend() bool {
	return s.model != "" && strings.TrimSpace(s.input) != "" && !s.inFlight
}

// SendState returns the state of the send affordance.
func (s *Session) SendState() SendState {
	if s.CanSend() {
		return SendEnabled
	}
	return SendDisabled
}

// Submit starts an exchange with the current input. The user turn is
// recorded before anything else happens, the input is cleared and the
// accumulator reset.
func (s *Session) Submit() (Exchange, error) {
	if s.inFlight {
		return Exchange{}, apierrors.ErrBusy
	}
	if s.model == "" {
		return Exchange{}, apierrors.NewValidationError("model", apierrors.ErrNoModel)
	}
	message := strings.TrimSpace(s.input)
	if message == "" {
		return Exchange{}, apierrors.NewValidationError("message", apierrors.ErrEmptyMessage)
	}

	s.RecordUserTurn(message)
	s.input = ""
	s.exchange++
	s.inFlight = true
	s.pending = message
	s.live = -1
	s.accumulator = ""

	return Exchange{ID: s.exchange, Model: s.model, Message: message}, nil
}

// RecordUserTurn appends an immutable user turn.
func (s *Session) RecordUserTurn(text string) {
	s.turns = append(s.turns, models.Turn{Role: models.RoleUser, Text: text})
	s.live = -1
}

// RecordAssistantFragment shows the cumulative reply text. The first call of
// an exchange creates the assistant turn; later calls overwrite its text.
// Replaying the same value leaves the conversation unchanged.
func (s *Session) RecordAssistantFragment(cumulative string) {
	s.accumulator = cumulative
	if s.live >= 0 && s.live < len(s.turns) {
		s.turns[s.live].Text = cumulative
		return
	}
	s.turns = append(s.turns, models.Turn{Role: models.RoleAssistant, Text: cumulative})
	s.live = len(s.turns) - 1
}

// ApplyFragment records cumulative for exchange id. Fragments of an exchange
// that is no longer current (completed, reset, or superseded) are dropped and
// false is returned.
func (s *Session) ApplyFragment(id int, cumulative string) bool {
	if !s.inFlight || id != s.exchange {
		return false
	}
	s.RecordAssistantFragment(cumulative)
	return true
}

// Complete ends exchange id. A failure surfaces a notice and, if the user has
// not started typing something else, puts the failed message back into the
// input. Cancellations end the exchange silently. Stale ids are ignored.
func (s *Session) Complete(id int, err error) bool {
	if !s.inFlight || id != s.exchange {
		return false
	}

	s.inFlight = false
	s.live = -1
	s.accumulator = ""
	failed := s.pending
	s.pending = ""

	// A user cancel ends quietly; a timeout is a failure like any other.
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}

	s.Notify(NoticeError, apierrors.NoticeText(err))
	if strings.TrimSpace(s.input) == "" {
		s.input = failed
	}
	return true
}

// Reset clears the conversation back to the welcome turn and abandons any
// in-flight exchange. It reports whether an exchange was abandoned so the
// caller can cancel the request behind it.
func (s *Session) Reset() bool {
	abandoned := s.inFlight

	s.turns = []models.Turn{welcomeTurn()}
	s.accumulator = ""
	s.live = -1
	s.inFlight = false
	s.pending = ""
	// Bump the generation so late events of the abandoned exchange are stale.
	s.exchange++

	return abandoned
}

// ConnectivityFailed surfaces the advisory shown when the startup probe fails.
// Sending stays possible.
func (s *Session) ConnectivityFailed(err error) Notice {
	text := apierrors.ProbeMessage
	if err != nil && !apierrors.IsConnectivityError(err) && !apierrors.IsCanceled(err) {
		text = apierrors.NoticeText(err)
	}
	return s.Notify(NoticeWarning, text)
}

// Turns returns a copy of the conversation in display order.
func (s *Session) Turns() []models.Turn {
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Accumulator returns the reply text received so far for the in-flight
// exchange.
func (s *Session) Accumulator() string {
	return s.accumulator
}

// LastAssistantText returns the text of the newest assistant turn that is not
// the welcome turn, or "".
func (s *Session) LastAssistantText() string {
	for i := len(s.turns) - 1; i > 0; i-- {
		if s.turns[i].Role == models.RoleAssistant {
			return s.turns[i].Text
		}
	}
	return ""
}
