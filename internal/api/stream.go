package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/diogo/localchat/internal/logger"
	"github.com/diogo/localchat/internal/models"
)

// readBufferSize is the size of each read from the response body.
const readBufferSize = 4096

// LineAssembler reassembles newline-terminated lines from arbitrarily sized
// chunks. Bytes after the last newline are held until the next chunk, so a
// line (or a multi-byte UTF-8 character) split across chunks is emitted whole.
type LineAssembler struct {
	buf []byte
}

// Feed appends chunk and returns every line it completed, without the
// trailing "\n" or "\r\n".
func (a *LineAssembler) Feed(chunk []byte) []string {
	a.buf = append(a.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(a.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(a.buf[:i], []byte{'\r'})))
		a.buf = a.buf[i+1:]
	}

	// Compact so the backing array does not grow without bound.
	if len(a.buf) == 0 {
		a.buf = nil
	}
	return lines
}

// Flush returns the buffered partial line, if any, and resets the assembler.
func (a *LineAssembler) Flush() (string, bool) {
	if len(a.buf) == 0 {
		return "", false
	}
	line := string(bytes.TrimSuffix(a.buf, []byte{'\r'}))
	a.buf = nil
	return line, true
}

// Pending returns the number of buffered bytes not yet part of a full line.
func (a *LineAssembler) Pending() int {
	return len(a.buf)
}

type lineKind int

const (
	lineIgnored lineKind = iota
	lineDone
	lineMalformed
	lineFragment
)

func classifyLine(line string) (lineKind, string) {
	payload, ok := strings.CutPrefix(line, models.StreamDataPrefix)
	if !ok {
		return lineIgnored, ""
	}

	payload = strings.TrimSpace(payload)
	if payload == models.StreamDone {
		return lineDone, ""
	}
	if !gjson.Valid(payload) {
		return lineMalformed, ""
	}

	// Role and finish chunks carry no content.
	content := gjson.Get(payload, models.PathDeltaContent)
	if !content.Exists() || content.Type == gjson.Null {
		return lineIgnored, ""
	}
	if content.Type != gjson.String {
		return lineMalformed, ""
	}
	if content.Str == "" {
		return lineIgnored, ""
	}
	return lineFragment, content.Str
}

// ParseLine extracts the content fragment carried by one stream line.
// It reports false for lines without the "data: " prefix, for the [DONE]
// sentinel, for payloads that are not JSON or lack a string at
// choices[0].delta.content, and for empty fragments.
func ParseLine(line string) (string, bool) {
	kind, fragment := classifyLine(line)
	return fragment, kind == lineFragment
}

// Update is emitted for every non-empty fragment received.
type Update struct {
	// Fragment is the text carried by the line just parsed.
	Fragment string
	// Text is everything received so far for this reply.
	Text string
}

// Stream reads a streamed chat completion incrementally.
// It is not safe for concurrent use.
type Stream struct {
	ctx       context.Context
	body      io.ReadCloser
	log       *slog.Logger
	assembler LineAssembler
	pending   []string
	text      strings.Builder
	buf       []byte
	done      bool
	skipped   int
	closed    bool
}

func newStream(ctx context.Context, body io.ReadCloser, log *slog.Logger) *Stream {
	if log == nil {
		log = logger.Discard()
	}
	return &Stream{
		ctx:  ctx,
		body: body,
		log:  log,
		buf:  make([]byte, readBufferSize),
	}
}

// NewStreamFromReader wraps an arbitrary reader as a Stream. ctx is checked
// before each read; a read already blocked in r is not interrupted.
func NewStreamFromReader(ctx context.Context, r io.Reader) *Stream {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return newStream(ctx, rc, nil)
}

// Next blocks until the next fragment arrives and returns the updated
// accumulator. It returns io.EOF once the transport reports end of data;
// a connection closed early is treated the same way. A cancelled context
// is returned as its error.
func (s *Stream) Next() (Update, error) {
	for {
		for len(s.pending) > 0 {
			line := s.pending[0]
			s.pending = s.pending[1:]

			kind, fragment := classifyLine(line)
			switch kind {
			case lineMalformed:
				s.skipped++
				s.log.Debug("skipping malformed stream line", "line", line)
			case lineFragment:
				s.text.WriteString(fragment)
				return Update{Fragment: fragment, Text: s.text.String()}, nil
			}
		}

		if s.done {
			return Update{}, io.EOF
		}
		if err := s.ctx.Err(); err != nil {
			return Update{}, err
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.pending = append(s.pending, s.assembler.Feed(s.buf[:n])...)
		}
		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return Update{}, ctxErr
			}
			if !errors.Is(err, io.EOF) {
				s.log.Warn("stream ended with read error", logger.ERROR, err)
			}
			s.done = true
			if tail, ok := s.assembler.Flush(); ok {
				s.pending = append(s.pending, tail)
			}
		}
	}
}

// Text returns everything received so far.
func (s *Stream) Text() string {
	return s.text.String()
}

// Skipped returns how many malformed lines were dropped.
func (s *Stream) Skipped() int {
	return s.skipped
}

// Close releases the underlying body. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// Collect drains s, calling onUpdate (if non-nil) for every update, and
// returns the final text. The stream is closed on return.
func Collect(s *Stream, onUpdate func(Update)) (string, error) {
	defer s.Close()

	for {
		u, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.Text(), nil
			}
			return s.Text(), err
		}
		if onUpdate != nil {
			onUpdate(u)
		}
	}
}
