package api

import (
	"context"
	"io"
	"sync"
)

// MockClient is a mock implementation of GatewayClient for testing
type MockClient struct {
	// Mock return values
	BaseURLVal string
	ChatChunks []string
	ChatErr    error
	ProbeErr   error
	ModelIDs   []string
	ModelsErr  error

	// Call counters/recorders
	mu          sync.Mutex
	ChatCalls   int
	ProbeCalls  int
	LastModel   string
	LastMessage string
}

// Ensure MockClient implements GatewayClient
var _ GatewayClient = (*MockClient)(nil)

func (m *MockClient) Chat(ctx context.Context, modelID, message string) (*Stream, error) {
	m.mu.Lock()
	m.ChatCalls++
	m.LastModel = modelID
	m.LastMessage = message
	m.mu.Unlock()

	if m.ChatErr != nil {
		return nil, m.ChatErr
	}
	return NewStreamFromReader(ctx, NewChunkReader(m.ChatChunks...)), nil
}

func (m *MockClient) Probe(ctx context.Context) error {
	m.mu.Lock()
	m.ProbeCalls++
	m.mu.Unlock()
	return m.ProbeErr
}

func (m *MockClient) ListModels(ctx context.Context) ([]string, error) {
	return m.ModelIDs, m.ModelsErr
}

func (m *MockClient) BaseURL() string {
	if m.BaseURLVal == "" {
		return "http://mock.local/v1"
	}
	return m.BaseURLVal
}

// Calls returns the number of Chat calls made so far
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ChatCalls
}

// chunkReader returns exactly one chunk per Read, mimicking how a network
// body delivers data in pieces that need not align with lines.
type chunkReader struct {
	chunks []string
	cur    []byte
}

// NewChunkReader returns a reader that yields each chunk from a separate Read.
func NewChunkReader(chunks ...string) io.Reader {
	return &chunkReader{chunks: chunks}
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.cur) == 0 {
		if len(r.chunks) == 0 {
			return 0, io.EOF
		}
		r.cur = []byte(r.chunks[0])
		r.chunks = r.chunks[1:]
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}
