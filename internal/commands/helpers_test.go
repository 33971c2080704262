package commands

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/diogo/localchat/internal/api"
	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/render"
	"github.com/diogo/localchat/internal/tui"
)

// fakeTUI records RunChat calls instead of starting a program
type fakeTUI struct {
	calls  int
	client api.GatewayClient
	opts   tui.Options
	err    error
}

func (f *fakeTUI) RunChat(client api.GatewayClient, opts tui.Options) error {
	f.calls++
	f.client = client
	f.opts = opts
	return f.err
}

type testEnv struct {
	client   *api.MockClient
	tui      *fakeTUI
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	copied   []string
	cfg      config.Config // what the last client was built with
	stdin    string
	stdinTTY bool
	ttyOut   bool
}

func delta(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n"
}

func resetFlags() {
	modelFlag = ""
	baseURLFlag = ""
	verboseFlag = false
	outputFlag = ""
	fileFlag = ""
	rawFlag = false
	renderFlag = false
	copyFlag = false
	remoteFlag = false
}

// setupTest isolates HOME and the working directory, resets the flags and
// swaps deps for in-memory fakes.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvModel, "")
	t.Setenv(render.EnvStyle, "")
	t.Chdir(t.TempDir())
	resetFlags()

	env := &testEnv{
		client:   &api.MockClient{},
		tui:      &fakeTUI{},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		stdinTTY: true,
	}

	old := deps
	deps = &Dependencies{
		NewClient: func(cfg config.Config, log *slog.Logger) (api.GatewayClient, error) {
			env.cfg = cfg
			return env.client, nil
		},
		TUI: env.tui,
		// Read lazily so tests can set env.stdin after setup.
		Stdin:       &lazyReader{env: env},
		Stdout:      env.stdout,
		Stderr:      env.stderr,
		StdinIsTTY:  func() bool { return env.stdinTTY },
		StdoutIsTTY: func() bool { return env.ttyOut },
		Copy: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	}

	t.Cleanup(func() {
		deps = old
		resetFlags()
	})

	return env
}

type lazyReader struct {
	env *testEnv
	r   *strings.Reader
}

func (l *lazyReader) Read(p []byte) (int, error) {
	if l.r == nil {
		l.r = strings.NewReader(l.env.stdin)
	}
	return l.r.Read(p)
}
