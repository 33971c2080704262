package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/localchat/internal/config"
	apierrors "github.com/diogo/localchat/internal/errors"
	"github.com/diogo/localchat/internal/models"
)

func TestReadPrompt(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		stdin    string
		stdinTTY bool
		args     []string
		want     string
		wantOK   bool
	}{
		{name: "positional", stdinTTY: true, args: []string{"hello"}, want: "hello", wantOK: true},
		{name: "piped stdin", stdin: "from pipe", want: "from pipe", wantOK: true},
		{name: "empty pipe", stdin: "  \n", wantOK: false},
		{name: "positional wins over pipe", stdin: "ignored", args: []string{"arg"}, want: "arg", wantOK: true},
		{name: "file wins", file: "from file", stdinTTY: true, args: []string{"arg"}, want: "from file", wantOK: true},
		{name: "nothing", stdinTTY: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTest(t)
			env.stdin = tt.stdin
			env.stdinTTY = tt.stdinTTY

			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "prompt.md")
				if err := os.WriteFile(path, []byte(tt.file), 0o644); err != nil {
					t.Fatal(err)
				}
				fileFlag = path
			}

			got, ok, err := readPrompt(tt.args)
			if err != nil {
				t.Fatalf("readPrompt() error = %v", err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("readPrompt() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReadPrompt_MissingFile(t *testing.T) {
	setupTest(t)
	fileFlag = filepath.Join(t.TempDir(), "missing.md")

	if _, _, err := readPrompt(nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunQuery_StreamsReply(t *testing.T) {
	env := setupTest(t)
	env.client.ChatChunks = []string{delta("Hello"), "data: {broken\n", delta(" world"), "data: [DONE]\n"}
	modelFlag = "gpt-4"

	if err := runQuery(context.Background(), "  hi  "); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	if got := env.stdout.String(); got != "Hello world\n" {
		t.Errorf("stdout = %q, want %q", got, "Hello world\n")
	}
	if env.client.LastModel != "gpt-4" || env.client.LastMessage != "hi" {
		t.Errorf("request = (%q, %q)", env.client.LastModel, env.client.LastMessage)
	}
	if len(env.copied) != 0 {
		t.Error("nothing should be copied without --copy")
	}
}

func TestRunQuery_EmptyPrompt(t *testing.T) {
	env := setupTest(t)
	modelFlag = "gpt-4"

	if err := runQuery(context.Background(), "   "); err == nil {
		t.Error("expected error for empty prompt")
	}
	if env.client.Calls() != 0 {
		t.Error("empty prompt should not be sent")
	}
}

func TestRunQuery_NoModel(t *testing.T) {
	env := setupTest(t)

	err := runQuery(context.Background(), "hi")
	if !errors.Is(err, apierrors.ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", err)
	}
	if env.client.Calls() != 0 {
		t.Error("nothing should be sent without a model")
	}
}

func TestRunQuery_RequestError(t *testing.T) {
	env := setupTest(t)
	env.client.ChatErr = apierrors.NewRequestError(400, models.EndpointChatCompletions, "bad model")
	modelFlag = "gpt-4"

	err := runQuery(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if apierrors.GetHTTPStatus(err) != 400 {
		t.Errorf("status = %d, want 400", apierrors.GetHTTPStatus(err))
	}
	if env.stdout.Len() != 0 {
		t.Errorf("nothing should reach stdout, got %q", env.stdout.String())
	}
}

func TestRunQuery_DecoratedErrorGoesToStderr(t *testing.T) {
	env := setupTest(t)
	env.ttyOut = true
	env.client.ChatErr = apierrors.NewTransportError(models.EndpointChatCompletions, errors.New("refused"))
	modelFlag = "gpt-4"

	if err := runQuery(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(env.stderr.String(), apierrors.ConnectMessage) {
		t.Errorf("stderr should explain the failure, got %q", env.stderr.String())
	}
	if env.stdout.Len() != 0 {
		t.Errorf("nothing should reach stdout, got %q", env.stdout.String())
	}
}

func TestRunQuery_OutputAndCopy(t *testing.T) {
	env := setupTest(t)
	env.client.ChatChunks = []string{delta("saved"), delta(" text")}
	modelFlag = "gpt-4"
	copyFlag = true
	outputFlag = filepath.Join(t.TempDir(), "reply.md")

	if err := runQuery(context.Background(), "hi"); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	data, err := os.ReadFile(outputFlag)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(data) != "saved text" {
		t.Errorf("file = %q, want %q", data, "saved text")
	}
	if len(env.copied) != 1 || env.copied[0] != "saved text" {
		t.Errorf("copied = %v", env.copied)
	}
}

func TestRunQuery_CopyFromConfig(t *testing.T) {
	env := setupTest(t)
	env.client.ChatChunks = []string{delta("x")}

	cfg := config.DefaultConfig()
	cfg.DefaultModel = "mistral-large"
	cfg.CopyToClipboard = true
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}

	if err := runQuery(context.Background(), "hi"); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if env.client.LastModel != "mistral-large" {
		t.Errorf("model = %q, want the configured default", env.client.LastModel)
	}
	if len(env.copied) != 1 {
		t.Error("copy_to_clipboard should copy the reply")
	}
}

func TestRunQuery_RenderedReply(t *testing.T) {
	env := setupTest(t)
	env.ttyOut = true
	env.client.ChatChunks = []string{delta("# Title")}
	modelFlag = "gpt-4"
	renderFlag = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := runQuery(ctx, "hi"); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	out := env.stdout.String()
	if !strings.Contains(out, "GPT-4 Turbo") {
		t.Errorf("rendered output should carry the model label, got %q", out)
	}
	if !strings.Contains(out, "Title") {
		t.Errorf("rendered output should contain the reply, got %q", out)
	}
}

func TestLoadSettings_Precedence(t *testing.T) {
	setupTest(t)

	cfg := config.DefaultConfig()
	cfg.DefaultModel = "gemini-pro"
	cfg.BaseURL = "http://file.local/v1"
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}

	got := loadSettings()
	if got.DefaultModel != "gemini-pro" || got.BaseURL != "http://file.local/v1" {
		t.Errorf("file settings not applied: %+v", got)
	}

	t.Setenv(config.EnvModel, "GPT-4 Turbo")
	t.Setenv(config.EnvBaseURL, "http://env.local/v1/")
	got = loadSettings()
	if got.DefaultModel != "gpt-4" || got.BaseURL != "http://env.local/v1" {
		t.Errorf("environment should override the file: %+v", got)
	}

	modelFlag = "claude 3 haiku"
	baseURLFlag = "http://flag.local/v1"
	verboseFlag = true
	got = loadSettings()
	if got.DefaultModel != "claude-3-haiku" || got.BaseURL != "http://flag.local/v1" || !got.Verbose {
		t.Errorf("flags should override everything: %+v", got)
	}
}

func TestLoadSettings_DotEnv(t *testing.T) {
	setupTest(t)
	os.Unsetenv(config.EnvModel)

	if err := os.WriteFile(".env", []byte(config.EnvModel+"=mistral-large\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(config.EnvModel) })

	if got := loadSettings(); got.DefaultModel != "mistral-large" {
		t.Errorf("DefaultModel = %q, want value from .env", got.DefaultModel)
	}
}

func TestLoadSettings_InvalidConfigWarns(t *testing.T) {
	env := setupTest(t)

	path, err := config.GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := loadSettings()
	if got.BaseURL != models.DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", got.BaseURL)
	}
	if !strings.Contains(env.stderr.String(), "Warning") {
		t.Error("a broken config should be reported")
	}
}

func TestFormatErrorMessage(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}

	out := formatErrorMessage(apierrors.NewRequestError(404, models.EndpointChatCompletions, "model not found"), "Failed")
	if !strings.Contains(out, "model not found") || !strings.Contains(out, "HTTP Status: 404") {
		t.Errorf("unexpected output: %s", out)
	}

	out = formatErrorMessage(apierrors.NewTransportError(models.EndpointChatCompletions, errors.New("refused")), "Failed")
	if !strings.Contains(out, "Hint") {
		t.Errorf("transport errors should carry a hint: %s", out)
	}

	out = formatErrorMessage(context.DeadlineExceeded, "Failed")
	if !strings.Contains(out, "request_timeout") {
		t.Errorf("timeouts should point at request_timeout: %s", out)
	}
}
