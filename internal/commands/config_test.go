package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/render"
)

// TestNewConfigCmd tests the config command constructor
func TestNewConfigCmd(t *testing.T) {
	cmd := NewConfigCmd()

	if cmd == nil {
		t.Fatal("NewConfigCmd() returned nil")
	}

	if cmd.Use != "config" {
		t.Errorf("expected Use 'config', got '%s'", cmd.Use)
	}

	if cmd.RunE == nil {
		t.Error("RunE should not be nil")
	}

	subs := map[string]bool{}
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, name := range []string{"show", "path", "set", "themes"} {
		if !subs[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}

	if configCmd == nil || configCmd.Use != "config" {
		t.Error("global configCmd should be initialized")
	}
}

func runConfigCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCmd_Show(t *testing.T) {
	setupTest(t)

	out, err := runConfigCmd(t)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if cfg != config.DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	out2, err := runConfigCmd(t, "show")
	if err != nil || out2 != out {
		t.Errorf("show should match bare config: %v", err)
	}
}

func TestConfigCmd_Path(t *testing.T) {
	setupTest(t)

	out, err := runConfigCmd(t, "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	want, _ := config.GetConfigPath()
	if strings.TrimSpace(out) != want {
		t.Errorf("path = %q, want %q", out, want)
	}
}

func TestConfigCmd_Set(t *testing.T) {
	setupTest(t)

	tests := []struct {
		key   string
		value string
		check func(config.Config) bool
	}{
		{"request_timeout", "30", func(c config.Config) bool { return c.RequestTimeout == 30 }},
		{"default_model", "gpt-4", func(c config.Config) bool { return c.DefaultModel == "gpt-4" }},
		{"probe_on_start", "false", func(c config.Config) bool { return !c.ProbeOnStart }},
		{"BASE_URL", "http://localhost:1234/v1", func(c config.Config) bool { return c.BaseURL == "http://localhost:1234/v1" }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			out, err := runConfigCmd(t, "set", tt.key, tt.value)
			if err != nil {
				t.Fatalf("config set failed: %v", err)
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("unexpected output %q", out)
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(cfg) {
				t.Errorf("%s not saved: %+v", tt.key, cfg)
			}
		})
	}
}

func TestConfigCmd_SetErrors(t *testing.T) {
	setupTest(t)

	if _, err := runConfigCmd(t, "set", "no_such_key", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := runConfigCmd(t, "set", "request_timeout", "soon"); err == nil {
		t.Error("expected error for invalid value")
	}
	if _, err := runConfigCmd(t, "set", "verbose"); err == nil {
		t.Error("expected error for missing value")
	}
}

func TestConfigCmd_Themes(t *testing.T) {
	setupTest(t)

	out, err := runConfigCmd(t, "themes")
	if err != nil {
		t.Fatalf("config themes failed: %v", err)
	}
	for _, name := range append(render.ThemeNames(), render.TUIThemeNames()...) {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %q", name)
		}
	}
}
