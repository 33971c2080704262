package models

import (
	"encoding/json"
	"testing"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog()

	if len(catalog) != 5 {
		t.Fatalf("Catalog() returned %d models, expected 5", len(catalog))
	}

	seen := make(map[string]bool)
	for _, m := range catalog {
		if m.ID == "" {
			t.Error("Model ID should not be empty")
		}
		if m.DisplayName == "" {
			t.Errorf("Model %s should have a display name", m.ID)
		}
		if seen[m.ID] {
			t.Errorf("duplicate model ID %s", m.ID)
		}
		seen[m.ID] = true
	}

	if catalog[0] != ModelClaudeSonnet {
		t.Errorf("first catalog entry = %v, want %v", catalog[0], ModelClaudeSonnet)
	}
}

func TestModelByID(t *testing.T) {
	m, ok := ModelByID("gpt-4")
	if !ok {
		t.Fatal("expected gpt-4 to be in the catalog")
	}
	if m.DisplayName != "GPT-4 Turbo" {
		t.Errorf("DisplayName = %s, want GPT-4 Turbo", m.DisplayName)
	}

	if _, ok := ModelByID("llama-3"); ok {
		t.Error("llama-3 should not be in the catalog")
	}
}

func TestModelFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected Model
	}{
		{"claude-3-sonnet", ModelClaudeSonnet},
		{"CLAUDE-3-HAIKU", ModelClaudeHaiku},
		{"Mistral Large", ModelMistralLarge},
		{"  gemini-pro  ", ModelGeminiPro},
		{"llama-3", Model{ID: "llama-3"}},
		{"", Model{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModelFromName(tt.name); got != tt.expected {
				t.Errorf("ModelFromName(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestModelTitle(t *testing.T) {
	if ModelGPT4.Title() != "GPT-4 Turbo" {
		t.Errorf("Title() = %s", ModelGPT4.Title())
	}
	if (Model{ID: "llama-3"}).Title() != "llama-3" {
		t.Error("Title() should fall back to the ID")
	}
}

func TestCatalogIDs(t *testing.T) {
	ids := CatalogIDs()
	want := []string{"claude-3-sonnet", "gpt-4", "gemini-pro", "mistral-large", "claude-3-haiku"}
	if len(ids) != len(want) {
		t.Fatalf("CatalogIDs() = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestNewChatRequest(t *testing.T) {
	req := NewChatRequest("gpt-4", "hello")

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"model":"gpt-4","messages":[{"role":"user","content":"hello"}],"stream":true}`
	if string(data) != want {
		t.Errorf("body = %s, want %s", data, want)
	}
}

func TestDefaultHeaders(t *testing.T) {
	headers := DefaultHeaders(PlaceholderToken)

	if headers["Authorization"] != "Bearer anything" {
		t.Errorf("Authorization = %q", headers["Authorization"])
	}
	if headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", headers["Content-Type"])
	}
}
