package models

import "strings"

// Model is an entry of the static model catalog
type Model struct {
	ID          string
	DisplayName string
}

// Title returns the display name, falling back to the ID for models
// outside the catalog.
func (m Model) Title() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ID
}

// Catalog entries
var (
	ModelClaudeSonnet = Model{ID: "claude-3-sonnet", DisplayName: "Claude 3.5 Sonnet"}
	ModelGPT4         = Model{ID: "gpt-4", DisplayName: "GPT-4 Turbo"}
	ModelGeminiPro    = Model{ID: "gemini-pro", DisplayName: "Gemini 1.5 Pro"}
	ModelMistralLarge = Model{ID: "mistral-large", DisplayName: "Mistral Large"}
	ModelClaudeHaiku  = Model{ID: "claude-3-haiku", DisplayName: "Claude 3 Haiku"}
)

// Catalog returns the fixed list of selectable models, in display order
func Catalog() []Model {
	return []Model{
		ModelClaudeSonnet,
		ModelGPT4,
		ModelGeminiPro,
		ModelMistralLarge,
		ModelClaudeHaiku,
	}
}

// ModelByID returns the catalog entry with the given ID
func ModelByID(id string) (Model, bool) {
	for _, m := range Catalog() {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// ModelFromName resolves a flag or config value to a model. IDs and display
// names are both accepted (case-insensitive); unknown values are passed
// through as a bare ID since the server decides what it serves.
func ModelFromName(name string) Model {
	name = strings.TrimSpace(name)
	if name == "" {
		return Model{}
	}
	for _, m := range Catalog() {
		if strings.EqualFold(m.ID, name) || strings.EqualFold(m.DisplayName, name) {
			return m
		}
	}
	return Model{ID: name}
}

// CatalogIDs returns just the model IDs for flag help and completion
func CatalogIDs() []string {
	catalog := Catalog()
	ids := make([]string, len(catalog))
	for i, m := range catalog {
		ids[i] = m.ID
	}
	return ids
}
