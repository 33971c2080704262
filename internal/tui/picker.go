package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/localchat/internal/models"
)

// maxPickerItems is how many models the picker shows at once.
const maxPickerItems = 8

// picker is the model selection overlay
type picker struct {
	open   bool
	cursor int
	filter string
}

func (m *Model) openPicker() {
	m.picker = picker{open: true}

	// Start on the current selection.
	for i, model := range m.filteredModels() {
		if model.ID == m.session.Model() {
			m.picker.cursor = i
			break
		}
	}
}

func (m *Model) closePicker() {
	m.picker = picker{}
}

// updatePicker handles keys while the picker is open
func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtered := m.filteredModels()

	switch msg.String() {
	case "ctrl+c":
		m.abort()
		return m, tea.Quit

	case "esc", "tab":
		m.closePicker()

	case "up", "ctrl+p":
		if len(filtered) > 0 {
			m.picker.cursor--
			if m.picker.cursor < 0 {
				m.picker.cursor = len(filtered) - 1
			}
		}

	case "down", "ctrl+n":
		if len(filtered) > 0 {
			m.picker.cursor++
			if m.picker.cursor >= len(filtered) {
				m.picker.cursor = 0
			}
		}

	case "enter":
		if len(filtered) > 0 && m.picker.cursor < len(filtered) {
			selected := filtered[m.picker.cursor]
			m.session.SelectModel(selected.ID)
			m.log.Info("model selected", "model", selected.ID)
			m.closePicker()
			m.refresh(false)
		}

	case "backspace":
		if len(m.picker.filter) > 0 {
			runes := []rune(m.picker.filter)
			m.picker.filter = string(runes[:len(runes)-1])
			m.picker.cursor = 0
		}

	default:
		if msg.Type == tea.KeyRunes {
			m.picker.filter += string(msg.Runes)
			m.picker.cursor = 0
		}
	}

	return m, nil
}

// filteredModels returns the catalog filtered by the picker filter
func (m Model) filteredModels() []models.Model {
	catalog := models.Catalog()
	if m.picker.filter == "" {
		return catalog
	}

	filter := strings.ToLower(m.picker.filter)
	var filtered []models.Model
	for _, model := range catalog {
		if strings.Contains(strings.ToLower(model.DisplayName), filter) ||
			strings.Contains(strings.ToLower(model.ID), filter) {
			filtered = append(filtered, model)
		}
	}
	return filtered
}

// renderPicker renders the model selection overlay
func (m Model) renderPicker() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}

	var content strings.Builder

	title := pickerTitleStyle.Render("Select a model")
	if current := m.session.Model(); current != "" {
		title += hintStyle.Render(fmt.Sprintf("  (current: %s)", m.modelTitle()))
	}
	content.WriteString(title)
	content.WriteString("\n\n")

	if m.picker.filter != "" {
		content.WriteString(inputLabelStyle.Render("🔍 ") + m.picker.filter + "_")
		content.WriteString("\n\n")
	}

	filtered := m.filteredModels()
	if len(filtered) == 0 {
		content.WriteString(hintStyle.Render("  No models match filter"))
		content.WriteString("\n")
	} else {
		start := 0
		if m.picker.cursor >= maxPickerItems {
			start = m.picker.cursor - maxPickerItems + 1
		}
		end := min(start+maxPickerItems, len(filtered))

		if start > 0 {
			content.WriteString(hintStyle.Render("  ↑ more above"))
			content.WriteString("\n")
		}

		for i := start; i < end; i++ {
			model := filtered[i]
			cursor := "  "
			nameStyle := pickerItemStyle
			if i == m.picker.cursor {
				cursor = pickerCursorStyle.Render("▸ ")
				nameStyle = pickerSelectedStyle
			}

			line := cursor + nameStyle.Render(model.DisplayName) + " " + pickerIDStyle.Render(model.ID)
			if model.ID == m.session.Model() {
				line += pickerActiveStyle.Render("  ✓")
			}
			content.WriteString(line)
			content.WriteString("\n")
		}

		if end < len(filtered) {
			content.WriteString(hintStyle.Render("  ↓ more below"))
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")

	shortcuts := []string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Cancel"),
	}
	content.WriteString(strings.Join(shortcuts, "  │  "))

	return pickerBoxStyle.Width(width).Render(content.String())
}
