// Package widgets renders the pattern grid and supporting legends for the
// terminal status display.
package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-sequence-arp/engine"
	"go-sequence-arp/theme"
)

// RenderStep renders a single step glyph, styled by the theme's role colors
// for its current state (rest, enabled, disabled, or under the playhead).
func RenderStep(t *theme.Theme, s engine.Step, isPlayhead, beyondLength bool) string {
	var glyph rune
	var color lipgloss.Color

	switch {
	case beyondLength:
		glyph, color = t.Symbols.StepBeyond, t.Muted()
	case isPlayhead:
		glyph, color = t.Symbols.StepPlayhead, t.Cursor()
	case !s.Enabled:
		glyph, color = t.Symbols.StepDisabled, t.Muted()
	case s.NoteIndex == engine.RestIndex:
		glyph, color = t.Symbols.StepRest, t.Muted()
	default:
		glyph, color = t.Symbols.StepEnabled, t.Accent()
	}

	return lipgloss.NewStyle().Foreground(color).Render(string(glyph))
}

// RenderPatternRow renders one pattern's first Length steps left to right,
// or all MaxPatternSteps steps when Length is 0 or above MaxPatternSteps.
// playheadIdx is the index currently sounding, or -1 if the pattern is idle.
func RenderPatternRow(t *theme.Theme, cfg *engine.PatternConfig, playheadIdx int) string {
	length := cfg.Length
	if length <= 0 || length > engine.MaxPatternSteps {
		length = engine.MaxPatternSteps
	}

	var out strings.Builder
	for i := 0; i < length; i++ {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderStep(t, cfg.Steps[i], i == playheadIdx, false))
	}
	return out.String()
}

// RenderLegendItem renders "<glyph> Name - description" using an explicit
// role color rather than a raw RGB triple.
func RenderLegendItem(color lipgloss.Color, glyph rune, name, desc string) string {
	styled := lipgloss.NewStyle().Foreground(color).Render(string(glyph))
	return fmt.Sprintf("  %s %s - %s", styled, name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way.
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings.
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description.
type KeyBinding struct {
	Key  string
	Desc string
}
