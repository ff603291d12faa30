package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/riskdesk/console/internal/view"
)

// toneColor maps a badge tone to a cell color.
func toneColor(t view.Tone) tcell.Color {
	switch t {
	case view.ToneSuccess:
		return tcell.ColorGreen
	case view.ToneWarning:
		return tcell.ColorYellow
	case view.ToneDanger:
		return tcell.ColorRed
	default:
		return tcell.ColorWhite
	}
}

// toneTag maps a badge tone to a dynamic color tag name.
func toneTag(t view.Tone) string {
	switch t {
	case view.ToneSuccess:
		return "green"
	case view.ToneWarning:
		return "yellow"
	case view.ToneDanger:
		return "red"
	default:
		return "white"
	}
}
