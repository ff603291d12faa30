package view

import (
	"math"
	"strings"

	"github.com/riskdesk/console/internal/store"
)

// Tone is the badge styling for a risk level.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneNeutral Tone = "neutral"
)

// RiskTone maps a risk level to its badge tone. Unknown levels are neutral.
func RiskTone(level string) Tone {
	switch store.RiskLevel(level) {
	case store.RiskPass:
		return ToneSuccess
	case store.RiskReview:
		return ToneWarning
	case store.RiskBlock:
		return ToneDanger
	default:
		return ToneNeutral
	}
}

// BadgeLabel is the text shown in a status badge: known levels upper-cased,
// anything else verbatim.
func BadgeLabel(level string) string {
	if RiskTone(level) == ToneNeutral {
		return level
	}
	return strings.ToUpper(level)
}

// ScoreBand is the color band of a risk score.
type ScoreBand string

const (
	BandLow    ScoreBand = "low"
	BandMedium ScoreBand = "medium"
	BandHigh   ScoreBand = "high"
)

// Score band thresholds on the 0-100 scale.
const (
	lowBelow  = 20
	highAbove = 70
)

// ClampScore rounds a raw score and clamps it into [0, 100].
func ClampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return roundHalfUp(math.Max(0, math.Min(100, score)))
}

// ScoreBandOf bands a score: below 20 low, 20 to 70 medium, above 70 high.
func ScoreBandOf(score float64) ScoreBand {
	s := ClampScore(score)
	switch {
	case s < lowBelow:
		return BandLow
	case s > highAbove:
		return BandHigh
	default:
		return BandMedium
	}
}

// BandTone gives the tone a score band is drawn in.
func BandTone(b ScoreBand) Tone {
	switch b {
	case BandLow:
		return ToneSuccess
	case BandHigh:
		return ToneDanger
	default:
		return ToneWarning
	}
}
