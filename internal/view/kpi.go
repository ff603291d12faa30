// Package view derives everything the presentation surfaces show from a
// decision snapshot: KPIs, search results, pages, row styling and decoded
// drawer content. All functions are pure and never modify the snapshot.
package view

import (
	"math"
	"strconv"

	"github.com/riskdesk/console/internal/store"
)

// KPIs are aggregate figures over the fetched items. Total is the
// server-reported count; everything else covers only what was fetched, since
// the webhook exposes no per-level aggregates.
type KPIs struct {
	Total        int    `json:"total"`
	Fetched      int    `json:"fetched"`
	Passed       int    `json:"passed"`
	Review       int    `json:"review"`
	Blocked      int    `json:"blocked"`
	PassedPct    string `json:"passed_pct"`
	ReviewPct    string `json:"review_pct"`
	BlockedPct   string `json:"blocked_pct"`
	AvgRiskScore int    `json:"avg_risk_score"`
}

// ComputeKPIs aggregates a snapshot. A nil or empty snapshot yields zero
// counts and "0.0" percentages.
func ComputeKPIs(resp *store.RiskDecisionResponse) KPIs {
	k := KPIs{PassedPct: "0.0", ReviewPct: "0.0", BlockedPct: "0.0"}
	if resp == nil {
		return k
	}

	k.Total = resp.Count
	k.Fetched = len(resp.Items)
	if k.Fetched == 0 {
		return k
	}

	var scoreSum float64
	for _, item := range resp.Items {
		switch store.RiskLevel(item.RiskLevel) {
		case store.RiskPass:
			k.Passed++
		case store.RiskReview:
			k.Review++
		case store.RiskBlock:
			k.Blocked++
		}
		scoreSum += item.RiskScore
	}

	k.PassedPct = percent(k.Passed, k.Fetched)
	k.ReviewPct = percent(k.Review, k.Fetched)
	k.BlockedPct = percent(k.Blocked, k.Fetched)
	k.AvgRiskScore = roundHalfUp(scoreSum / float64(k.Fetched))
	return k
}

// percent formats part/whole*100 with one decimal place.
func percent(part, whole int) string {
	if whole == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(part)/float64(whole)*100, 'f', 1, 64)
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
