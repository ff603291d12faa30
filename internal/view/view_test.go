package view

import (
	"fmt"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/riskdesk/console/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeKPIsScenario(t *testing.T) {
	resp := &store.RiskDecisionResponse{
		OK:    true,
		Count: 3,
		Items: []store.TransactionItem{
			{RiskLevel: "pass", RiskScore: 10},
			{RiskLevel: "review", RiskScore: 45},
			{RiskLevel: "block", RiskScore: 90},
		},
	}

	k := ComputeKPIs(resp)
	assert.Equal(t, KPIs{
		Total:        3,
		Fetched:      3,
		Passed:       1,
		Review:       1,
		Blocked:      1,
		PassedPct:    "33.3",
		ReviewPct:    "33.3",
		BlockedPct:   "33.3",
		AvgRiskScore: 48,
	}, k)
}

func TestComputeKPIsEmpty(t *testing.T) {
	for _, resp := range []*store.RiskDecisionResponse{
		nil,
		{OK: true},
		{OK: true, Count: 500},
	} {
		k := ComputeKPIs(resp)
		assert.Equal(t, "0.0", k.PassedPct)
		assert.Equal(t, "0.0", k.ReviewPct)
		assert.Equal(t, "0.0", k.BlockedPct)
		assert.Equal(t, 0, k.AvgRiskScore)
	}
	assert.Equal(t, 500, ComputeKPIs(&store.RiskDecisionResponse{Count: 500}).Total, "total is the server count")
}

func TestComputeKPIsUnknownLevels(t *testing.T) {
	resp := &store.RiskDecisionResponse{Count: 10, Items: []store.TransactionItem{
		{RiskLevel: "pass", RiskScore: 1},
		{RiskLevel: "escalate", RiskScore: 2},
		{RiskLevel: "", RiskScore: 3},
		{RiskLevel: "block", RiskScore: 4},
	}}

	k := ComputeKPIs(resp)
	assert.LessOrEqual(t, k.Passed+k.Review+k.Blocked, k.Fetched)
	assert.Equal(t, 2, k.Passed+k.Review+k.Blocked)
	assert.Equal(t, "25.0", k.PassedPct)
	assert.Equal(t, "0.0", k.ReviewPct)
	assert.Equal(t, 3, k.AvgRiskScore, "2.5 rounds half up")
}

func TestFilterItems(t *testing.T) {
	items := []store.TransactionItem{
		{OrderID: 1055, UserID: 9, CustomerName: "Asha Rao"},
		{OrderID: 220, UserID: 1055, CustomerName: "Ben"},
		{OrderID: 3, UserID: 4, TransactionID: 991055, CustomerName: "Chitra"},
		{OrderID: 5, UserID: 6, CustomerName: "Dev"},
	}

	got := FilterItems(items, "1055")
	require.Len(t, got, 3)
	assert.Equal(t, int64(1055), got[0].OrderID)
	assert.Equal(t, int64(220), got[1].OrderID)
	assert.Equal(t, int64(3), got[2].OrderID)

	got = FilterItems(items, "aSHA")
	require.Len(t, got, 1)
	assert.Equal(t, "Asha Rao", got[0].CustomerName)

	assert.Len(t, FilterItems(items, ""), 4)
	assert.Empty(t, FilterItems(items, "zzz"))
}

func TestSortItems(t *testing.T) {
	items := []store.TransactionItem{
		{OrderID: 1, RiskScore: 50, MRPGMV: 100},
		{OrderID: 2, RiskScore: 10, ItemCost: 900},
		{OrderID: 3, RiskScore: 50, MRPGMV: 300},
	}

	byScore := SortItems(items, SortRiskScore, true)
	assert.Equal(t, []int64{1, 3, 2}, orderIDs(byScore), "stable for equal scores")

	byAmount := SortItems(items, SortAmount, false)
	assert.Equal(t, []int64{1, 3, 2}, orderIDs(byAmount))

	assert.Equal(t, []int64{1, 2, 3}, orderIDs(items), "the input is not reordered")
	assert.Equal(t, []int64{1, 2, 3}, orderIDs(SortItems(items, SortNone, true)))

	assert.Equal(t, SortAmount, ParseSortKey("amount"))
	assert.Equal(t, SortNone, ParseSortKey("bogus"))
}

func TestPager(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 50))
	assert.Equal(t, 1, TotalPages(1, 50))
	assert.Equal(t, 1, TotalPages(50, 50))
	assert.Equal(t, 2, TotalPages(51, 50))
	assert.Equal(t, 4, TotalPages(200, 50))

	p := NewPager(50)
	assert.False(t, p.Prev(), "prev on page 0 is a no-op")
	assert.Equal(t, 0, p.Index)

	require.True(t, p.Next(120))
	require.True(t, p.Next(120))
	assert.Equal(t, 2, p.Index)
	assert.False(t, p.Next(120), "next on the last page is a no-op")
	assert.Equal(t, 2, p.Index)
	assert.Len(t, p.Slice(make([]store.TransactionItem, 120)), 20)

	p.Clamp(60)
	assert.Equal(t, 1, p.Index)
	p.Clamp(0)
	assert.Equal(t, 0, p.Index)

	p.Index = 1
	p.Reset()
	assert.Equal(t, 0, p.Index)
	assert.False(t, p.Next(0))
}

func TestPaginateBounds(t *testing.T) {
	items := make([]store.TransactionItem, 7)
	assert.Len(t, Paginate(items, 0, 5), 5)
	assert.Len(t, Paginate(items, 1, 5), 2)
	assert.Nil(t, Paginate(items, 2, 5))
	assert.Nil(t, Paginate(items, -1, 5))
}

func TestClassification(t *testing.T) {
	assert.Equal(t, ToneSuccess, RiskTone("pass"))
	assert.Equal(t, ToneWarning, RiskTone("review"))
	assert.Equal(t, ToneDanger, RiskTone("block"))
	assert.Equal(t, ToneNeutral, RiskTone("manual"))
	assert.Equal(t, "REVIEW", BadgeLabel("review"))
	assert.Equal(t, "manual", BadgeLabel("manual"))

	tests := []struct {
		score float64
		want  ScoreBand
	}{
		{-15, BandLow},
		{0, BandLow},
		{19, BandLow},
		{19.4, BandLow},
		{19.5, BandMedium},
		{20, BandMedium},
		{70, BandMedium},
		{71, BandHigh},
		{100, BandHigh},
		{250, BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreBandOf(tt.score), "score %v", tt.score)
	}

	assert.Equal(t, 100, ClampScore(250))
	assert.Equal(t, 0, ClampScore(-3))
	assert.Equal(t, ToneDanger, BandTone(BandHigh))
}

func TestDecodeSignals(t *testing.T) {
	raw := `[{"signal":"new_device","value":1,"why":"first seen"},{"signal":"geo_mismatch","value":"IN/US","why":"ip vs billing"}]`

	first := DecodeSignals(raw)
	second := DecodeSignals(raw)
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "new_device", first[0].Signal)
	assert.Equal(t, "1", first[0].Value.String())
	assert.Equal(t, "IN/US", first[1].Value.String())
	assert.Equal(t, "geo mismatch", SignalLabel(first[1].Signal))

	for _, bad := range []string{"", "   ", "not json", "{", `{"signal":"x"}`, "null", `[{"value":{}}]`} {
		got := DecodeSignals(bad)
		assert.NotNil(t, got, "input %q", bad)
		assert.Empty(t, got, "input %q", bad)
	}
}

func TestSplitReasons(t *testing.T) {
	assert.Equal(t, []string{"new device", "high cart value", "night order"},
		SplitReasons(" new device |high cart value|| night order |"))
	assert.Empty(t, SplitReasons(""))
	assert.Empty(t, SplitReasons(" | | "))
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹0"},
		{999, "₹999"},
		{1000, "₹1,000"},
		{123456, "₹1,23,456"},
		{1234567.6, "₹12,34,568"},
		{-45000, "-₹45,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in))
	}
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, Placeholder, formatDateTimeIn("", time.UTC))
	assert.Equal(t, "5 Mar, 02:07 PM", formatDateTimeIn("2025-03-05T14:07:00Z", time.UTC))
	assert.Equal(t, "5 Mar, 02:07 PM", formatDateTimeIn("2025-03-05 14:07:00", time.UTC))
	assert.Equal(t, "yesterday", formatDateTimeIn("yesterday", time.UTC))
	assert.Equal(t, Placeholder, FormatTime(time.Time{}))
}

func TestItemFallbacks(t *testing.T) {
	assert.Equal(t, 250.0, Amount(store.TransactionItem{ItemCost: 250}))
	assert.Equal(t, 900.0, Amount(store.TransactionItem{MRPGMV: 900, ItemCost: 250}))
	assert.Equal(t, "2025-03-05 14:07:00", Timestamp(store.TransactionItem{OrderDate: "2025-03-05", OrderTimestamp: "14:07:00"}))
	assert.Equal(t, "abcdef12...", ShortDevice("abcdef1234567"))
	assert.Equal(t, Placeholder, ShortDevice(""))
	assert.Equal(t, "abcdefgh", ShortDevice("abcdefgh"))

	short := ShortDevice("ডিভাইস-১২৩৪৫৬")
	assert.True(t, utf8.ValidString(short))
	assert.Equal(t, "ডিভাইস-১...", short)
	assert.Equal(t, "ab...", truncate("ab€€", 2))
	assert.Equal(t, "€€", truncate("€€", 2))
	assert.Equal(t, "None", OrDefault("  ", "None"))
}

func TestBuild(t *testing.T) {
	items := make([]store.TransactionItem, 0, 120)
	for i := 1; i <= 120; i++ {
		level := "pass"
		if i%3 == 0 {
			level = "block"
		}
		items = append(items, store.TransactionItem{
			OrderID:      int64(i),
			CustomerName: fmt.Sprintf("Customer %d", i),
			RiskLevel:    level,
			RiskScore:    float64(i % 100),
		})
	}
	resp := &store.RiskDecisionResponse{OK: true, Count: 480, Items: items}

	page := Build(resp, Query{Page: 1})
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Equal(t, 120, page.Matched)
	assert.Equal(t, 480, page.KPIs.Total)
	require.Len(t, page.Rows, 50)
	assert.Equal(t, int64(51), page.Rows[0].Item.OrderID)

	page = Build(resp, Query{Search: "customer 11", Page: 7})
	assert.Equal(t, 0, page.PageIndex, "an out-of-range page is clamped")
	assert.Equal(t, 11, page.Matched, "11 and 110-119")
	assert.False(t, page.HasNext)

	row := page.Rows[0]
	assert.Equal(t, ToneSuccess, row.Tone)
	assert.Equal(t, "PASS", row.Badge)
	assert.Equal(t, BandLow, row.Band)

	empty := Build(nil, Query{})
	assert.Empty(t, empty.Rows)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestDetail(t *testing.T) {
	resp := &store.RiskDecisionResponse{Items: []store.TransactionItem{
		{OrderID: 7, Reasons: "a|b", TopSignalsJSON: `[{"signal":"velocity","value":4,"why":"4 orders/hour"}]`},
		{OrderID: 8, TopSignalsJSON: "{broken"},
	}}

	item, ok := FindByOrderID(resp, 7)
	require.True(t, ok)
	d := NewDetail(item)
	assert.Equal(t, []string{"a", "b"}, d.Reasons)
	require.Len(t, d.Signals, 1)
	assert.Equal(t, "4", d.Signals[0].Value.String())

	item, ok = FindByOrderID(resp, 8)
	require.True(t, ok)
	assert.Empty(t, NewDetail(item).Signals)

	_, ok = FindByOrderID(resp, 9)
	assert.False(t, ok)
	_, ok = FindByOrderID(nil, 7)
	assert.False(t, ok)
}

func orderIDs(items []store.TransactionItem) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.OrderID
	}
	return ids
}
