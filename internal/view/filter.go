package view

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/riskdesk/console/internal/store"
)

// FilterItems keeps items whose order, user or transaction id (in decimal) or
// customer name contains term, ignoring case. An empty term keeps everything.
// Order is preserved. The returned slice may share storage with items.
func FilterItems(items []store.TransactionItem, term string) []store.TransactionItem {
	if term == "" {
		return items
	}

	needle := strings.ToLower(term)
	out := make([]store.TransactionItem, 0, len(items))
	for _, item := range items {
		if matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item store.TransactionItem, needle string) bool {
	return strings.Contains(strconv.FormatInt(item.OrderID, 10), needle) ||
		strings.Contains(strconv.FormatInt(item.UserID, 10), needle) ||
		strings.Contains(strconv.FormatInt(item.TransactionID, 10), needle) ||
		strings.Contains(strings.ToLower(item.CustomerName), needle)
}

// SortKey selects a table ordering.
type SortKey string

// Sort keys. SortNone keeps the server's order.
const (
	SortNone      SortKey = ""
	SortOrderID   SortKey = "order_id"
	SortRiskScore SortKey = "risk_score"
	SortAmount    SortKey = "amount"
	SortCreatedAt SortKey = "created_at"
)

// SortKeys lists the orderings in the order the table cycles through them.
var SortKeys = []SortKey{SortNone, SortRiskScore, SortAmount, SortCreatedAt, SortOrderID}

// ParseSortKey maps a query value to a SortKey; unknown values select SortNone.
func ParseSortKey(s string) SortKey {
	for _, k := range SortKeys {
		if string(k) == s {
			return k
		}
	}
	return SortNone
}

// SortItems returns a stably sorted copy of items. Timestamps are compared
// as strings, which orders the ISO 8601 values upstream sends.
func SortItems(items []store.TransactionItem, key SortKey, desc bool) []store.TransactionItem {
	if key == SortNone {
		return items
	}

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b store.TransactionItem) int {
		var c int
		switch key {
		case SortOrderID:
			c = cmp.Compare(a.OrderID, b.OrderID)
		case SortRiskScore:
			c = cmp.Compare(a.RiskScore, b.RiskScore)
		case SortAmount:
			c = cmp.Compare(Amount(a), Amount(b))
		case SortCreatedAt:
			c = strings.Compare(Timestamp(a), Timestamp(b))
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}
