package view

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskdesk/console/internal/store"
)

// Placeholder is shown for empty values.
const Placeholder = "—"

// FormatCurrency renders an amount in rupees with no decimals and Indian
// digit grouping (last three digits, then pairs): ₹12,34,567.
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Placeholder
	}

	sign := ""
	rounded := math.Round(amount)
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + "₹" + groupIndian(strconv.FormatFloat(rounded, 'f', 0, 64))
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatDateTime renders an upstream timestamp as "2 Jan, 03:04 PM" in local
// time. Empty input gives the placeholder; unparseable input is returned as is.
func FormatDateTime(s string) string {
	return formatDateTimeIn(s, time.Local)
}

func formatDateTimeIn(s string, loc *time.Location) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc).Format("2 Jan, 03:04 PM")
		}
	}
	return s
}

// FormatTime renders a local instant the way FormatDateTime does; the zero
// time gives the placeholder.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("2 Jan, 03:04 PM")
}

// Amount is the value shown for an item: gross merchandise value, falling
// back to item cost.
func Amount(item store.TransactionItem) float64 {
	if item.MRPGMV != 0 {
		return item.MRPGMV
	}
	return item.ItemCost
}

// Timestamp is the raw time shown for an item: created_at, falling back to
// the order date and time.
func Timestamp(item store.TransactionItem) string {
	if item.CreatedAt != "" {
		return item.CreatedAt
	}
	return strings.TrimSpace(item.OrderDate + " " + item.OrderTimestamp)
}

// ShortDevice abbreviates a device id for the table.
func ShortDevice(id string) string {
	if id == "" {
		return Placeholder
	}
	return truncate(id, 8)
}

// truncate keeps the first maxLen runes of s and marks the cut with "...".
func truncate(s string, maxLen int) string {
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// OrDefault returns s, or fallback when s is blank.
func OrDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
