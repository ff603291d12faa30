// Package store provides the data models for risk decisions returned by the
// upstream decision webhook.
package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RiskLevel is the categorical decision outcome used as a fetch filter.
type RiskLevel string

// Risk levels. RiskAll means no server-side filter.
const (
	RiskAll    RiskLevel = "all"
	RiskPass   RiskLevel = "pass"
	RiskReview RiskLevel = "review"
	RiskBlock  RiskLevel = "block"
)

// AllRiskLevels lists the filter values in the order the filter bar shows them.
var AllRiskLevels = []RiskLevel{RiskAll, RiskPass, RiskReview, RiskBlock}

// ParseRiskLevel validates a filter value.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, level := range AllRiskLevels {
		if string(level) == s {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// Valid reports whether l is one of the four filter values.
func (l RiskLevel) Valid() bool {
	_, err := ParseRiskLevel(string(l))
	return err == nil
}

// TransactionItem is one risk-scored transaction. Items are never mutated
// after decode; a refresh replaces the whole batch.
type TransactionItem struct {
	RowNumber     int64 `json:"row_number"`
	OrderID       int64 `json:"order_id"`
	TransactionID int64 `json:"transaction_id"`
	UserID        int64 `json:"user_id"`

	DeviceID       string `json:"device_id"`
	OrderTimestamp string `json:"order_timestamp"`
	OrderDate      string `json:"order_date"`
	OrderHour      int    `json:"order_hour"`
	OrderDayOfWeek int    `json:"order_day_of_week"`

	MRPGMV             float64 `json:"mrp_gmv"`
	ItemCost           float64 `json:"item_cost"`
	TotalItemsInCart   int     `json:"total_items_in_cart"`
	CustomerName       string  `json:"customer_name"`
	CartItemNames      string  `json:"cart_item_names"`
	CartItemCategories string  `json:"cart_item_categories"`

	// RiskScore is nominally an integer in 0-100 but is not trusted to be.
	RiskScore         float64 `json:"risk_score"`
	RiskLevel         string  `json:"risk_level"`
	RecommendedAction string  `json:"recommended_action"`
	Confidence        float64 `json:"confidence"`

	// Reasons is a "|" delimited list of reason phrases.
	Reasons string `json:"reasons"`

	// TopSignalsJSON is a serialized []Signal.
	TopSignalsJSON string `json:"top_signals_json"`

	OpsStatus     string `json:"ops_status"`
	OpsDecision   string `json:"ops_decision"`
	OpsNotes      string `json:"ops_notes"`
	CreatedAt     string `json:"created_at"`
	LastUpdatedAt string `json:"last_updated_at"`
}

// UnmarshalJSON decodes an item leniently: a numeric field sent as a float or
// a numeric string is accepted, and anything else in a numeric field reads as
// zero instead of failing the whole batch.
func (t *TransactionItem) UnmarshalJSON(data []byte) error {
	type plain TransactionItem
	aux := struct {
		*plain
		RowNumber        looseNumber `json:"row_number"`
		OrderID          looseNumber `json:"order_id"`
		TransactionID    looseNumber `json:"transaction_id"`
		UserID           looseNumber `json:"user_id"`
		OrderHour        looseNumber `json:"order_hour"`
		OrderDayOfWeek   looseNumber `json:"order_day_of_week"`
		MRPGMV           looseNumber `json:"mrp_gmv"`
		ItemCost         looseNumber `json:"item_cost"`
		TotalItemsInCart looseNumber `json:"total_items_in_cart"`
		RiskScore        looseNumber `json:"risk_score"`
		Confidence       looseNumber `json:"confidence"`
	}{plain: (*plain)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.RowNumber = aux.RowNumber.int64()
	t.OrderID = aux.OrderID.int64()
	t.TransactionID = aux.TransactionID.int64()
	t.UserID = aux.UserID.int64()
	t.OrderHour = int(aux.OrderHour.int64())
	t.OrderDayOfWeek = int(aux.OrderDayOfWeek.int64())
	t.MRPGMV = float64(aux.MRPGMV)
	t.ItemCost = float64(aux.ItemCost)
	t.TotalItemsInCart = int(aux.TotalItemsInCart.int64())
	t.RiskScore = float64(aux.RiskScore)
	t.Confidence = float64(aux.Confidence)
	return nil
}

// looseNumber accepts a JSON number or a numeric string. Other values,
// including null, decode to zero.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = looseNumber(f)
	return nil
}

func (n looseNumber) int64() int64 {
	return int64(math.Round(float64(n)))
}

// Signal is one named factor behind a risk score.
type Signal struct {
	Signal string      `json:"signal"`
	Value  SignalValue `json:"value"`
	Why    string      `json:"why"`
}

// SignalValue holds a signal value that upstream sends either as a string or
// as a number.
type SignalValue struct {
	raw string
}

// String returns the value as displayed.
func (v SignalValue) String() string {
	return v.raw
}

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (v *SignalValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.raw = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v.raw = n.String()
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.raw = strconv.FormatBool(b)
		return nil
	}

	if string(data) == "null" {
		v.raw = ""
		return nil
	}

	return fmt.Errorf("signal value must be a string or number, got %s", string(data))
}

// MarshalJSON emits the value as a string.
func (v SignalValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// DecisionQuery echoes the parameters a response was produced for.
type DecisionQuery struct {
	RiskLevel string `json:"risk_level"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}

// RiskDecisionResponse is one snapshot of decisions. Count is the
// server-reported total and may exceed len(Items).
type RiskDecisionResponse struct {
	OK    bool              `json:"ok"`
	Query DecisionQuery     `json:"query"`
	Count int               `json:"count"`
	Items []TransactionItem `json:"items"`
}
