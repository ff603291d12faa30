package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskLevel(t *testing.T) {
	for _, level := range AllRiskLevels {
		got, err := ParseRiskLevel(string(level))
		require.NoError(t, err)
		assert.Equal(t, level, got)
		assert.True(t, level.Valid())
	}

	_, err := ParseRiskLevel("BLOCK")
	assert.Error(t, err)
	assert.False(t, RiskLevel("").Valid())
}

func TestSignalValueUnmarshal(t *testing.T) {
	var signals []Signal
	raw := `[
		{"signal":"ip_country","value":"IN","why":"mismatch"},
		{"signal":"velocity","value":12.5,"why":"orders per hour"},
		{"signal":"new_device","value":true},
		{"signal":"email_age","value":null}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &signals))
	require.Len(t, signals, 4)
	assert.Equal(t, "IN", signals[0].Value.String())
	assert.Equal(t, "12.5", signals[1].Value.String())
	assert.Equal(t, "true", signals[2].Value.String())
	assert.Equal(t, "", signals[3].Value.String())

	var v SignalValue
	assert.Error(t, json.Unmarshal([]byte(`{"nested":1}`), &v))
}

func TestSignalValueMarshalsAsString(t *testing.T) {
	out, err := json.Marshal(SignalValue{raw: "42"})
	require.NoError(t, err)
	assert.JSONEq(t, `"42"`, string(out))
}

func TestTransactionItemLenientNumbers(t *testing.T) {
	raw := `[
		{"order_id":1055.0,"transaction_id":"5055","user_id":" 42 ","order_hour":"13","risk_score":"71.5","customer_name":"Asha","reasons":"velocity"},
		{"order_id":1056,"user_id":null,"order_hour":"late","mrp_gmv":{"amount":10},"total_items_in_cart":true,"confidence":"NaN"}
	]`

	var items []TransactionItem
	require.NoError(t, json.Unmarshal([]byte(raw), &items), "one odd field never fails the batch")
	require.Len(t, items, 2)

	assert.Equal(t, int64(1055), items[0].OrderID)
	assert.Equal(t, int64(5055), items[0].TransactionID)
	assert.Equal(t, int64(42), items[0].UserID)
	assert.Equal(t, 13, items[0].OrderHour)
	assert.Equal(t, 71.5, items[0].RiskScore)
	assert.Equal(t, "Asha", items[0].CustomerName)
	assert.Equal(t, "velocity", items[0].Reasons)

	assert.Equal(t, int64(1056), items[1].OrderID)
	assert.Zero(t, items[1].UserID)
	assert.Zero(t, items[1].OrderHour)
	assert.Zero(t, items[1].MRPGMV)
	assert.Zero(t, items[1].TotalItemsInCart)
	assert.Zero(t, items[1].Confidence)
}

func TestTransactionItemRoundTripsFields(t *testing.T) {
	in := TransactionItem{OrderID: 7, UserID: 9, RiskScore: 33, MRPGMV: 1499.5, RiskLevel: "review", OpsNotes: "called customer"}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out TransactionItem
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
