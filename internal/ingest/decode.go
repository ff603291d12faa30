package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/riskdesk/console/internal/store"
)

var (
	// ErrEmptyResponse is returned when the body carries no response object
	// (null, or an empty array).
	ErrEmptyResponse = errors.New("empty decision response")

	// ErrDecode wraps any body that is not a response object or an array of them.
	ErrDecode = errors.New("decode decision response")
)

// DecodeResponse parses a webhook body. The webhook sometimes wraps its
// payload in a single-element array; the first element is used in that case.
func DecodeResponse(body []byte) (*store.RiskDecisionResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyResponse
	}

	switch trimmed[0] {
	case '[':
		var wrapped []json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if len(wrapped) == 0 {
			return nil, ErrEmptyResponse
		}
		return DecodeResponse(wrapped[0])

	case '{':
		var resp store.RiskDecisionResponse
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return &resp, nil

	default:
		return nil, fmt.Errorf("%w: unexpected body starting with %q", ErrDecode, trimmed[0])
	}
}
