package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// remoteEnvelope is the slice of a remote response body the runner
// interprets. Responses carry additional fields freely; everything the
// runner does not read stays untouched in the raw body.
type remoteEnvelope struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Links  json.RawMessage `json:"links"`
	Error  string          `json:"error"`
}

func decodeEnvelope(body []byte) (*remoteEnvelope, error) {
	var env remoteEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

// present reports whether a raw JSON field carries a real value.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
