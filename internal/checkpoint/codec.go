package checkpoint

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"loom/internal/session"
)

// encodeState serializes a state snapshot for storage.
func encodeState(state *session.State) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("encode state: state is nil")
	}
	if strings.TrimSpace(state.SessionID) == "" {
		return nil, fmt.Errorf("encode state: session id is empty")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// decodeState deserializes a stored snapshot into a fresh State detached from
// any engine working copy.
func decodeState(data []byte) (*session.State, error) {
	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}
