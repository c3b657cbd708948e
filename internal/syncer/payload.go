package syncer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Payload is the user-entered content sealed into a record's data field.
type Payload struct {
	Description string          `json:"description"`
	Settings    json.RawMessage `json:"settings,omitempty"`
}

// Seal encodes a payload into the opaque stored form. This is a
// placeholder encoding (base64 over JSON) and carries no confidentiality
// guarantee: opaque payload in, opaque payload out.
func Seal(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Open decodes a sealed payload.
func Open(data string) (Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Payload{}, fmt.Errorf("decoding payload: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("parsing payload: %w", err)
	}
	return p, nil
}
