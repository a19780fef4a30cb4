package tools

import (
	"encoding/json"
	"fmt"
)

// RoleInformation is the role of every tool result.
const RoleInformation = "information"

// Envelope is the uniform result of a tool invocation. Payload fields are flattened
// next to id, role, success and error when marshaled.
type Envelope struct {
	ID      string
	Tool    string
	Success bool
	Error   string
	Payload any
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", e.Tool, err)
		}
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("%s payload is not a JSON object: %w", e.Tool, err)
			}
		}
	}

	put := func(key string, v any) {
		raw, _ := json.Marshal(v)
		fields[key] = raw
	}
	put("id", e.ID)
	put("role", RoleInformation)
	put("success", e.Success)
	if e.Error != "" {
		put("error", e.Error)
	} else {
		delete(fields, "error")
	}
	return json.Marshal(fields)
}
