package domain

import "encoding/json"

// AuthError is the single failure value surfaced by the authentication
// service client. Message is always populated; Errors carries field-level
// validation messages when the backend reports them (signup).
type AuthError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func (e *AuthError) Error() string {
	return e.Message
}

// UnmarshalJSON decodes the backend's error body defensively. The "errors"
// field has appeared as an object of field -> messages, a bare array of full
// messages, and a single string across backend revisions; unrecognized shapes
// are dropped rather than failing the decode.
func (e *AuthError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Message = raw.Message
	e.Errors = decodeFieldErrors(raw.Errors)
	return nil
}

func decodeFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}

	var byField map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byField); err == nil {
		out := make(map[string][]string, len(byField))
		for field, v := range byField {
			if msgs := decodeMessages(v); len(msgs) > 0 {
				out[field] = msgs
			}
		}
		if len(out) > 0 {
			return out
		}
		return nil
	}

	// Bare array or single string: fold under "base".
	if msgs := decodeMessages(raw); len(msgs) > 0 {
		return map[string][]string{"base": msgs}
	}
	return nil
}

func decodeMessages(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{one}
	}
	return nil
}
