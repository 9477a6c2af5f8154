package policy

import (
	"bytes"
	"encoding/json"
)

// canonicalRaw returns a fresh copy of v in the form encoding/json writes raw
// values: compact, with <, > and & escaped. Applying it to its own output or
// to a marshal/unmarshal round trip of it yields the same bytes, so a
// committed document and its reload compare equal. Invalid JSON is copied
// unchanged and rejected later by the encoder.
func canonicalRaw(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, v); err != nil {
		return bytes.Clone(v)
	}
	var out bytes.Buffer
	json.HTMLEscape(&out, compact.Bytes())
	return out.Bytes()
}

func canonicalRawMap(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = canonicalRaw(v)
	}
	return out
}

// UnmarshalJSON keeps raw values in canonical form.
func (e *Extensions) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Extensions(raw).Clone()
	return nil
}
