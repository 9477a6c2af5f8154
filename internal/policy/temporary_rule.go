package policy

import (
	"bytes"
	"encoding/json"
	"slices"

	"pcps/pkg/field"
)

// TemporaryRule is a dated, one-off exception. Rule kinds carry their own
// parameters (an app name, a site, extra minutes) which this version keeps in
// Extra without interpreting them.
type TemporaryRule struct {
	Type   OverrideType
	Date   string
	Reason field.Field[string]
	Extra  map[string]json.RawMessage
}

type temporaryRuleWire struct {
	Type   OverrideType        `json:"type"`
	Date   string              `json:"date"`
	Reason field.Field[string] `json:"reason,omitzero"`
}

var temporaryRuleKeys = []string{"type", "date", "reason"}

func (r TemporaryRule) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(temporaryRuleWire{Type: r.Type, Date: r.Date, Reason: r.Reason})
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return known, nil
	}

	extra := make(map[string]json.RawMessage, len(r.Extra))
	for k, v := range r.Extra {
		if isTemporaryRuleKey(k) {
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		return known, nil
	}
	rest, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}

	// Splice {"type":...} and {"x":...} into one object.
	var buf bytes.Buffer
	buf.Grow(len(known) + len(rest))
	buf.Write(known[:len(known)-1])
	buf.WriteByte(',')
	buf.Write(rest[1:])
	return buf.Bytes(), nil
}

func (r *TemporaryRule) UnmarshalJSON(data []byte) error {
	var known temporaryRuleWire
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range temporaryRuleKeys {
		delete(all, k)
	}

	r.Type = known.Type
	r.Date = known.Date
	r.Reason = known.Reason
	r.Extra = nil
	if len(all) > 0 {
		r.Extra = canonicalRawMap(all)
	}
	return nil
}

func (r TemporaryRule) clone() TemporaryRule {
	out := r
	out.Extra = canonicalRawMap(r.Extra)
	return out
}

func isTemporaryRuleKey(k string) bool {
	return slices.Contains(temporaryRuleKeys, k)
}
