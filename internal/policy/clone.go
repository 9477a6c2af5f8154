package policy

import (
	"slices"

	"pcps/pkg/field"
)

// Clone returns a deep copy that shares no slices, maps or raw JSON with p.
// Nil slices stay nil so absent lists remain absent.
func (p Policy) Clone() Policy {
	return Policy{
		Schedule:      field.Map(p.Schedule, Schedule.clone),
		TimeLimits:    field.Map(p.TimeLimits, TimeLimits.clone),
		Content:       field.Map(p.Content, Content.clone),
		Apps:          field.Map(p.Apps, Apps.clone),
		Communication: field.Map(p.Communication, Communication.clone),
		Spending:      p.Spending,
		Status:        p.Status,
		Overrides:     field.Map(p.Overrides, Overrides.clone),
		Extensions:    p.Extensions.Clone(),
	}
}

// Clone deep-copies the namespace maps and their raw values, which come out
// in canonical form.
func (e Extensions) Clone() Extensions {
	if e == nil {
		return nil
	}
	out := make(Extensions, len(e))
	for ns, kv := range e {
		out[ns] = canonicalRawMap(kv)
	}
	return out
}

func (s Schedule) clone() Schedule {
	out := s
	out.Custom = cloneEach(s.Custom, func(c CustomSchedule) CustomSchedule {
		c.Days = slices.Clone(c.Days)
		return c
	})
	return out
}

func (t TimeLimits) clone() TimeLimits {
	out := t
	out.ByCategory = slices.Clone(t.ByCategory)
	out.ByApp = slices.Clone(t.ByApp)
	return out
}

func (w WebFilter) clone() WebFilter {
	out := w
	out.Allowlist = slices.Clone(w.Allowlist)
	out.Blocklist = slices.Clone(w.Blocklist)
	return out
}

func (c Content) clone() Content {
	out := c
	out.Web = field.Map(c.Web, WebFilter.clone)
	return out
}

func (a Apps) clone() Apps {
	out := a
	out.Blocked = slices.Clone(a.Blocked)
	out.AlwaysAllowed = slices.Clone(a.AlwaysAllowed)
	return out
}

func (c Communication) clone() Communication {
	out := c
	out.AllowedContacts = cloneEach(c.AllowedContacts, func(ct Contact) Contact {
		ct.Identifiers = slices.Clone(ct.Identifiers)
		return ct
	})
	return out
}

func (o Overrides) clone() Overrides {
	out := o
	out.TemporaryRules = cloneEach(o.TemporaryRules, TemporaryRule.clone)
	return out
}

// cloneEach copies s element by element, keeping nil as nil.
func cloneEach[T any](s []T, fn func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}
