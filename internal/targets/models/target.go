// Package models defines sync targets: remote platform adapters that receive
// a copy of the family document on every save.
package models

import (
	"strings"

	"github.com/google/uuid"
)

// Target is one configured platform adapter. Address is serialized as
// "endpoint" to match what adapters and existing clients already send.
type Target struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"endpoint"`
	Enabled bool   `json:"enabled"`
}

// NewTarget returns an enabled target with a fresh id and nothing else set.
func NewTarget() Target {
	return Target{ID: uuid.NewString(), Enabled: true}
}

// IsActive reports whether a save should deliver to t.
func (t Target) IsActive() bool {
	return t.Enabled && strings.TrimSpace(t.Address) != ""
}

// DisplayName falls back to the address when no name was given.
func (t Target) DisplayName() string {
	if strings.TrimSpace(t.Name) != "" {
		return t.Name
	}
	return t.Address
}

// Active filters list down to the targets a save delivers to, keeping order.
func Active(list []Target) []Target {
	out := make([]Target, 0, len(list))
	for _, t := range list {
		if t.IsActive() {
			out = append(out, t)
		}
	}
	return out
}

var suggestedVendors = []struct{ name, host string }{
	{"Apple Screen Time", "apple"},
	{"Google Family Link", "google"},
	{"Microsoft Family Safety", "microsoft"},
	{"Nintendo Parental Controls", "nintendo"},
	{"Amazon Kids+", "amazon"},
}

// Suggested returns the well-known adapters, disabled, each with a fresh id.
func Suggested() []Target {
	out := make([]Target, 0, len(suggestedVendors))
	for _, v := range suggestedVendors {
		out = append(out, Target{
			ID:      uuid.NewString(),
			Name:    v.name,
			Address: "https://pcps-adapter." + v.host + ".example/v1/family",
			Enabled: false,
		})
	}
	return out
}
