package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func problemsFor(t *testing.T, raw string) []string {
	t.Helper()
	var probs Problems
	Validate(decodePolicy(t, raw), "policy", &probs)
	return probs.List()
}

func TestValidateAcceptsDefaultsAndPartials(t *testing.T) {
	var probs Problems
	Validate(Default(), "policy", &probs)
	assert.True(t, probs.Empty(), probs.String())

	assert.Empty(t, problemsFor(t, `{}`))
	assert.Empty(t, problemsFor(t, `{"time_limits":{"by_category":[{"category":"educational","daily_minutes":null}]}}`))
	assert.Empty(t, problemsFor(t, `{"spending":{"monthly_budget":{"amount":5,"currency":"GBP"}}}`))
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bad clock", `{"schedule":{"weekday":{"allowed_from":"7am","allowed_until":"20:00"}}}`, "policy.schedule.weekday.allowed_from: must be HH:MM"},
		{"hour out of range", `{"schedule":{"weekend":{"allowed_from":"08:00","allowed_until":"24:00"}}}`, "policy.schedule.weekend.allowed_until"},
		{"custom without days", `{"schedule":{"custom":[{"days":[],"allowed_from":"07:00","allowed_until":"18:00"}]}}`, "policy.schedule.custom[0].days: must name at least one day"},
		{"unknown day", `{"schedule":{"custom":[{"days":["funday"],"allowed_from":"07:00","allowed_until":"18:00"}]}}`, `unknown day "funday"`},
		{"negative cap", `{"time_limits":{"daily":{"weekday":-5}}}`, "policy.time_limits.daily.weekday: must not be negative"},
		{"age rating", `{"content":{"max_age_rating":21}}`, "policy.content.max_age_rating: must be between 0 and 18"},
		{"web mode", `{"content":{"web":{"mode":"strict"}}}`, `unknown mode "strict"`},
		{"communication mode", `{"communication":{"mode":"everyone"}}`, "policy.communication.mode"},
		{"currency", `{"spending":{"monthly_budget":{"amount":5,"currency":"EURO"}}}`, "must be an ISO 4217 code"},
		{"budget amount", `{"spending":{"monthly_budget":{"amount":-1,"currency":"GBP"}}}`, "policy.spending.monthly_budget.amount"},
		{"bonus time order", `{"overrides":{"bonus_time":{"minutes":30,"granted_at":"2026-02-06T10:00:00Z","expires_at":"2026-02-06T09:00:00Z"}}}`, "must be after granted_at"},
		{"bonus time minutes", `{"overrides":{"bonus_time":{"minutes":0,"granted_at":"2026-02-06T10:00:00Z","expires_at":"2026-02-06T11:00:00Z"}}}`, "policy.overrides.bonus_time.minutes"},
		{"rule type", `{"overrides":{"temporary_rules":[{"type":"teleport","date":"2026-02-06"}]}}`, `unknown type "teleport"`},
		{"rule date", `{"overrides":{"temporary_rules":[{"type":"extra_time","date":"06/02/2026"}]}}`, "must be YYYY-MM-DD"},
		{"null facet", `{"schedule":null}`, "policy.schedule: must not be null"},
		{"null flag", `{"status":{"paused":null}}`, "policy.status.paused: must not be null"},
		{"blank app", `{"apps":{"blocked":[{"app_name":" "}]}}`, "policy.apps.blocked[0].app_name: is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			probs := problemsFor(t, tc.raw)
			assert.NotEmpty(t, probs)
			var joined string
			for _, p := range probs {
				joined += p + "\n"
			}
			assert.Contains(t, joined, tc.want)
		})
	}
}
