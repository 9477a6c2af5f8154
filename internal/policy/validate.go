package policy

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"pcps/pkg/field"
)

const (
	maxAgeRating = 18
	dateLayout   = "2006-01-02"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Problems collects validation failures as "path: message" strings.
type Problems struct {
	items []string
}

func (p *Problems) Add(path, format string, args ...any) {
	p.items = append(p.items, path+": "+fmt.Sprintf(format, args...))
}

func (p *Problems) Empty() bool { return len(p.items) == 0 }

func (p *Problems) List() []string { return p.items }

func (p *Problems) String() string { return strings.Join(p.items, "; ") }

// notNull flags an explicit null on a field whose schema gives null no
// meaning.
func notNull[T any](p *Problems, path string, f field.Field[T]) {
	if f.IsNull() {
		p.Add(path, "must not be null")
	}
}

// Validate checks p and appends problems under the given path prefix.
// It accepts partial policies: absent fields are never a problem.
func Validate(p Policy, path string, probs *Problems) {
	notNull(probs, path+".schedule", p.Schedule)
	notNull(probs, path+".time_limits", p.TimeLimits)
	notNull(probs, path+".content", p.Content)
	notNull(probs, path+".apps", p.Apps)
	notNull(probs, path+".communication", p.Communication)
	notNull(probs, path+".spending", p.Spending)
	notNull(probs, path+".status", p.Status)
	notNull(probs, path+".overrides", p.Overrides)

	if s, ok := p.Schedule.Get(); ok {
		validateSchedule(s, path+".schedule", probs)
	}
	if t, ok := p.TimeLimits.Get(); ok {
		validateTimeLimits(t, path+".time_limits", probs)
	}
	if c, ok := p.Content.Get(); ok {
		validateContent(c, path+".content", probs)
	}
	if a, ok := p.Apps.Get(); ok {
		validateApps(a, path+".apps", probs)
	}
	if c, ok := p.Communication.Get(); ok {
		validateCommunication(c, path+".communication", probs)
	}
	if s, ok := p.Spending.Get(); ok {
		validateSpending(s, path+".spending", probs)
	}
	if s, ok := p.Status.Get(); ok {
		notNull(probs, path+".status.policy_active", s.PolicyActive)
		notNull(probs, path+".status.paused", s.Paused)
		notNull(probs, path+".status.locked", s.Locked)
	}
	if o, ok := p.Overrides.Get(); ok {
		validateOverrides(o, path+".overrides", probs)
	}
}

func validateWindow(w TimeWindow, path string, probs *Problems) {
	if !clockPattern.MatchString(w.AllowedFrom) {
		probs.Add(path+".allowed_from", "must be HH:MM, got %q", w.AllowedFrom)
	}
	if !clockPattern.MatchString(w.AllowedUntil) {
		probs.Add(path+".allowed_until", "must be HH:MM, got %q", w.AllowedUntil)
	}
}

func validateSchedule(s Schedule, path string, probs *Problems) {
	notNull(probs, path+".weekday", s.Weekday)
	notNull(probs, path+".weekend", s.Weekend)
	if w, ok := s.Weekday.Get(); ok {
		validateWindow(w, path+".weekday", probs)
	}
	if w, ok := s.Weekend.Get(); ok {
		validateWindow(w, path+".weekend", probs)
	}
	for i, c := range s.Custom {
		p := fmt.Sprintf("%s.custom[%d]", path, i)
		if len(c.Days) == 0 {
			probs.Add(p+".days", "must name at least one day")
		}
		for _, d := range c.Days {
			if !d.IsValid() {
				probs.Add(p+".days", "unknown day %q", d)
			}
		}
		validateWindow(c.TimeWindow, p, probs)
	}
}

func nonNegative(f field.Field[int], path string, probs *Problems) {
	if v, ok := f.Get(); ok && v < 0 {
		probs.Add(path, "must not be negative, got %d", v)
	}
}

func validateTimeLimits(t TimeLimits, path string, probs *Problems) {
	notNull(probs, path+".daily", t.Daily)
	if d, ok := t.Daily.Get(); ok {
		nonNegative(d.Weekday, path+".daily.weekday", probs)
		nonNegative(d.Weekend, path+".daily.weekend", probs)
	}
	for i, c := range t.ByCategory {
		p := fmt.Sprintf("%s.by_category[%d]", path, i)
		if c.Category == "" {
			probs.Add(p+".category", "is required")
		}
		nonNegative(c.DailyMinutes, p+".daily_minutes", probs)
	}
	for i, a := range t.ByApp {
		p := fmt.Sprintf("%s.by_app[%d]", path, i)
		if strings.TrimSpace(a.AppName) == "" {
			probs.Add(p+".app_name", "is required")
		}
		nonNegative(a.DailyMinutes, p+".daily_minutes", probs)
	}
}

func validateContent(c Content, path string, probs *Problems) {
	notNull(probs, path+".max_age_rating", c.MaxAgeRating)
	notNull(probs, path+".web", c.Web)
	notNull(probs, path+".explicit_content", c.ExplicitContent)
	if v, ok := c.MaxAgeRating.Get(); ok && (v < 0 || v > maxAgeRating) {
		probs.Add(path+".max_age_rating", "must be between 0 and %d, got %d", maxAgeRating, v)
	}
	if w, ok := c.Web.Get(); ok {
		notNull(probs, path+".web.mode", w.Mode)
		notNull(probs, path+".web.safe_search", w.SafeSearch)
		if m, ok := w.Mode.Get(); ok && !m.IsValid() {
			probs.Add(path+".web.mode", "unknown mode %q", m)
		}
	}
}

func validateApps(a Apps, path string, probs *Problems) {
	notNull(probs, path+".require_approval", a.RequireApproval)
	for i, e := range a.Blocked {
		if strings.TrimSpace(e.AppName) == "" {
			probs.Add(fmt.Sprintf("%s.blocked[%d].app_name", path, i), "is required")
		}
	}
	for i, e := range a.AlwaysAllowed {
		if strings.TrimSpace(e.AppName) == "" {
			probs.Add(fmt.Sprintf("%s.always_allowed[%d].app_name", path, i), "is required")
		}
	}
}

func validateCommunication(c Communication, path string, probs *Problems) {
	notNull(probs, path+".mode", c.Mode)
	notNull(probs, path+".block_unknown_callers", c.BlockUnknownCallers)
	if m, ok := c.Mode.Get(); ok && !m.IsValid() {
		probs.Add(path+".mode", "unknown mode %q", m)
	}
	for i, ct := range c.AllowedContacts {
		if strings.TrimSpace(ct.Name) == "" {
			probs.Add(fmt.Sprintf("%s.allowed_contacts[%d].name", path, i), "is required")
		}
	}
}

func validateSpending(s Spending, path string, probs *Problems) {
	notNull(probs, path+".require_approval", s.RequireApproval)
	notNull(probs, path+".allow_free_downloads", s.AllowFreeDownloads)
	notNull(probs, path+".in_app_purchases", s.InAppPurchases)
	b, ok := s.MonthlyBudget.Get()
	if !ok {
		return
	}
	if b.Amount < 0 {
		probs.Add(path+".monthly_budget.amount", "must not be negative")
	}
	if _, err := currency.ParseISO(b.Currency); err != nil || len(b.Currency) != 3 {
		probs.Add(path+".monthly_budget.currency", "must be an ISO 4217 code, got %q", b.Currency)
	}
}

func validateOverrides(o Overrides, path string, probs *Problems) {
	if b, ok := o.BonusTime.Get(); ok {
		p := path + ".bonus_time"
		if b.Minutes <= 0 {
			probs.Add(p+".minutes", "must be positive")
		}
		if b.GrantedAt.IsZero() || b.ExpiresAt.IsZero() {
			probs.Add(p, "granted_at and expires_at are required")
		} else if !b.ExpiresAt.After(b.GrantedAt) {
			probs.Add(p+".expires_at", "must be after granted_at")
		}
	}
	for i, r := range o.TemporaryRules {
		p := fmt.Sprintf("%s.temporary_rules[%d]", path, i)
		if !r.Type.IsValid() {
			probs.Add(p+".type", "unknown type %q", r.Type)
		}
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			probs.Add(p+".date", "must be YYYY-MM-DD, got %q", r.Date)
		}
	}
}
