// Package policy models a child's policy: eight independent facets, their
// canonical defaults and the merge that fills absent fields from them.
//
// Every optional field is a field.Field so that a key that was never sent,
// an explicit null and an explicit value stay distinguishable through merge,
// validation and storage. Only a handful of fields give null a meaning:
//
//	time_limits.daily.weekday / weekend   null = unlimited
//	time_limits.by_category[].daily_minutes null = unlimited
//	time_limits.by_app[].daily_minutes    null = blocked (absent = unlimited)
//	spending.monthly_budget               null = no budget
//	status.paused_until                   null = paused indefinitely
//	status.locked_reason                  null = no reason shown
//	overrides.bonus_time                  null = no grant
//
// Lists use the omitzero tag: a nil slice was absent, an empty one was sent
// as [].
package policy

import (
	"encoding/json"
	"time"

	"pcps/pkg/field"
)

// Extensions holds namespaced fields unknown to this version. Values are kept
// as raw JSON in the compact, HTML-escaped form encoding/json writes, so the
// same JSON value always has the same bytes across storage round trips.
type Extensions map[string]map[string]json.RawMessage

// Policy is owned by exactly one child.
type Policy struct {
	Schedule      field.Field[Schedule]      `json:"schedule,omitzero"`
	TimeLimits    field.Field[TimeLimits]    `json:"time_limits,omitzero"`
	Content       field.Field[Content]       `json:"content,omitzero"`
	Apps          field.Field[Apps]          `json:"apps,omitzero"`
	Communication field.Field[Communication] `json:"communication,omitzero"`
	Spending      field.Field[Spending]      `json:"spending,omitzero"`
	Status        field.Field[Status]        `json:"status,omitzero"`
	Overrides     field.Field[Overrides]     `json:"overrides,omitzero"`
	Extensions    Extensions                 `json:"extensions,omitzero"`
}

// TimeWindow is an allowed usage window in HH:MM local time.
type TimeWindow struct {
	AllowedFrom  string `json:"allowed_from"`
	AllowedUntil string `json:"allowed_until"`
}

type CustomSchedule struct {
	Days []Weekday `json:"days"`
	TimeWindow
}

type Schedule struct {
	Weekday field.Field[TimeWindow] `json:"weekday,omitzero"`
	Weekend field.Field[TimeWindow] `json:"weekend,omitzero"`
	Custom  []CustomSchedule        `json:"custom,omitzero"`
}

type DailyLimits struct {
	Weekday field.Field[int] `json:"weekday,omitzero"`
	Weekend field.Field[int] `json:"weekend,omitzero"`
}

type CategoryLimit struct {
	Category     AppCategory      `json:"category"`
	DailyMinutes field.Field[int] `json:"daily_minutes,omitzero"`
}

type AppLimit struct {
	AppName      string           `json:"app_name"`
	DailyMinutes field.Field[int] `json:"daily_minutes,omitzero"`
}

type TimeLimits struct {
	Daily      field.Field[DailyLimits] `json:"daily,omitzero"`
	ByCategory []CategoryLimit          `json:"by_category,omitzero"`
	ByApp      []AppLimit               `json:"by_app,omitzero"`
}

type WebFilter struct {
	Mode       field.Field[WebFilterMode] `json:"mode,omitzero"`
	Allowlist  []string                   `json:"allowlist,omitzero"`
	Blocklist  []string                   `json:"blocklist,omitzero"`
	SafeSearch field.Field[bool]          `json:"safe_search,omitzero"`
}

type Content struct {
	MaxAgeRating    field.Field[int]       `json:"max_age_rating,omitzero"`
	Web             field.Field[WebFilter] `json:"web,omitzero"`
	ExplicitContent field.Field[bool]      `json:"explicit_content,omitzero"`
}

type AppEntry struct {
	AppName string              `json:"app_name"`
	Reason  field.Field[string] `json:"reason,omitzero"`
}

// Apps listed in AlwaysAllowed are exempt from time and schedule enforcement
// downstream.
type Apps struct {
	RequireApproval field.Field[bool] `json:"require_approval,omitzero"`
	Blocked         []AppEntry        `json:"blocked,omitzero"`
	AlwaysAllowed   []AppEntry        `json:"always_allowed,omitzero"`
}

type Contact struct {
	Name        string   `json:"name"`
	Identifiers []string `json:"identifiers"`
}

type Communication struct {
	Mode                field.Field[CommunicationMode] `json:"mode,omitzero"`
	AllowedContacts     []Contact                      `json:"allowed_contacts,omitzero"`
	BlockUnknownCallers field.Field[bool]              `json:"block_unknown_callers,omitzero"`
}

// MonthlyBudget carries an ISO 4217 currency code.
type MonthlyBudget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Spending struct {
	RequireApproval    field.Field[bool]          `json:"require_approval,omitzero"`
	AllowFreeDownloads field.Field[bool]          `json:"allow_free_downloads,omitzero"`
	MonthlyBudget      field.Field[MonthlyBudget] `json:"monthly_budget,omitzero"`
	InAppPurchases     field.Field[bool]          `json:"in_app_purchases,omitzero"`
}

type Status struct {
	PolicyActive field.Field[bool]      `json:"policy_active,omitzero"`
	Paused       field.Field[bool]      `json:"paused,omitzero"`
	PausedUntil  field.Field[time.Time] `json:"paused_until,omitzero"`
	Locked       field.Field[bool]      `json:"locked,omitzero"`
	LockedReason field.Field[string]    `json:"locked_reason,omitzero"`
}

// BonusTime fields are required together.
type BonusTime struct {
	Minutes   int                 `json:"minutes"`
	Reason    field.Field[string] `json:"reason,omitzero"`
	GrantedAt time.Time           `json:"granted_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

type Overrides struct {
	BonusTime      field.Field[BonusTime] `json:"bonus_time,omitzero"`
	TemporaryRules []TemporaryRule        `json:"temporary_rules,omitzero"`
}
