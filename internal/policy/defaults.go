package policy

import (
	"time"

	"pcps/pkg/field"
)

// Default values applied by Merge. DefaultCategoryMinutes fills a category
// limit whose daily_minutes key was never sent.
const (
	DefaultWeekdayMinutes  = 60
	DefaultWeekendMinutes  = 120
	DefaultCategoryMinutes = 30
	DefaultMaxAgeRating    = 12
)

// Default returns a fully-populated policy. Every call allocates fresh
// slices, so callers may mutate the result.
func Default() Policy {
	return Policy{
		Schedule:      field.Value(defaultSchedule()),
		TimeLimits:    field.Value(defaultTimeLimits()),
		Content:       field.Value(defaultContent()),
		Apps:          field.Value(defaultApps()),
		Communication: field.Value(defaultCommunication()),
		Spending:      field.Value(defaultSpending()),
		Status:        field.Value(defaultStatus()),
		Overrides:     field.Value(defaultOverrides()),
	}
}

func defaultSchedule() Schedule {
	return Schedule{
		Weekday: field.Value(TimeWindow{AllowedFrom: "07:00", AllowedUntil: "20:00"}),
		Weekend: field.Value(TimeWindow{AllowedFrom: "08:00", AllowedUntil: "21:00"}),
		Custom:  []CustomSchedule{},
	}
}

func defaultDailyLimits() DailyLimits {
	return DailyLimits{
		Weekday: field.Value(DefaultWeekdayMinutes),
		Weekend: field.Value(DefaultWeekendMinutes),
	}
}

func defaultTimeLimits() TimeLimits {
	return TimeLimits{
		Daily:      field.Value(defaultDailyLimits()),
		ByCategory: []CategoryLimit{},
		ByApp:      []AppLimit{},
	}
}

func defaultWebFilter() WebFilter {
	return WebFilter{
		Mode:       field.Value(WebFiltered),
		Allowlist:  []string{},
		Blocklist:  []string{},
		SafeSearch: field.Value(true),
	}
}

func defaultContent() Content {
	return Content{
		MaxAgeRating:    field.Value(DefaultMaxAgeRating),
		Web:             field.Value(defaultWebFilter()),
		ExplicitContent: field.Value(false),
	}
}

func defaultApps() Apps {
	return Apps{
		RequireApproval: field.Value(true),
		Blocked:         []AppEntry{},
		AlwaysAllowed:   []AppEntry{},
	}
}

func defaultCommunication() Communication {
	return Communication{
		Mode:                field.Value(CommunicationContactsOnly),
		AllowedContacts:     []Contact{},
		BlockUnknownCallers: field.Value(true),
	}
}

func defaultSpending() Spending {
	return Spending{
		RequireApproval:    field.Value(true),
		AllowFreeDownloads: field.Value(false),
		MonthlyBudget:      field.Null[MonthlyBudget](),
		InAppPurchases:     field.Value(false),
	}
}

func defaultStatus() Status {
	return Status{
		PolicyActive: field.Value(true),
		Paused:       field.Value(false),
		PausedUntil:  field.Null[time.Time](),
		Locked:       field.Value(false),
		LockedReason: field.Null[string](),
	}
}

func defaultOverrides() Overrides {
	return Overrides{
		BonusTime:      field.Null[BonusTime](),
		TemporaryRules: []TemporaryRule{},
	}
}
