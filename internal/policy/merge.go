package policy

import "pcps/pkg/field"

// Merge returns p with every absent field filled from Default. The input is
// never modified and the result shares no memory with it.
//
// Facets merge independently. Fields whose schema gives null a meaning keep
// an explicit null; every other null is treated as absent. A per-app limit
// without daily_minutes stays absent because absence is its "unlimited"
// value.
func Merge(p Policy) Policy {
	p = p.Clone()
	return Policy{
		Schedule:      field.Value(mergeSchedule(p.Schedule)),
		TimeLimits:    field.Value(mergeTimeLimits(p.TimeLimits)),
		Content:       field.Value(mergeContent(p.Content)),
		Apps:          field.Value(mergeApps(p.Apps)),
		Communication: field.Value(mergeCommunication(p.Communication)),
		Spending:      field.Value(mergeSpending(p.Spending)),
		Status:        field.Value(mergeStatus(p.Status)),
		Overrides:     field.Value(mergeOverrides(p.Overrides)),
		Extensions:    p.Extensions,
	}
}

func orDefault[T any](s []T, def []T) []T {
	if s == nil {
		return def
	}
	return s
}

func mergeSchedule(f field.Field[Schedule]) Schedule {
	def := defaultSchedule()
	s, ok := f.Get()
	if !ok {
		return def
	}
	return Schedule{
		Weekday: s.Weekday.Coalesce(def.Weekday),
		Weekend: s.Weekend.Coalesce(def.Weekend),
		Custom:  orDefault(s.Custom, def.Custom),
	}
}

func mergeTimeLimits(f field.Field[TimeLimits]) TimeLimits {
	def := defaultTimeLimits()
	t, ok := f.Get()
	if !ok {
		return def
	}

	daily := defaultDailyLimits()
	if d, ok := t.Daily.Get(); ok {
		daily = DailyLimits{
			Weekday: d.Weekday.Merge(daily.Weekday),
			Weekend: d.Weekend.Merge(daily.Weekend),
		}
	}

	var byCategory []CategoryLimit
	if t.ByCategory != nil {
		byCategory = make([]CategoryLimit, len(t.ByCategory))
		for i, c := range t.ByCategory {
			c.DailyMinutes = c.DailyMinutes.Merge(field.Value(DefaultCategoryMinutes))
			byCategory[i] = c
		}
	}

	return TimeLimits{
		Daily:      field.Value(daily),
		ByCategory: orDefault(byCategory, def.ByCategory),
		ByApp:      orDefault(t.ByApp, def.ByApp),
	}
}

func mergeWebFilter(f field.Field[WebFilter]) WebFilter {
	def := defaultWebFilter()
	w, ok := f.Get()
	if !ok {
		return def
	}
	return WebFilter{
		Mode:       w.Mode.Coalesce(def.Mode),
		Allowlist:  orDefault(w.Allowlist, def.Allowlist),
		Blocklist:  orDefault(w.Blocklist, def.Blocklist),
		SafeSearch: w.SafeSearch.Coalesce(def.SafeSearch),
	}
}

func mergeContent(f field.Field[Content]) Content {
	def := defaultContent()
	c, ok := f.Get()
	if !ok {
		return def
	}
	return Content{
		MaxAgeRating:    c.MaxAgeRating.Coalesce(def.MaxAgeRating),
		Web:             field.Value(mergeWebFilter(c.Web)),
		ExplicitContent: c.ExplicitContent.Coalesce(def.ExplicitContent),
	}
}

func mergeApps(f field.Field[Apps]) Apps {
	def := defaultApps()
	a, ok := f.Get()
	if !ok {
		return def
	}
	return Apps{
		RequireApproval: a.RequireApproval.Coalesce(def.RequireApproval),
		Blocked:         orDefault(a.Blocked, def.Blocked),
		AlwaysAllowed:   orDefault(a.AlwaysAllowed, def.AlwaysAllowed),
	}
}

func mergeCommunication(f field.Field[Communication]) Communication {
	def := defaultCommunication()
	c, ok := f.Get()
	if !ok {
		return def
	}
	return Communication{
		Mode:                c.Mode.Coalesce(def.Mode),
		AllowedContacts:     orDefault(c.AllowedContacts, def.AllowedContacts),
		BlockUnknownCallers: c.BlockUnknownCallers.Coalesce(def.BlockUnknownCallers),
	}
}

func mergeSpending(f field.Field[Spending]) Spending {
	def := defaultSpending()
	s, ok := f.Get()
	if !ok {
		return def
	}
	return Spending{
		RequireApproval:    s.RequireApproval.Coalesce(def.RequireApproval),
		AllowFreeDownloads: s.AllowFreeDownloads.Coalesce(def.AllowFreeDownloads),
		MonthlyBudget:      s.MonthlyBudget.Merge(def.MonthlyBudget),
		InAppPurchases:     s.InAppPurchases.Coalesce(def.InAppPurchases),
	}
}

func mergeStatus(f field.Field[Status]) Status {
	def := defaultStatus()
	s, ok := f.Get()
	if !ok {
		return def
	}
	return Status{
		PolicyActive: s.PolicyActive.Coalesce(def.PolicyActive),
		Paused:       s.Paused.Coalesce(def.Paused),
		PausedUntil:  s.PausedUntil.Merge(def.PausedUntil),
		Locked:       s.Locked.Coalesce(def.Locked),
		LockedReason: s.LockedReason.Merge(def.LockedReason),
	}
}

func mergeOverrides(f field.Field[Overrides]) Overrides {
	def := defaultOverrides()
	o, ok := f.Get()
	if !ok {
		return def
	}
	return Overrides{
		BonusTime:      o.BonusTime.Merge(def.BonusTime),
		TemporaryRules: orDefault(o.TemporaryRules, def.TemporaryRules),
	}
}
