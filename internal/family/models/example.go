package models

import (
	"time"

	"pcps/internal/policy"
	"pcps/pkg/field"
)

// ExampleFamilyID identifies the seeded example family.
const ExampleFamilyID = "f1a2b3c4-d5e6-7890-abcd-ef1234567890"

// Example returns the two-child demonstration family used to seed an empty
// store. Emma's policy deliberately omits by_app and custom schedules.
func Example() *Document {
	return &Document{
		PCPSVersion: Version,
		FamilyID:    ExampleFamilyID,
		FamilyName:  field.Value("The Smiths"),
		CreatedAt:   field.Value(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)),
		UpdatedAt:   field.Value(time.Date(2026, 2, 6, 8, 0, 0, 0, time.UTC)),
		Timezone:    "Europe/London",
		Guardians: []Guardian{
			{GuardianID: "g1000001-aaaa-bbbb-cccc-ddddeeeeeeee", Name: "Sarah Smith", Email: field.Value("sarah@example.com"), Role: RolePrimary},
			{GuardianID: "g2000002-aaaa-bbbb-cccc-ddddeeeeeeee", Name: "James Smith", Email: field.Value("james@example.com"), Role: RoleGuardian},
		},
		Children:   []Child{exampleAlex(), exampleEmma()},
		Extensions: policy.Extensions{},
	}
}

func window(from, until string) field.Field[policy.TimeWindow] {
	return field.Value(policy.TimeWindow{AllowedFrom: from, AllowedUntil: until})
}

func daily(weekday, weekend int) field.Field[policy.DailyLimits] {
	return field.Value(policy.DailyLimits{Weekday: field.Value(weekday), Weekend: field.Value(weekend)})
}

func category(c policy.AppCategory, minutes field.Field[int]) policy.CategoryLimit {
	return policy.CategoryLimit{Category: c, DailyMinutes: minutes}
}

func allowed(names ...string) []policy.AppEntry {
	out := make([]policy.AppEntry, len(names))
	for i, n := range names {
		out[i] = policy.AppEntry{AppName: n}
	}
	return out
}

func exampleStatus() field.Field[policy.Status] {
	return field.Value(policy.Status{
		PolicyActive: field.Value(true),
		Paused:       field.Value(false),
		PausedUntil:  field.Null[time.Time](),
		Locked:       field.Value(false),
		LockedReason: field.Null[string](),
	})
}

func exampleOverrides() field.Field[policy.Overrides] {
	return field.Value(policy.Overrides{
		BonusTime:      field.Null[policy.BonusTime](),
		TemporaryRules: []policy.TemporaryRule{},
	})
}

func exampleAlex() Child {
	return Child{
		ChildID:   "child-001",
		ChildName: "Alex",
		ChildAge:  field.Value(10),
		Devices: []Device{
			{DeviceID: "device-001", DeviceName: "Alex's iPad", Platform: PlatformApple, Model: field.Value("iPad Air")},
			{DeviceID: "device-002", DeviceName: "Alex's Switch", Platform: PlatformNintendo, Model: field.Value("Switch OLED")},
		},
		Policy: policy.Policy{
			Schedule: field.Value(policy.Schedule{
				Weekday: window("07:00", "19:30"),
				Weekend: window("08:00", "20:30"),
				Custom: []policy.CustomSchedule{{
					Days:       []policy.Weekday{policy.Wednesday},
					TimeWindow: policy.TimeWindow{AllowedFrom: "07:00", AllowedUntil: "18:00"},
				}},
			}),
			TimeLimits: field.Value(policy.TimeLimits{
				Daily: daily(60, 120),
				ByCategory: []policy.CategoryLimit{
					category(policy.CategoryGames, field.Value(30)),
					category(policy.CategoryEducational, field.Null[int]()),
					category(policy.CategorySocialMedia, field.Value(0)),
				},
				ByApp: []policy.AppLimit{{AppName: "Clash of Clans", DailyMinutes: field.Value(15)}},
			}),
			Content: field.Value(policy.Content{
				MaxAgeRating: field.Value(12),
				Web: field.Value(policy.WebFilter{
					Mode:       field.Value(policy.WebFiltered),
					Allowlist:  []string{},
					Blocklist:  []string{"reddit.com", "4chan.org"},
					SafeSearch: field.Value(true),
				}),
				ExplicitContent: field.Value(false),
			}),
			Apps: field.Value(policy.Apps{
				RequireApproval: field.Value(true),
				Blocked:         []policy.AppEntry{{AppName: "TikTok", Reason: field.Value("Not age appropriate")}},
				AlwaysAllowed:   allowed("Messages", "School Homework App"),
			}),
			Communication: field.Value(policy.Communication{
				Mode: field.Value(policy.CommunicationContactsOnly),
				AllowedContacts: []policy.Contact{
					{Name: "Mum", Identifiers: []string{"+447700000000", "mum@example.com"}},
					{Name: "Dad", Identifiers: []string{"+447700000001"}},
					{Name: "Gran", Identifiers: []string{"+447700000002"}},
				},
				BlockUnknownCallers: field.Value(true),
			}),
			Spending: field.Value(policy.Spending{
				RequireApproval:    field.Value(true),
				AllowFreeDownloads: field.Value(false),
				MonthlyBudget:      field.Value(policy.MonthlyBudget{Amount: 5, Currency: "GBP"}),
				InAppPurchases:     field.Value(false),
			}),
			Status:    exampleStatus(),
			Overrides: exampleOverrides(),
		},
	}
}

func exampleEmma() Child {
	return Child{
		ChildID:   "child-002",
		ChildName: "Emma",
		ChildAge:  field.Value(7),
		Devices: []Device{
			{DeviceID: "device-003", DeviceName: "Emma's Fire Tablet", Platform: PlatformAmazon, Model: field.Value("Fire HD 10 Kids")},
		},
		Policy: policy.Policy{
			Schedule: field.Value(policy.Schedule{
				Weekday: window("08:00", "18:00"),
				Weekend: window("08:00", "19:00"),
			}),
			TimeLimits: field.Value(policy.TimeLimits{
				Daily: daily(45, 90),
				ByCategory: []policy.CategoryLimit{
					category(policy.CategoryGames, field.Value(20)),
					category(policy.CategoryEducational, field.Null[int]()),
					category(policy.CategoryVideo, field.Value(30)),
				},
			}),
			Content: field.Value(policy.Content{
				MaxAgeRating: field.Value(7),
				Web: field.Value(policy.WebFilter{
					Mode:       field.Value(policy.WebAllowlist),
					Allowlist:  []string{"khanacademy.org", "bbc.co.uk/bitesize", "pbskids.org"},
					Blocklist:  []string{},
					SafeSearch: field.Value(true),
				}),
				ExplicitContent: field.Value(false),
			}),
			Apps: field.Value(policy.Apps{
				RequireApproval: field.Value(true),
				Blocked:         []policy.AppEntry{},
				AlwaysAllowed:   allowed("School Homework App"),
			}),
			Communication: field.Value(policy.Communication{
				Mode: field.Value(policy.CommunicationContactsOnly),
				AllowedContacts: []policy.Contact{
					{Name: "Mum", Identifiers: []string{"+447700000000"}},
					{Name: "Dad", Identifiers: []string{"+447700000001"}},
				},
				BlockUnknownCallers: field.Value(true),
			}),
			Spending: field.Value(policy.Spending{
				RequireApproval:    field.Value(true),
				AllowFreeDownloads: field.Value(false),
				MonthlyBudget:      field.Null[policy.MonthlyBudget](),
				InAppPurchases:     field.Value(false),
			}),
			Status:    exampleStatus(),
			Overrides: exampleOverrides(),
		},
	}
}
