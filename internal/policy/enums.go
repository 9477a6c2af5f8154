package policy

// Weekday names a day in custom schedule overrides.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var validWeekdays = map[Weekday]bool{
	Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
	Friday: true, Saturday: true, Sunday: true,
}

func (d Weekday) IsValid() bool { return validWeekdays[d] }

// AppCategory tags a category time limit. The set is open: adapters may
// understand categories this version does not list, so validation only
// requires a non-empty tag.
type AppCategory string

const (
	CategoryGames         AppCategory = "games"
	CategorySocialMedia   AppCategory = "social_media"
	CategoryEducational   AppCategory = "educational"
	CategoryVideo         AppCategory = "video"
	CategoryMusic         AppCategory = "music"
	CategoryCreativity    AppCategory = "creativity"
	CategoryBrowsing      AppCategory = "browsing"
	CategoryCommunication AppCategory = "communication"
	CategoryOther         AppCategory = "other"
)

var knownCategories = map[AppCategory]bool{
	CategoryGames: true, CategorySocialMedia: true, CategoryEducational: true,
	CategoryVideo: true, CategoryMusic: true, CategoryCreativity: true,
	CategoryBrowsing: true, CategoryCommunication: true, CategoryOther: true,
}

// IsKnown reports whether the category is one this version names.
func (c AppCategory) IsKnown() bool { return knownCategories[c] }

// WebFilterMode selects how the web filter treats its domain lists.
type WebFilterMode string

const (
	WebFiltered  WebFilterMode = "filtered"
	WebAllowlist WebFilterMode = "allowlist"
	WebBlocklist WebFilterMode = "blocklist"
)

func (m WebFilterMode) IsValid() bool {
	switch m {
	case WebFiltered, WebAllowlist, WebBlocklist:
		return true
	}
	return false
}

// CommunicationMode restricts who a child may contact.
type CommunicationMode string

const (
	CommunicationUnrestricted CommunicationMode = "unrestricted"
	CommunicationContactsOnly CommunicationMode = "contacts_only"
	CommunicationDisabled     CommunicationMode = "disabled"
)

func (m CommunicationMode) IsValid() bool {
	switch m {
	case CommunicationUnrestricted, CommunicationContactsOnly, CommunicationDisabled:
		return true
	}
	return false
}

// OverrideType is the kind of a temporary rule.
type OverrideType string

const (
	OverrideExtendSchedule OverrideType = "extend_schedule"
	OverrideExtraTime      OverrideType = "extra_time"
	OverrideUnblockApp     OverrideType = "unblock_app"
	OverrideUnblockSite    OverrideType = "unblock_site"
)

func (t OverrideType) IsValid() bool {
	switch t {
	case OverrideExtendSchedule, OverrideExtraTime, OverrideUnblockApp, OverrideUnblockSite:
		return true
	}
	return false
}
