package policy

import (
	"fmt"

	"pcps/pkg/field"
)

type CapKind string

const (
	CapMinutes   CapKind = "minutes"
	CapUnlimited CapKind = "unlimited"
	CapBlocked   CapKind = "blocked"
)

// Cap is the interpreted value of a minute limit.
type Cap struct {
	Kind    CapKind `json:"kind"`
	Minutes int     `json:"minutes,omitempty"`
}

func (c Cap) String() string {
	if c.Kind == CapMinutes {
		return fmt.Sprintf("%d minutes", c.Minutes)
	}
	return string(c.Kind)
}

// capOf reads a minute limit: a value is a cap, null means onNull and an
// absent key falls back to def.
func capOf(f field.Field[int], onNull CapKind, def Cap) Cap {
	switch {
	case f.IsPresent():
		v, _ := f.Get()
		return Cap{Kind: CapMinutes, Minutes: v}
	case f.IsNull():
		return Cap{Kind: onNull}
	default:
		return def
	}
}

// WeekdayCap interprets the weekday daily limit.
func (d DailyLimits) WeekdayCap() Cap {
	return capOf(d.Weekday, CapUnlimited, Cap{Kind: CapMinutes, Minutes: DefaultWeekdayMinutes})
}

// WeekendCap interprets the weekend daily limit.
func (d DailyLimits) WeekendCap() Cap {
	return capOf(d.Weekend, CapUnlimited, Cap{Kind: CapMinutes, Minutes: DefaultWeekendMinutes})
}

// Cap interprets a category limit; null is unlimited.
func (c CategoryLimit) Cap() Cap {
	return capOf(c.DailyMinutes, CapUnlimited, Cap{Kind: CapMinutes, Minutes: DefaultCategoryMinutes})
}

// Cap interprets a per-app limit; null blocks the app and absence leaves it
// unlimited.
func (a AppLimit) Cap() Cap {
	return capOf(a.DailyMinutes, CapBlocked, Cap{Kind: CapUnlimited})
}
