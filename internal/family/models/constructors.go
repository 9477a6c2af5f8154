package models

import (
	"time"

	"github.com/google/uuid"

	"pcps/internal/policy"
	"pcps/pkg/field"
)

const (
	DefaultChildName = "New Child"
	DefaultChildAge  = 10
	DefaultTimezone  = "Europe/London"
)

// NewChild allocates a child with a fresh id and the default policy.
func NewChild(name string, age int) Child {
	return Child{
		ChildID:   uuid.NewString(),
		ChildName: name,
		ChildAge:  field.Value(age),
		Devices:   []Device{},
		Policy:    policy.Default(),
	}
}

// NewGuardian allocates a guardian with an empty email.
func NewGuardian(name string, role GuardianRole) Guardian {
	return Guardian{
		GuardianID: uuid.NewString(),
		Name:       name,
		Email:      field.Value(""),
		Role:       role,
	}
}

func NewDevice() Device {
	return Device{
		DeviceID: uuid.NewString(),
		Platform: PlatformApple,
		Model:    field.Value(""),
	}
}

// NewDocument allocates an empty family with one primary guardian and one
// default child. An empty timezone falls back to DefaultTimezone.
func NewDocument(timezone string, now time.Time) *Document {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	now = now.UTC()
	return &Document{
		PCPSVersion: Version,
		FamilyID:    uuid.NewString(),
		FamilyName:  field.Value(""),
		CreatedAt:   field.Value(now),
		UpdatedAt:   field.Value(now),
		Timezone:    timezone,
		Guardians:   []Guardian{NewGuardian("", RolePrimary)},
		Children:    []Child{NewChild(DefaultChildName, DefaultChildAge)},
		Extensions:  policy.Extensions{},
	}
}
