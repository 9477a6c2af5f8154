package models

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone checks must not depend on the host zoneinfo

	"pcps/internal/policy"
	dErrors "pcps/pkg/domain-errors"
)

const maxChildAge = 17

// Validate checks the document before it is committed. Child policies may be
// partial; absent fields are filled later by policy.Merge.
func (d *Document) Validate() error {
	if d == nil {
		return dErrors.New(dErrors.CodeValidation, "document is required")
	}

	var probs policy.Problems
	if d.PCPSVersion != Version {
		probs.Add("pcps_version", "must be %q, got %q", Version, d.PCPSVersion)
	}
	if strings.TrimSpace(d.FamilyID) == "" {
		probs.Add("family_id", "is required")
	}
	if d.FamilyName.IsNull() {
		probs.Add("family_name", "must not be null")
	}
	validateTimezone(d.Timezone, "timezone", &probs)

	guardianIDs := make(map[string]bool, len(d.Guardians))
	for i, g := range d.Guardians {
		path := fmt.Sprintf("guardians[%d]", i)
		if g.GuardianID == "" {
			probs.Add(path+".guardian_id", "is required")
		} else if guardianIDs[g.GuardianID] {
			probs.Add(path+".guardian_id", "duplicate id %q", g.GuardianID)
		}
		guardianIDs[g.GuardianID] = true
		if !g.Role.IsValid() {
			probs.Add(path+".role", "unknown role %q", g.Role)
		}
		if g.Email.IsNull() {
			probs.Add(path+".email", "must not be null")
		}
	}

	childIDs := make(map[string]bool, len(d.Children))
	for i, c := range d.Children {
		path := fmt.Sprintf("children[%d]", i)
		if c.ChildID == "" {
			probs.Add(path+".child_id", "is required")
		} else if childIDs[c.ChildID] {
			probs.Add(path+".child_id", "duplicate id %q", c.ChildID)
		}
		childIDs[c.ChildID] = true
		validateChild(c, path, &probs)
	}

	if probs.Empty() {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, probs.String())
}

func validateChild(c Child, path string, probs *policy.Problems) {
	if c.ChildAge.IsNull() {
		probs.Add(path+".child_age", "must not be null")
	}
	if age, ok := c.ChildAge.Get(); ok && (age < 0 || age > maxChildAge) {
		probs.Add(path+".child_age", "must be between 0 and %d, got %d", maxChildAge, age)
	}
	if c.Timezone.IsNull() {
		probs.Add(path+".timezone", "must not be null")
	}
	if tz, ok := c.Timezone.Get(); ok {
		validateTimezone(tz, path+".timezone", probs)
	}

	deviceIDs := make(map[string]bool, len(c.Devices))
	for j, dev := range c.Devices {
		dp := fmt.Sprintf("%s.devices[%d]", path, j)
		if dev.DeviceID == "" {
			probs.Add(dp+".device_id", "is required")
		} else if deviceIDs[dev.DeviceID] {
			probs.Add(dp+".device_id", "duplicate id %q", dev.DeviceID)
		}
		deviceIDs[dev.DeviceID] = true
		if dev.Model.IsNull() {
			probs.Add(dp+".model", "must not be null")
		}
	}

	policy.Validate(c.Policy, path+".policy", probs)
}

func validateTimezone(tz, path string, probs *policy.Problems) {
	if strings.TrimSpace(tz) == "" {
		probs.Add(path, "is required")
		return
	}
	// LoadLocation accepts "Local"; a document zone must be a real IANA name.
	if tz == "Local" {
		probs.Add(path, "must be an IANA zone name")
		return
	}
	if _, err := time.LoadLocation(tz); err != nil {
		probs.Add(path, "unknown zone %q", tz)
	}
}
