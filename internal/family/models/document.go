package models

import (
	"slices"
	"time"

	"pcps/internal/policy"
	"pcps/pkg/field"
)

// Version is the document format this service reads and writes.
const Version = "1.1"

// Document is the aggregate root for one family.
//
// Invariants:
//   - FamilyID never changes once the document has been committed
//   - UpdatedAt strictly increases across commits from one store
//   - Guardian ids and child ids are unique within the document
//   - Device ids are unique within their child
//
// Mutation is copy-on-write: callers Clone, edit the copy and submit the whole
// document for commit.
type Document struct {
	PCPSVersion string                 `json:"pcps_version"`
	FamilyID    string                 `json:"family_id"`
	FamilyName  field.Field[string]    `json:"family_name,omitzero"`
	CreatedAt   field.Field[time.Time] `json:"created_at,omitzero"`
	UpdatedAt   field.Field[time.Time] `json:"updated_at,omitzero"`
	Timezone    string                 `json:"timezone"`
	Guardians   []Guardian             `json:"guardians"`
	Children    []Child                `json:"children"`
	Extensions  policy.Extensions      `json:"extensions,omitzero"`
}

type GuardianRole string

const (
	RolePrimary  GuardianRole = "primary"
	RoleGuardian GuardianRole = "guardian"
)

func (r GuardianRole) IsValid() bool {
	return r == RolePrimary || r == RoleGuardian
}

// Guardian is an adult who manages the family's policies. Nothing requires
// exactly one primary guardian.
type Guardian struct {
	GuardianID string              `json:"guardian_id"`
	Name       string              `json:"name"`
	Email      field.Field[string] `json:"email,omitzero"`
	Role       GuardianRole        `json:"role"`
}

// Child owns exactly one policy. A document without children is valid but
// gives adapters nothing to enforce.
type Child struct {
	ChildID   string              `json:"child_id"`
	ChildName string              `json:"child_name"`
	ChildAge  field.Field[int]    `json:"child_age,omitzero"`
	Timezone  field.Field[string] `json:"timezone,omitzero"`
	Devices   []Device            `json:"devices,omitzero"`
	Policy    policy.Policy       `json:"policy"`
}

// Device platform tags are free-form; these are the ones the example data
// and suggested adapters use.
const (
	PlatformApple     = "apple"
	PlatformGoogle    = "google"
	PlatformMicrosoft = "microsoft"
	PlatformNintendo  = "nintendo"
	PlatformAmazon    = "amazon"
)

type Device struct {
	DeviceID   string              `json:"device_id"`
	DeviceName string              `json:"device_name"`
	Platform   string              `json:"platform"`
	Model      field.Field[string] `json:"model,omitzero"`
}

// Clone returns a deep copy sharing no slices or maps with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Guardians = slices.Clone(d.Guardians)
	if d.Children != nil {
		out.Children = make([]Child, len(d.Children))
		for i, c := range d.Children {
			out.Children[i] = c.Clone()
		}
	}
	out.Extensions = d.Extensions.Clone()
	return &out
}

func (c Child) Clone() Child {
	out := c
	out.Devices = slices.Clone(c.Devices)
	out.Policy = c.Policy.Clone()
	return out
}

// Child returns the child with the given id.
func (d *Document) Child(childID string) (Child, bool) {
	for _, c := range d.Children {
		if c.ChildID == childID {
			return c, true
		}
	}
	return Child{}, false
}

// GuardianEmails lists non-empty guardian email addresses in document order.
func (d *Document) GuardianEmails() []string {
	var out []string
	for _, g := range d.Guardians {
		if e, ok := g.Email.Get(); ok && e != "" {
			out = append(out, e)
		}
	}
	return out
}

// WithMergedPolicies returns a copy whose child policies have every absent
// field filled from the defaults.
func (d *Document) WithMergedPolicies() *Document {
	out := d.Clone()
	for i := range out.Children {
		out.Children[i].Policy = policy.Merge(out.Children[i].Policy)
	}
	return out
}
