// Package events publishes a record of every completed save so downstream
// consumers (dashboards, audit, retry jobs) can follow what reached which
// platform without polling the service.
package events

import (
	"time"

	"github.com/google/uuid"

	familymodels "pcps/internal/family/models"
	"pcps/internal/syncengine"
)

// TypeSaveCompleted is the only event type emitted today.
const TypeSaveCompleted = "save.completed"

// TargetOutcome summarizes one delivery.
type TargetOutcome struct {
	TargetID   string                   `json:"target_id"`
	Status     syncengine.Status        `json:"status"`
	Category   syncengine.ErrorCategory `json:"category,omitempty"`
	DurationMs int64                    `json:"duration_ms"`
}

// SaveEvent is the wire shape published for each save.
type SaveEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	FamilyID   string          `json:"family_id"`
	Version    string          `json:"pcps_version"`
	UpdatedAt  time.Time       `json:"updated_at"`
	OccurredAt time.Time       `json:"occurred_at"`
	RequestID  string          `json:"request_id,omitempty"`
	Client     string          `json:"client,omitempty"`
	Delivered  int             `json:"delivered"`
	Failed     int             `json:"failed"`
	Outcomes   []TargetOutcome `json:"outcomes"`
}

// NewSaveEvent summarizes a committed save.
func NewSaveEvent(doc *familymodels.Document, results []syncengine.Result, occurredAt time.Time) SaveEvent {
	ev := SaveEvent{
		ID:         uuid.NewString(),
		Type:       TypeSaveCompleted,
		FamilyID:   doc.FamilyID,
		Version:    doc.PCPSVersion,
		UpdatedAt:  doc.UpdatedAt.OrElse(time.Time{}),
		OccurredAt: occurredAt.UTC(),
		Outcomes:   make([]TargetOutcome, 0, len(results)),
	}
	for _, r := range results {
		if r.Success {
			ev.Delivered++
		} else {
			ev.Failed++
		}
		ev.Outcomes = append(ev.Outcomes, TargetOutcome{
			TargetID:   r.TargetID,
			Status:     r.Status,
			Category:   r.Category,
			DurationMs: r.Duration.Milliseconds(),
		})
	}
	return ev
}
