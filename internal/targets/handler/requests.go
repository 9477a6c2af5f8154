package handler

import (
	"strconv"
	"strings"

	"pcps/internal/targets/models"
	dErrors "pcps/pkg/domain-errors"
)

// TargetRequest is the body for POST /targets and PUT /targets/{targetID}.
type TargetRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Enabled  *bool  `json:"enabled"`
}

func (r *TargetRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Endpoint = strings.TrimSpace(r.Endpoint)
}

func (r *TargetRequest) Validate() error {
	if r.Enabled == nil {
		return dErrors.New(dErrors.CodeValidation, "enabled is required")
	}
	if *r.Enabled && r.Endpoint == "" && r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "an enabled target needs a name or an endpoint")
	}
	return nil
}

func (r *TargetRequest) toModel() models.Target {
	return models.Target{ID: r.ID, Name: r.Name, Address: r.Endpoint, Enabled: *r.Enabled}
}

// ReplaceRequest is the body for PUT /targets.
type ReplaceRequest struct {
	Targets []TargetRequest `json:"targets"`
}

func (r *ReplaceRequest) Normalize() {
	for i := range r.Targets {
		r.Targets[i].Normalize()
	}
}

func (r *ReplaceRequest) Validate() error {
	if r.Targets == nil {
		return dErrors.New(dErrors.CodeValidation, "targets is required")
	}
	for i := range r.Targets {
		if r.Targets[i].Enabled == nil {
			return dErrors.New(dErrors.CodeValidation, "targets["+strconv.Itoa(i)+"].enabled is required")
		}
	}
	return nil
}

func (r *ReplaceRequest) toModels() []models.Target {
	out := make([]models.Target, 0, len(r.Targets))
	for i := range r.Targets {
		out = append(out, r.Targets[i].toModel())
	}
	return out
}
