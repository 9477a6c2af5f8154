package handler

import (
	"strings"
	"time"

	"pcps/internal/family/models"
	"pcps/internal/syncengine"
	targetmodels "pcps/internal/targets/models"
	dErrors "pcps/pkg/domain-errors"
)

// SyncRequest is the body for POST /family/sync: a document plus the exact
// targets to deliver it to, bypassing the stored registry.
type SyncRequest struct {
	Document *models.Document      `json:"document"`
	Targets  []targetmodels.Target `json:"targets"`
}

func (r *SyncRequest) Normalize() {
	for i := range r.Targets {
		r.Targets[i].ID = strings.TrimSpace(r.Targets[i].ID)
		r.Targets[i].Name = strings.TrimSpace(r.Targets[i].Name)
		r.Targets[i].Address = strings.TrimSpace(r.Targets[i].Address)
	}
}

func (r *SyncRequest) Validate() error {
	if r.Document == nil {
		return dErrors.New(dErrors.CodeValidation, "document is required")
	}
	return nil
}

// SaveResponse is returned by both save endpoints.
type SaveResponse struct {
	Data        *models.Document    `json:"data"`
	Timestamp   time.Time           `json:"timestamp"`
	SyncResults []syncengine.Result `json:"syncResults"`
}

func toSaveResponse(out *syncengine.Outcome) SaveResponse {
	results := out.Results
	if results == nil {
		results = []syncengine.Result{}
	}
	return SaveResponse{
		Data:        out.Document,
		Timestamp:   out.Document.UpdatedAt.OrElse(time.Time{}),
		SyncResults: results,
	}
}
