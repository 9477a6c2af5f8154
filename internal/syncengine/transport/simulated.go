package transport

import (
	"context"
	"net/http"
	"time"

	familymodels "pcps/internal/family/models"
	"pcps/internal/syncengine"
	targetmodels "pcps/internal/targets/models"
)

// Simulated stands in for a network during local development: every delivery
// waits Latency, then succeeds unless the address is listed as failing.
type Simulated struct {
	Latency time.Duration
	failing map[string]bool
}

func NewSimulated(latency time.Duration, failingAddresses ...string) *Simulated {
	failing := make(map[string]bool, len(failingAddresses))
	for _, a := range failingAddresses {
		failing[a] = true
	}
	return &Simulated{Latency: latency, failing: failing}
}

func (s *Simulated) Deliver(ctx context.Context, target targetmodels.Target, _ *familymodels.Document) (syncengine.Receipt, error) {
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return syncengine.Receipt{}, syncengine.NewDeliveryError(syncengine.ErrorTimeout, target.ID, "timed out", ctx.Err())
		}
	}
	if s.failing[target.Address] {
		return syncengine.Receipt{}, syncengine.Rejected(target.ID, http.StatusServiceUnavailable)
	}
	return syncengine.Receipt{StatusCode: http.StatusOK}, nil
}
