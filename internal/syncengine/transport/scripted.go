package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	familymodels "pcps/internal/family/models"
	"pcps/internal/syncengine"
	targetmodels "pcps/internal/targets/models"
)

// Script is the deterministic behavior of one address.
type Script struct {
	Delay      time.Duration
	StatusCode int   // 0 means 200; non-2xx means rejected
	Err        error // returned as-is when set
	Panic      bool
	IgnoreCtx  bool // keep sleeping past the deadline
}

// Delivery is one recorded call.
type Delivery struct {
	Target   targetmodels.Target
	FamilyID string
	Version  string
}

// Scripted is a test double: each address behaves as scripted and every call
// is recorded. Unscripted addresses succeed immediately.
type Scripted struct {
	mu         sync.Mutex
	scripts    map[string]Script
	deliveries []Delivery
	inFlight   int
	maxFlight  int
}

func NewScripted(scripts map[string]Script) *Scripted {
	if scripts == nil {
		scripts = map[string]Script{}
	}
	return &Scripted{scripts: scripts}
}

func (s *Scripted) Deliver(ctx context.Context, target targetmodels.Target, doc *familymodels.Document) (syncengine.Receipt, error) {
	s.mu.Lock()
	script := s.scripts[target.Address]
	s.deliveries = append(s.deliveries, Delivery{Target: target, FamilyID: doc.FamilyID, Version: doc.PCPSVersion})
	s.inFlight++
	s.maxFlight = max(s.maxFlight, s.inFlight)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if script.Delay > 0 {
		if script.IgnoreCtx {
			time.Sleep(script.Delay)
		} else {
			t := time.NewTimer(script.Delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return syncengine.Receipt{}, ctx.Err()
			}
		}
	}
	if script.Panic {
		panic("scripted transport panic for " + target.Address)
	}
	if script.Err != nil {
		return syncengine.Receipt{}, script.Err
	}
	code := script.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	if code < 200 || code > 299 {
		return syncengine.Receipt{}, syncengine.Rejected(target.ID, code)
	}
	return syncengine.Receipt{StatusCode: code}, nil
}

// Deliveries returns the recorded calls in arrival order.
func (s *Scripted) Deliveries() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery(nil), s.deliveries...)
}

// Addresses returns the set of addresses that received a call.
func (s *Scripted) Addresses() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.deliveries))
	for _, d := range s.deliveries {
		out[d.Target.Address]++
	}
	return out
}

// MaxInFlight is the highest number of concurrent calls observed.
func (s *Scripted) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxFlight
}
