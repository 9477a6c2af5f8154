package syncengine

import (
	"encoding/json"
	"time"
)

// Status is the per-delivery state: pending until it reaches one of the
// terminal states, and never changes after that.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// IsTerminal reports whether s is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed || s == StatusTimedOut
}

// Receipt is what a transport reports for an accepted delivery.
type Receipt struct {
	StatusCode int
}

// Result is the outcome of one delivery, in registry order.
type Result struct {
	TargetID   string
	TargetName string
	Address    string
	Success    bool
	Status     Status
	Category   ErrorCategory // empty on success
	Message    string
	Duration   time.Duration
}

type resultJSON struct {
	PlatformID   string        `json:"platformId"`
	PlatformName string        `json:"platformName"`
	Endpoint     string        `json:"endpoint"`
	Success      bool          `json:"success"`
	Status       Status        `json:"status"`
	Category     ErrorCategory `json:"category,omitempty"`
	Message      string        `json:"message"`
	DurationMs   int64         `json:"durationMs"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		PlatformID:   r.TargetID,
		PlatformName: r.TargetName,
		Endpoint:     r.Address,
		Success:      r.Success,
		Status:       r.Status,
		Category:     r.Category,
		Message:      r.Message,
		DurationMs:   r.Duration.Milliseconds(),
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{
		TargetID:   raw.PlatformID,
		TargetName: raw.PlatformName,
		Address:    raw.Endpoint,
		Success:    raw.Success,
		Status:     raw.Status,
		Category:   raw.Category,
		Message:    raw.Message,
		Duration:   time.Duration(raw.DurationMs) * time.Millisecond,
	}
	return nil
}

// Failed returns the results that did not succeed.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}
