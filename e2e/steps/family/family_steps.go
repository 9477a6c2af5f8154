package family

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cucumber/godog"
)

// TestContext defines the methods needed from the main test context.
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	Status() int
	DecodeResponse(v any) error
}

// RegisterSteps registers document save and delivery steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &familySteps{tc: tc, adapters: map[string]*adapter{}}

	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		steps.close()
		return ctx, err
	})

	ctx.Step(`^a platform adapter "([^"]*)" answering (\d+)$`, steps.adapterAnswering)
	ctx.Step(`^a platform adapter "([^"]*)" that never answers in time$`, steps.adapterHanging)
	ctx.Step(`^I sync the family to those adapters$`, steps.syncToAdapters)
	ctx.Step(`^I sync the family with the adapter "([^"]*)" disabled$`, steps.syncWithDisabled)
	ctx.Step(`^the sync should report (\d+) results?$`, steps.resultCount)
	ctx.Step(`^"([^"]*)" should be reported as (delivered|failed|timed_out)$`, steps.reportedAs)
	ctx.Step(`^"([^"]*)" should have failed with category "([^"]*)"$`, steps.failedWithCategory)
	ctx.Step(`^the adapter "([^"]*)" should have received (\d+) documents?$`, steps.adapterReceived)
	ctx.Step(`^the document timestamp should have advanced$`, steps.timestampAdvanced)
}

type adapter struct {
	srv *httptest.Server
	mu  sync.Mutex
	got int
}

func (a *adapter) received() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.got
}

type result struct {
	PlatformID string `json:"platformId"`
	Success    bool   `json:"success"`
	Status     string `json:"status"`
	Category   string `json:"category"`
	Message    string `json:"message"`
}

type saveResponse struct {
	Data        map[string]any `json:"data"`
	Timestamp   time.Time      `json:"timestamp"`
	SyncResults []result       `json:"syncResults"`
}

type familySteps struct {
	tc       TestContext
	adapters map[string]*adapter
	order    []string

	previous time.Time
	last     saveResponse
}

func (s *familySteps) close() {
	for _, a := range s.adapters {
		a.srv.Close()
	}
	s.adapters = map[string]*adapter{}
	s.order = nil
	s.previous = time.Time{}
}

func (s *familySteps) add(id string, h func(a *adapter) http.HandlerFunc) {
	a := &adapter{}
	a.srv = httptest.NewServer(h(a))
	s.adapters[id] = a
	s.order = append(s.order, id)
}

func (s *familySteps) adapterAnswering(ctx context.Context, id string, status int) error {
	s.add(id, func(a *adapter) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			a.mu.Lock()
			a.got++
			a.mu.Unlock()
			w.WriteHeader(status)
		}
	})
	return nil
}

func (s *familySteps) adapterHanging(ctx context.Context, id string) error {
	s.add(id, func(a *adapter) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			a.mu.Lock()
			a.got++
			a.mu.Unlock()
			select {
			case <-r.Context().Done():
			case <-time.After(time.Minute):
			}
		}
	})
	return nil
}

// currentDocument reuses the stored document so the family id never changes
// between scenarios, falling back to a fresh template.
func (s *familySteps) currentDocument() (map[string]any, error) {
	if err := s.tc.GET("/family"); err != nil {
		return nil, err
	}
	var doc map[string]any
	if s.tc.Status() == http.StatusOK {
		return doc, s.tc.DecodeResponse(&doc)
	}
	if err := s.tc.GET("/templates/document"); err != nil {
		return nil, err
	}
	return doc, s.tc.DecodeResponse(&doc)
}

func (s *familySteps) sync(disabled string) error {
	doc, err := s.currentDocument()
	if err != nil {
		return err
	}
	if ts, ok := doc["updated_at"].(string); ok {
		s.previous, _ = time.Parse(time.RFC3339Nano, ts)
	}

	targets := make([]map[string]any, 0, len(s.order))
	for _, id := range s.order {
		targets = append(targets, map[string]any{
			"id":       id,
			"name":     id,
			"endpoint": s.adapters[id].srv.URL,
			"enabled":  id != disabled,
		})
	}
	if err := s.tc.POST("/family/sync", map[string]any{"document": doc, "targets": targets}); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusOK {
		return fmt.Errorf("sync returned %d", s.tc.Status())
	}
	return s.tc.DecodeResponse(&s.last)
}

func (s *familySteps) syncToAdapters(ctx context.Context) error {
	return s.sync("")
}

func (s *familySteps) syncWithDisabled(ctx context.Context, id string) error {
	return s.sync(id)
}

func (s *familySteps) resultCount(ctx context.Context, n int) error {
	if got := len(s.last.SyncResults); got != n {
		raw, _ := json.Marshal(s.last.SyncResults)
		return fmt.Errorf("expected %d results, got %d: %s", n, got, raw)
	}
	return nil
}

func (s *familySteps) find(id string) (result, error) {
	for _, r := range s.last.SyncResults {
		if r.PlatformID == id {
			return r, nil
		}
	}
	return result{}, fmt.Errorf("no result for %q", id)
}

func (s *familySteps) reportedAs(ctx context.Context, id, status string) error {
	r, err := s.find(id)
	if err != nil {
		return err
	}
	if r.Status != status {
		return fmt.Errorf("expected %s to be %s, got %s (%s)", id, status, r.Status, r.Message)
	}
	return nil
}

func (s *familySteps) failedWithCategory(ctx context.Context, id, category string) error {
	r, err := s.find(id)
	if err != nil {
		return err
	}
	if r.Success || r.Category != category {
		return fmt.Errorf("expected %s to fail with %s, got success=%t category=%q", id, category, r.Success, r.Category)
	}
	return nil
}

func (s *familySteps) adapterReceived(ctx context.Context, id string, n int) error {
	a, ok := s.adapters[id]
	if !ok {
		return fmt.Errorf("unknown adapter %q", id)
	}
	if got := a.received(); got != n {
		return fmt.Errorf("expected %s to receive %d documents, got %d", id, n, got)
	}
	return nil
}

func (s *familySteps) timestampAdvanced(ctx context.Context) error {
	if !s.last.Timestamp.After(s.previous) {
		return fmt.Errorf("timestamp %s did not advance past %s", s.last.Timestamp, s.previous)
	}
	return nil
}
