package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"pcps/pkg/platform/circuit"
)

type fakeProducer struct {
	mu       sync.Mutex
	fail     bool
	failKeys map[string]bool
	holdKey  string
	release  chan struct{}
	produced []*kgo.Record
	calls    int
}

func (f *fakeProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	hold, release := f.holdKey, f.release
	f.mu.Unlock()
	for _, r := range rs {
		if hold != "" && string(r.Key) == hold {
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.fail || f.failKeys[string(r.Key)] {
			out = append(out, kgo.ProduceResult{Record: r, Err: errors.New("broker down")})
			continue
		}
		f.produced = append(f.produced, r)
		out = append(out, kgo.ProduceResult{Record: r})
	}
	return out
}

func (f *fakeProducer) setFailKeys(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys = map[string]bool{}
	for _, k := range keys {
		f.failKeys[k] = true
	}
}

// hold blocks produce calls for key until the returned func is called.
func (f *fakeProducer) hold(key string) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdKey = key
	f.release = make(chan struct{})
	ch := f.release
	return func() { close(ch) }
}

func (f *fakeProducer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProducer) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeProducer) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.produced))
	for _, r := range f.produced {
		out = append(out, string(r.Key))
	}
	return out
}

type KafkaPublisherSuite struct {
	suite.Suite
	producer *fakeProducer
	now      time.Time
	pub      *KafkaPublisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupTest() {
	s.producer = &fakeProducer{}
	s.now = time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC)
	pub, err := NewKafka(s.producer, "pcps.save-events",
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))),
		WithProbeInterval(time.Minute),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	s.pub = pub
}

func event(familyID string) SaveEvent {
	return SaveEvent{ID: familyID + "-ev", Type: TypeSaveCompleted, FamilyID: familyID}
}

func (s *KafkaPublisherSuite) TestProducesKeyedRecord() {
	s.Require().NoError(s.pub.Publish(context.Background(), event("fam-1")))

	s.Require().Len(s.producer.produced, 1)
	rec := s.producer.produced[0]
	s.Equal("pcps.save-events", rec.Topic)
	s.Equal("fam-1", string(rec.Key))
	s.Contains(string(rec.Value), `"type":"save.completed"`)
	s.Equal("type", rec.Headers[0].Key)
	s.Empty(s.pub.Buffered())
}

func (s *KafkaPublisherSuite) TestFailuresAreBuffered() {
	s.producer.setFail(true)

	err := s.pub.Publish(context.Background(), event("fam-1"))
	s.Require().Error(err)
	s.Len(s.pub.Buffered(), 1)
}

// waitFlush blocks until no flush is running.
func (p *KafkaPublisher) waitFlush() {
	p.flushes.Wait()
}

// openCircuit fails "a" and "b" to open the breaker, then buffers "c"
// without a broker call.
func (s *KafkaPublisherSuite) openCircuit(ctx context.Context) {
	s.producer.setFail(true)
	_ = s.pub.Publish(ctx, event("a"))
	_ = s.pub.Publish(ctx, event("b"))
	s.Require().True(s.pub.breaker.IsOpen())
	_ = s.pub.Publish(ctx, event("c"))
	s.producer.setFail(false)
}

func (s *KafkaPublisherSuite) bufferedKeys() []string {
	out := []string{}
	for _, ev := range s.pub.Buffered() {
		out = append(out, ev.FamilyID)
	}
	return out
}

func (s *KafkaPublisherSuite) TestOpenCircuitSkipsBrokerUntilProbe() {
	ctx := context.Background()
	s.producer.setFail(true)
	_ = s.pub.Publish(ctx, event("a"))
	_ = s.pub.Publish(ctx, event("b"))
	s.Require().True(s.pub.breaker.IsOpen())
	callsWhenOpened := s.producer.callCount()

	s.Run("within the probe interval the broker is not called", func() {
		_ = s.pub.Publish(ctx, event("c"))
		s.Equal(callsWhenOpened, s.producer.callCount())
		s.Len(s.pub.Buffered(), 3)
	})

	s.Run("a successful probe closes the circuit and flushes the outbox", func() {
		s.producer.setFail(false)
		s.now = s.now.Add(2 * time.Minute)

		s.Require().NoError(s.pub.Publish(ctx, event("d")))
		s.False(s.pub.breaker.IsOpen())
		s.Require().NoError(s.pub.Close(ctx))
		s.Empty(s.pub.Buffered())
		s.Equal([]string{"d", "a", "b", "c"}, s.producer.keys())
	})
}

func (s *KafkaPublisherSuite) TestFlushDoesNotBlockPublish() {
	ctx := context.Background()
	s.openCircuit(ctx)
	s.now = s.now.Add(2 * time.Minute)
	release := s.producer.hold("a")

	start := time.Now()
	s.Require().NoError(s.pub.Publish(ctx, event("d")))
	s.Less(time.Since(start), time.Second, "the probe returns while the flush is stuck")

	s.Require().NoError(s.pub.Publish(ctx, event("e")))
	s.Equal([]string{"d"}, s.producer.keys(), "e waits behind the buffered events")

	release()
	s.Require().NoError(s.pub.Close(ctx))
	s.Equal([]string{"d", "a", "b", "c", "e"}, s.producer.keys())
	s.Empty(s.pub.Buffered())
}

func (s *KafkaPublisherSuite) TestInterruptedFlushKeepsOrder() {
	ctx := context.Background()
	s.openCircuit(ctx)
	s.now = s.now.Add(2 * time.Minute)
	s.producer.setFailKeys("b")

	s.Require().NoError(s.pub.Publish(ctx, event("d")))
	s.pub.waitFlush()
	s.Equal([]string{"d", "a"}, s.producer.keys())
	s.Equal([]string{"b", "c"}, s.bufferedKeys())
	s.False(s.pub.breaker.IsOpen(), "one failure stays under the threshold")

	s.Run("the next publish restarts the flush from the survivors", func() {
		s.producer.setFailKeys()

		s.Require().NoError(s.pub.Publish(ctx, event("e")))
		s.Require().NoError(s.pub.Close(ctx))
		s.Equal([]string{"d", "a", "e", "b", "c"}, s.producer.keys())
		s.Empty(s.pub.Buffered())
	})
}

func (s *KafkaPublisherSuite) TestCloseHonoursContext() {
	ctx := context.Background()
	s.openCircuit(ctx)
	s.now = s.now.Add(2 * time.Minute)
	release := s.producer.hold("a")
	defer release()

	s.Require().NoError(s.pub.Publish(ctx, event("d")))
	closeCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	s.ErrorIs(s.pub.Close(closeCtx), context.DeadlineExceeded)
}

func TestNewKafkaRequiresDependencies(t *testing.T) {
	_, err := NewKafka(nil, "t")
	require.Error(t, err)
	_, err = NewKafka(&fakeProducer{}, "")
	require.Error(t, err)
}

func TestInMemoryPublisherBound(t *testing.T) {
	p := NewInMemory(2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Publish(context.Background(), event(id)))
	}
	got := p.List()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].FamilyID)
	assert.Equal(t, "c", got[1].FamilyID)

	assert.Len(t, p.Drain(), 2)
	assert.Zero(t, p.Len())
}
