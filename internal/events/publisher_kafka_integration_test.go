//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"pcps/pkg/testutil/containers"
)

func TestKafkaPublisherAgainstRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "pcps.save-events.it"
	cl, err := NewClient(rp.Brokers, topic)
	require.NoError(t, err)
	defer cl.Close()

	require.NoError(t, EnsureTopic(ctx, cl, topic, 1, 1))
	require.NoError(t, EnsureTopic(ctx, cl, topic, 1, 1), "existing topic is not an error")

	pub, err := NewKafka(cl, topic)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, SaveEvent{ID: "ev-1", Type: TypeSaveCompleted, FamilyID: "fam-1"}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())

	var got []SaveEvent
	fetches.EachRecord(func(r *kgo.Record) {
		var ev SaveEvent
		require.NoError(t, json.Unmarshal(r.Value, &ev))
		got = append(got, ev)
	})
	require.Len(t, got, 1)
	require.Equal(t, "fam-1", got[0].FamilyID)
}
