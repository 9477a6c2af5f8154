//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pcps/internal/family/models"
	"pcps/internal/family/store"
	"pcps/pkg/field"
	"pcps/pkg/platform/sentinel"
	"pcps/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.SQLStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "family_documents"))
	s.store = store.NewSQL(s.postgres.DB)
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	_, err := s.store.Load(ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	committed, err := s.store.Commit(ctx, models.Example())
	s.Require().NoError(err)

	loaded, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(committed, loaded)
}

// TestConcurrentCommitsAcrossStores runs writers through separate store
// instances so only the row lock serializes them.
func (s *PostgresStoreSuite) TestConcurrentCommitsAcrossStores() {
	ctx := context.Background()
	_, err := s.store.Commit(ctx, models.Example())
	s.Require().NoError(err)

	const writers = 10
	frozen := time.Date(2026, 2, 6, 8, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := store.NewSQL(s.postgres.DB, store.WithClock(func() time.Time { return frozen }))
			if _, err := st.Commit(ctx, models.Example()); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(0), failures.Load())

	loaded, err := s.store.Load(ctx)
	s.Require().NoError(err)
	updated, ok := loaded.UpdatedAt.Get()
	s.Require().True(ok)
	s.True(updated.After(frozen), "each writer must advance past the previous stamp")
	s.Equal(field.Value(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)), loaded.CreatedAt)
}
