package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/suite"

	"pcps/internal/targets/models"
	"pcps/internal/targets/store"
	dErrors "pcps/pkg/domain-errors"
)

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) ([]models.Target, error) { return nil, f.err }
func (f failingStore) Update(context.Context, store.UpdateFunc) ([]models.Target, error) {
	return nil, f.err
}

// racingStore runs fn once against an empty registry, discards the result as
// if another writer won the transaction, then runs it again against what that
// writer stored.
type racingStore struct{ winner []models.Target }

func (r racingStore) Load(context.Context) ([]models.Target, error) { return r.winner, nil }
func (r racingStore) Update(_ context.Context, fn store.UpdateFunc) ([]models.Target, error) {
	if _, err := fn(nil); err != nil {
		return nil, err
	}
	return fn(slices.Clone(r.winner))
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = New(store.NewInMemory())
}

func (s *ServiceSuite) seed(list ...models.Target) {
	_, err := s.service.Replace(s.ctx, list)
	s.Require().NoError(err)
}

func (s *ServiceSuite) ids() []string {
	list, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

func (s *ServiceSuite) TestListEmptyRegistry() {
	list, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *ServiceSuite) TestAdd() {
	s.Run("appends in order and trims fields", func() {
		_, err := s.service.Add(s.ctx, models.Target{ID: "a", Name: " Apple ", Address: " https://x ", Enabled: true})
		s.Require().NoError(err)
		_, err = s.service.Add(s.ctx, models.Target{ID: "b"})
		s.Require().NoError(err)

		s.Equal([]string{"a", "b"}, s.ids())
		list, _ := s.service.List(s.ctx)
		s.Equal("Apple", list[0].Name)
		s.Equal("https://x", list[0].Address)
	})

	s.Run("generates a missing id", func() {
		added, err := s.service.Add(s.ctx, models.Target{Name: "New"})
		s.Require().NoError(err)
		s.NotEmpty(added.ID)
	})

	s.Run("duplicate id is a conflict", func() {
		_, err := s.service.Add(s.ctx, models.Target{ID: "a"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestUpdate() {
	s.seed(models.Target{ID: "a"}, models.Target{ID: "b"}, models.Target{ID: "c"})

	s.Run("replaces in place", func() {
		updated, err := s.service.Update(s.ctx, "b", models.Target{ID: "ignored", Name: "Bee", Address: "https://b", Enabled: true})
		s.Require().NoError(err)
		s.Equal("b", updated.ID)
		s.Equal([]string{"a", "b", "c"}, s.ids())

		list, _ := s.service.List(s.ctx)
		s.True(list[1].IsActive())
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.Update(s.ctx, "zzz", models.Target{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRemove() {
	s.seed(models.Target{ID: "a"}, models.Target{ID: "b"}, models.Target{ID: "c"})

	s.Require().NoError(s.service.Remove(s.ctx, "b"))
	s.Equal([]string{"a", "c"}, s.ids())

	err := s.service.Remove(s.ctx, "b")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestReplace() {
	s.seed(models.Target{ID: "old"})

	s.Run("swaps the list", func() {
		out, err := s.service.Replace(s.ctx, []models.Target{{ID: "x"}, {Name: "no id"}})
		s.Require().NoError(err)
		s.Require().Len(out, 2)
		s.NotEmpty(out[1].ID)
		s.Equal("x", s.ids()[0])
	})

	s.Run("duplicate ids leave the registry unchanged", func() {
		before := s.ids()
		_, err := s.service.Replace(s.ctx, []models.Target{{ID: "d"}, {ID: "d"}})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(before, s.ids())
	})
}

func (s *ServiceSuite) TestSnapshotIsIsolatedFromLaterEdits() {
	s.seed(models.Target{ID: "a", Address: "https://x", Enabled: true})

	snap, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)

	_, err = s.service.Update(s.ctx, "a", models.Target{Enabled: false})
	s.Require().NoError(err)

	s.True(snap[0].Enabled)
	s.Equal("https://x", snap[0].Address)
}

func (s *ServiceSuite) TestSeedSuggested() {
	seeded, err := s.service.SeedSuggested(s.ctx)
	s.Require().NoError(err)
	s.True(seeded)
	s.Len(s.ids(), 5)

	seeded, err = s.service.SeedSuggested(s.ctx)
	s.Require().NoError(err)
	s.False(seeded)
	s.Len(s.ids(), 5)
}

func (s *ServiceSuite) TestSeedSuggestedSkipsEmptiedRegistry() {
	s.seed()
	seeded, err := s.service.SeedSuggested(s.ctx)
	s.Require().NoError(err)
	s.False(seeded, "an explicitly emptied registry stays empty")
}

func (s *ServiceSuite) TestSeedSuggestedReportsOnlyTheWriteThatLanded() {
	svc := New(racingStore{winner: models.Suggested()})

	seeded, err := svc.SeedSuggested(s.ctx)
	s.Require().NoError(err)
	s.False(seeded, "another writer seeded between attempts")
}

func (s *ServiceSuite) TestStoreFailuresAreUnavailable() {
	svc := New(failingStore{err: errors.New("connection refused")})

	_, err := svc.List(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	_, err = svc.Add(s.ctx, models.Target{ID: "a"})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
