//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"pcps/pkg/testutil/containers"
)

func TestRedisTargetStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)

	suite.Run(t, &TargetStoreSuite{newStore: func() TargetStore {
		if err := rc.FlushAll(context.Background()); err != nil {
			t.Fatalf("flush redis: %v", err)
		}
		return NewRedis(rc.Client, "pcps:targets:test")
	}})
}
