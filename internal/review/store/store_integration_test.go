//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"certledger/pkg/testutil/containers"
)

type PostgresIntegrationSuite struct {
	contractSuite
}

func TestPostgresIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	s := new(PostgresIntegrationSuite)
	s.newStore = func() Store {
		if err := pg.TruncateTables(context.Background(), "mint_requests"); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewPostgres(pg.DB)
	}
	suite.Run(t, s)
}

type RedisIntegrationSuite struct {
	contractSuite
}

func TestRedisIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	s := new(RedisIntegrationSuite)
	s.newStore = func() Store {
		if err := rc.FlushAll(context.Background()); err != nil {
			t.Fatalf("flush: %v", err)
		}
		return NewRedis(rc.Client)
	}
	suite.Run(t, s)
}
