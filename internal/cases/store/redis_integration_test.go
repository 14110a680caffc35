//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"casetriage/internal/cases/models"
	"casetriage/pkg/platform/sentinel"
	"casetriage/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	contractSuite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration suite in short mode")
	}
	s := new(RedisStoreSuite)
	s.redis = containers.GetManager().GetRedis(t)
	s.newStore = func() caseStore {
		s.Require().NoError(s.redis.FlushAll(context.Background()))
		return NewRedis(s.redis.Client, WithClock(fixedClock))
	}
	suite.Run(t, s)
}

func (s *RedisStoreSuite) TestScopeIndexIsNormalised() {
	s.seed("idx-1", "  San Isidro ", models.Age(4))

	members, err := s.redis.Client.SMembers(s.ctx, scopeKey("SAN ISIDRO")).Result()
	s.Require().NoError(err)
	s.Equal([]string{"idx-1"}, members)
}

func (s *RedisStoreSuite) TestCreateLeavesNothingBehindWhenIndexingFails() {
	broken := scopeKey("Broken Scope")
	s.Require().NoError(s.redis.Client.Set(s.ctx, broken, "not-a-set", 0).Err())

	c, err := models.NewCase("half-written", reportedAt, models.Age(6), "", "Broken Scope")
	s.Require().NoError(err)
	s.Require().Error(s.store.Create(s.ctx, c))

	_, err = s.store.FindByID(s.ctx, "half-written")
	s.ErrorIs(err, sentinel.ErrNotFound)
	all, err := s.store.FetchAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)

	s.Require().NoError(s.redis.Client.Del(s.ctx, broken).Err())
	s.Require().NoError(s.store.Create(s.ctx, c), "retry succeeds once the index is usable")
	scoped, err := s.store.FetchByScope(s.ctx, "broken scope")
	s.Require().NoError(err)
	s.Require().Len(scoped, 1)
	s.Equal(models.CaseID("half-written"), scoped[0].ID)
}
