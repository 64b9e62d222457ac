//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactbook/internal/ratelimit/store/bucket"
	"contactbook/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
	now   time.Time
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.now = time.Now().Truncate(time.Millisecond)
	s.store = bucket.NewRedisBucketStore(s.redis.Client, bucket.WithRedisClock(func() time.Time { return s.now }))
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	ctx := context.Background()

	first, err := s.store.Allow(ctx, "rl:test:user:a", 2, 5*time.Second)
	s.Require().NoError(err)
	s.True(first.Allowed)
	s.Equal(1, first.Remaining)
	s.Equal(s.now.Add(5*time.Second), first.ResetAt)

	second, err := s.store.Allow(ctx, "rl:test:user:a", 2, 5*time.Second)
	s.Require().NoError(err)
	s.True(second.Allowed)
	s.Equal(0, second.Remaining)

	s.now = s.now.Add(2 * time.Second)
	third, err := s.store.Allow(ctx, "rl:test:user:a", 2, 5*time.Second)
	s.Require().NoError(err)
	s.False(third.Allowed)
	s.Equal(3, third.RetryAfter)

	count, err := s.redis.Client.ZCard(ctx, "rl:test:user:a").Result()
	s.Require().NoError(err)
	s.Equal(int64(2), count, "denied requests are not recorded")

	ttl, err := s.redis.Client.PTTL(ctx, "rl:test:user:a").Result()
	s.Require().NoError(err)
	s.Positive(ttl, "buckets expire on their own")
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	ctx := context.Background()
	key := "rl:test:user:slide"

	for range 2 {
		_, err := s.store.Allow(ctx, key, 2, 5*time.Second)
		s.Require().NoError(err)
	}

	s.now = s.now.Add(5 * time.Second)
	result, err := s.store.Allow(ctx, key, 2, 5*time.Second)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(1, result.Remaining)
}
