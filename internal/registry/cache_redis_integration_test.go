//go:build integration

package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/testutil/containers"
)

type countingFetcher struct {
	calls int
}

func (f *countingFetcher) FetchCompany(_ context.Context, id domain.EntityID) (*registry.Company, error) {
	f.calls++
	return &registry.Company{
		CNPJ:         id.String(),
		LegalName:    "FARMACIA CENTRAL LTDA",
		MainActivity: registry.Activity{Code: "4771701", Description: "Farmácia"},
		FetchedAt:    time.Now().UTC().Truncate(time.Second),
	}, nil
}

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestCompanyRoundTrip() {
	ctx := context.Background()
	next := &countingFetcher{}
	cache := registry.NewRedisCache(next, s.redis.Client, time.Minute, nil, nil)
	id := domain.EntityID("11222333000181")

	first, err := cache.FetchCompany(ctx, id)
	s.Require().NoError(err)
	second, err := cache.FetchCompany(ctx, id)
	s.Require().NoError(err)

	s.Equal(1, next.calls)
	s.Equal(first.LegalName, second.LegalName)
	s.True(first.FetchedAt.Equal(second.FetchedAt))
}

func (s *RedisCacheSuite) TestTTLExpires() {
	ctx := context.Background()
	next := &countingFetcher{}
	cache := registry.NewRedisCache(next, s.redis.Client, time.Second, nil, nil)
	id := domain.EntityID("11222333000181")

	_, err := cache.FetchCompany(ctx, id)
	s.Require().NoError(err)
	time.Sleep(1500 * time.Millisecond)
	_, err = cache.FetchCompany(ctx, id)
	s.Require().NoError(err)

	s.Equal(2, next.calls)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Health(ctx))
	next := &countingFetcher{}
	cache := registry.NewRedisCache(next, s.redis.Client, time.Minute, nil, nil)
	id := domain.EntityID("11222333000181")

	_, err := cache.FetchCompany(ctx, id)
	s.Require().NoError(err)
	s.Require().NoError(cache.Invalidate(ctx, id))
	_, err = cache.FetchCompany(ctx, id)
	s.Require().NoError(err)

	s.Equal(2, next.calls)
}
