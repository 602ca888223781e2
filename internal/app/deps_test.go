package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valentine/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		MaxVideoBytes:      64 << 20,
		RedemptionCacheTTL: time.Minute,
		RateLimitRequests:  10,
		RateLimitWindow:    time.Minute,
		RateLimitBurst:     5,
		ObjectStore:        config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Assembler == nil {
		t.Fatal("expected assembler to be configured")
	}
	if deps.Resolver == nil {
		t.Fatal("expected resolver to be configured")
	}
	if deps.Summaries == nil {
		t.Fatal("expected summary store to be configured")
	}
	if deps.Trimmer == nil {
		t.Fatal("expected video trimmer to be configured")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
}

func TestBuildDependenciesRequiresBucket(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	if _, err := buildDependencies(context.Background(), fakePool{}, config.Config{}); err == nil {
		t.Fatal("expected error when object store bucket is missing")
	}
}
