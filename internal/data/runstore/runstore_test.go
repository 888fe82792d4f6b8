package runstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/akolanti/lexintake/internal/domain/docModel"
)

func sampleRun() *docModel.RunStatus {
	return &docModel.RunStatus{
		RunID:      "run-abc",
		CaseFolder: "/cases/smith_v_jones",
		StartedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Phases: []docModel.PhaseStatus{
			{Phase: docModel.PhaseExtract, Successful: 4, Failed: 1, ElapsedSecs: 92.5},
		},
		TokenUsage: docModel.TokenUsage{Calls: 5, InputTokens: 12000, OutputTokens: 3000},
	}
}

func testStoreRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	run := sampleRun()
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := store.GetRun(ctx, run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.CaseFolder != run.CaseFolder {
		t.Errorf("case folder = %q", got.CaseFolder)
	}
	if len(got.Phases) != 1 || got.Phases[0].Successful != 4 {
		t.Errorf("phases = %+v", got.Phases)
	}
	if got.TokenUsage.InputTokens != 12000 {
		t.Errorf("token usage = %+v", got.TokenUsage)
	}

	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRedisRunStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	testStoreRoundTrip(t, NewRedisStore(client))

	if !mr.Exists("intake:run:run-abc") {
		t.Error("run key missing from redis")
	}
	ttl := mr.TTL("intake:run:run-abc")
	if ttl <= 0 {
		t.Errorf("run key has no TTL, got %v", ttl)
	}
}

func TestFileRunStore(t *testing.T) {
	testStoreRoundTrip(t, NewFileStore(t.TempDir()))
}
