package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
)

func TestOutboxRetentionJobDeletesProcessedRows(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{deleted: []int64{3}}
	job := newOutboxRetentionJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.UTC().Add(-outboxRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.lastBatch != outboxRetentionBatch {
		t.Fatalf("expected batch %d, got %d", outboxRetentionBatch, repo.lastBatch)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestOutboxRetentionJobDrainsFullBatches(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{deleted: []int64{outboxRetentionBatch, outboxRetentionBatch, 12}}
	job := newOutboxRetentionJob(t, repo)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.called != 3 {
		t.Fatalf("expected repo called 3 times, got %d", repo.called)
	}
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{err: errors.New("boom")}
	job := newOutboxRetentionJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newOutboxRetentionJob(t *testing.T, repo *fakeOutboxRetentionRepo) *outboxRetentionJob {
	t.Helper()
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := jobIface.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("expected outboxRetentionJob, got %T", jobIface)
	}
	return job
}

type fakeOutboxRetentionRepo struct {
	lastCutoff time.Time
	lastBatch  int
	called     int
	deleted    []int64
	err        error
}

func (f *fakeOutboxRetentionRepo) DeleteProcessedBefore(cutoff time.Time, batch int) (int64, error) {
	f.lastCutoff = cutoff
	f.lastBatch = batch
	if f.err != nil {
		f.called++
		return 0, f.err
	}
	var rows int64
	if f.called < len(f.deleted) {
		rows = f.deleted[f.called]
	}
	f.called++
	return rows, nil
}
