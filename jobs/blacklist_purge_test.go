package jobs_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/jobs"
	_ "github.com/gatewarden/gatewarden/testing"
)

type memStore struct {
	calls  int
	before time.Time
	purged int64
	err    error
}

func (s *memStore) PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	s.calls++
	s.before = before
	return s.purged, s.err
}

func TestHandlePurgesBeforeGivenTime(t *testing.T) {
	store := &memStore{purged: 3}
	job := jobs.NewBlacklistPurgeJob(store, nil)

	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	task, err := jobs.NewBlacklistPurgeTask(jobs.BlacklistPurgePayload{Before: before})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, before, store.before)
}

func TestHandleDefaultsToNow(t *testing.T) {
	store := &memStore{}
	job := jobs.NewBlacklistPurgeJob(store, nil)

	task, err := jobs.NewBlacklistPurgeTask(jobs.BlacklistPurgePayload{})
	require.NoError(t, err)

	start := time.Now().UTC()
	require.NoError(t, job.Handle(context.Background(), task))
	assert.False(t, store.before.Before(start))
}

func TestHandleSkipsRetryOnBadPayload(t *testing.T) {
	store := &memStore{}
	job := jobs.NewBlacklistPurgeJob(store, nil)

	err := job.Handle(context.Background(), asynq.NewTask(jobs.TaskBlacklistPurge, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, store.calls)
}

func TestHandlePropagatesStoreError(t *testing.T) {
	store := &memStore{err: assert.AnError}
	job := jobs.NewBlacklistPurgeJob(store, nil)

	task, err := jobs.NewBlacklistPurgeTask(jobs.BlacklistPurgePayload{})
	require.NoError(t, err)

	require.ErrorIs(t, job.Handle(context.Background(), task), assert.AnError)
}

func TestClientEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	task, err := jobs.NewBlacklistPurgeTask(jobs.BlacklistPurgePayload{})
	require.NoError(t, err)

	require.NoError(t, client.Enqueue(context.Background(), task, asynq.Queue(jobs.QueueDefault)))
	assert.NotEmpty(t, mr.Keys())
}
