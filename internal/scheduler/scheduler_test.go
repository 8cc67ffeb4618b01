package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRooms struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRooms) RoomCounts(context.Context) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return 3, 1, nil
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type recordingHealth struct {
	mu      sync.Mutex
	serving []bool
}

func (h *recordingHealth) SetServing(serving bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.serving = append(h.serving, serving)
}

func TestStartRunsJobsImmediately(t *testing.T) {
	rooms := &countingRooms{}
	health := &recordingHealth{}
	s := New("@every 1h", rooms, stubPinger{}, health, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 1, rooms.calls)
	assert.Equal(t, []bool{true}, health.serving)
}

func TestCheckHealthReportsFailure(t *testing.T) {
	health := &recordingHealth{}
	s := New("@every 1h", nil, stubPinger{err: assert.AnError}, health, nil)

	s.checkHealth()
	assert.Equal(t, []bool{false}, health.serving)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("not a spec", nil, nil, nil, nil)
	assert.Error(t, s.Start())
}

type recordingPruner struct {
	mu    sync.Mutex
	idles []time.Duration
}

func (p *recordingPruner) Prune(idle time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idles = append(p.idles, idle)
	return 1
}

func (p *recordingPruner) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idles)
}

func TestLimiterPruningJob(t *testing.T) {
	pruner := &recordingPruner{}
	s := New("@every 1s", nil, nil, nil, nil).WithLimiterPruning(pruner, 10*time.Minute)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return pruner.calls() > 0 }, 3*time.Second, 50*time.Millisecond)
	pruner.mu.Lock()
	assert.Equal(t, 10*time.Minute, pruner.idles[0])
	pruner.mu.Unlock()
}

func TestLimiterPruningSkippedWithoutIdle(t *testing.T) {
	pruner := &recordingPruner{}
	s := New("@every 1h", nil, nil, nil, nil).WithLimiterPruning(pruner, 0)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 2)
}
