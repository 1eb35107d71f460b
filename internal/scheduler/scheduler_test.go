package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/domain/task"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	service.RecurringTaskService
	ticks   atomic.Int32
	running atomic.Int32
	overlap atomic.Bool
	delay   time.Duration
}

func (e *stubEngine) Tick(context.Context) (*service.TickResult, error) {
	if e.running.Add(1) > 1 {
		e.overlap.Store(true)
	}
	defer e.running.Add(-1)

	time.Sleep(e.delay)
	e.ticks.Add(1)
	return &service.TickResult{
		StartedAt: time.Now().UTC(),
		Processed: 1,
		Generated: []*task.Task{{ID: "task_1", Title: "MVA"}},
	}, nil
}

type stubNotifier struct {
	mu    sync.Mutex
	tasks []*task.Task
}

func (n *stubNotifier) NotifyAssignees(_ context.Context, tasks []*task.Task) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tasks = append(n.tasks, tasks...)
	return len(tasks)
}

func newTestScheduler(interval time.Duration, engine *stubEngine, notifier *stubNotifier) *Scheduler {
	cfg := config.GetDefaultConfig()
	cfg.Scheduler.Interval = interval
	return New(cfg, engine, notifier, logger.NewNopLogger())
}

func TestStartStopStatus(t *testing.T) {
	s := newTestScheduler(time.Hour, &stubEngine{}, &stubNotifier{})

	st := s.Status()
	assert.False(t, st.IsRunning)
	assert.Nil(t, st.NextCheckAt)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	st = s.Status()
	assert.True(t, st.IsRunning)
	require.NotNil(t, st.NextCheckAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *st.NextCheckAt, 2*time.Second)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.Status().IsRunning)
}

func TestTriggerNowRunsSynchronously(t *testing.T) {
	engine := &stubEngine{}
	notifier := &stubNotifier{}
	s := newTestScheduler(time.Hour, engine, notifier)

	result, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.EqualValues(t, 1, engine.ticks.Load())
	assert.Len(t, notifier.tasks, 1)
	assert.Same(t, result, s.Status().LastTick)
}

func TestScheduledTicksFireAndNeverOverlap(t *testing.T) {
	engine := &stubEngine{delay: 50 * time.Millisecond}
	s := newTestScheduler(time.Second, engine, &stubNotifier{})

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.TriggerNow(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return engine.ticks.Load() >= 4 }, 3*time.Second, 50*time.Millisecond)
	assert.False(t, engine.overlap.Load())
}

func TestStopWaitsForRunningTick(t *testing.T) {
	engine := &stubEngine{delay: 300 * time.Millisecond}
	s := newTestScheduler(time.Second, engine, &stubNotifier{})
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool { return engine.running.Load() == 1 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.EqualValues(t, 0, engine.running.Load())
	assert.EqualValues(t, 1, engine.ticks.Load())
}

func TestStartRejectsInvalidInterval(t *testing.T) {
	s := newTestScheduler(0, &stubEngine{}, &stubNotifier{})
	assert.Error(t, s.Start())
	assert.False(t, s.Status().IsRunning)
}

func TestStatusDoesNotWaitForRunningTick(t *testing.T) {
	engine := &stubEngine{delay: 2 * time.Second}
	s := newTestScheduler(time.Hour, engine, &stubNotifier{})
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	triggered := make(chan struct{})
	go func() {
		defer close(triggered)
		_, _ = s.TriggerNow(context.Background())
	}()
	require.Eventually(t, func() bool { return engine.running.Load() == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan Status, 1)
	go func() { done <- s.Status() }()

	select {
	case st := <-done:
		assert.True(t, st.IsRunning)
		assert.Nil(t, st.LastTick)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Status blocked while a tick was running")
	}
	<-triggered
	assert.NotNil(t, s.Status().LastTick)
}
