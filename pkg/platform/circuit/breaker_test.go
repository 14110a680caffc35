package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// outcome is one recorded call and what the breaker should report after it.
type outcome struct {
	fail   bool
	open   bool
	opened bool
	closed bool
}

func replay(t *testing.T, b *Breaker, script []outcome) {
	t.Helper()
	for i, step := range script {
		var change StateChange
		if step.fail {
			_, change = b.RecordFailure()
		} else {
			_, change = b.RecordSuccess()
		}
		assert.Equal(t, step.open, b.IsOpen(), "step %d open", i)
		assert.Equal(t, step.opened, change.Opened, "step %d opened", i)
		assert.Equal(t, step.closed, change.Closed, "step %d closed", i)
	}
}

func TestNewBreakerIsClosed(t *testing.T) {
	b := New("audit-outbox-relay")
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "audit-outbox-relay", b.Name())
}

func TestBreakerScripts(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		script []outcome
	}{
		{
			name: "opens on the threshold failure only",
			opts: []Option{WithFailureThreshold(3)},
			script: []outcome{
				{fail: true},
				{fail: true},
				{fail: true, open: true, opened: true},
				{fail: true, open: true},
			},
		},
		{
			name: "a success clears the failure streak",
			opts: []Option{WithFailureThreshold(2)},
			script: []outcome{
				{fail: true},
				{},
				{fail: true},
				{fail: true, open: true, opened: true},
			},
		},
		{
			name: "closes after consecutive successes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			script: []outcome{
				{fail: true, open: true, opened: true},
				{open: true},
				{closed: true},
				{},
			},
		},
		{
			name: "a failure while open restarts the success count",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			script: []outcome{
				{fail: true, open: true, opened: true},
				{open: true},
				{fail: true, open: true},
				{open: true},
				{closed: true},
			},
		},
		{
			name: "non-positive thresholds keep the defaults",
			opts: []Option{WithFailureThreshold(0), WithSuccessThreshold(-1)},
			script: []outcome{
				{fail: true}, {fail: true}, {fail: true}, {fail: true},
				{fail: true, open: true, opened: true},
				{open: true},
				{closed: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replay(t, New("relay", tt.opts...), tt.script)
		})
	}
}

func TestBreakerReportsFallbackWhileOpen(t *testing.T) {
	b := New("relay", WithFailureThreshold(1), WithSuccessThreshold(2))

	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback)

	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary, "half way to closing still avoids the primary")

	usePrimary, _ = b.RecordSuccess()
	assert.True(t, usePrimary)
}

func TestBreakerConcurrentFailuresOpenOnce(t *testing.T) {
	b := New("relay", WithFailureThreshold(5))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opened)
	assert.True(t, b.IsOpen())
}
