package watch

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/mpdeploy/mpdeploy/pkg/errors"
)

func TestWatchLoopCollapsesBursts(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	clock = fakeClock
	defer func() { clock = clockwork.NewRealClock() }()

	events := make(chan struct{}, 16)
	pushes := make(chan struct{}, 16)
	done := make(chan struct{})
	go func() {
		watchLoop(events, func() error {
			pushes <- struct{}{}
			return nil
		})
		close(done)
	}()

	// A burst of events results in a single push.
	for i := 0; i < 5; i++ {
		events <- struct{}{}
	}
	fakeClock.BlockUntil(1)
	fakeClock.Advance(debounceInterval)
	assertPushes(t, pushes, 1)

	// A later event triggers another push.
	events <- struct{}{}
	fakeClock.BlockUntil(1)
	fakeClock.Advance(debounceInterval)
	assertPushes(t, pushes, 1)

	close(events)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Error("watchLoop didn't exit after the event channel closed")
	}
}

func TestWatchLoopContinuesAfterFailedPush(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	clock = fakeClock
	defer func() { clock = clockwork.NewRealClock() }()

	events := make(chan struct{}, 16)
	pushes := make(chan error, 16)
	results := []error{errors.New("tool exited with status 1"), nil}
	go watchLoop(events, func() error {
		err := results[0]
		if len(results) > 1 {
			results = results[1:]
		}
		pushes <- err
		return err
	})

	events <- struct{}{}
	fakeClock.BlockUntil(1)
	fakeClock.Advance(debounceInterval)
	assert.Error(t, <-pushes)

	// The loop keeps going after a failure.
	events <- struct{}{}
	fakeClock.BlockUntil(1)
	fakeClock.Advance(debounceInterval)
	assert.NoError(t, <-pushes)

	close(events)
}

// assertPushes waits for `exp` pushes, then asserts that no extra push
// sneaks in.
func assertPushes(t *testing.T, pushes chan struct{}, exp int) {
	for i := 0; i < exp; i++ {
		select {
		case <-pushes:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for push %d of %d", i+1, exp)
		}
	}

	select {
	case <-pushes:
		t.Error("unexpected extra push")
	case <-time.After(100 * time.Millisecond):
	}
}
