package janitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSweeper struct {
	calls atomic.Int32
}

func (f *fakeSweeper) Sweep(_ context.Context) (int, error) {
	f.calls.Add(1)
	return 1, nil
}

func TestJanitor_SweepsOnInterval(t *testing.T) {
	sweeper := &fakeSweeper{}
	j := New(sweeper)
	j.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper was not invoked in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop on context cancel")
	}

	if err := j.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
