package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunCollectsAllOutcomes(t *testing.T) {
	tasks := make([]Task[int], 10)
	for i := range tasks {
		i := i
		tasks[i] = func(context.Context) (int, error) { return i * 2, nil }
	}

	outcomes := Run(context.Background(), tasks, 3)
	if len(outcomes) != 10 {
		t.Fatalf("expected 10 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("task %d: unexpected error %v", i, o.Err)
		}
		if o.Value != i*2 {
			t.Fatalf("task %d: expected %d, got %d", i, i*2, o.Value)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	const maxConcurrent = 3
	var inFlight, peak int64
	var mu sync.Mutex

	tasks := make([]Task[struct{}], 20)
	for i := range tasks {
		tasks[i] = func(context.Context) (struct{}, error) {
			n := atomic.AddInt64(&inFlight, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return struct{}{}, nil
		}
	}

	Run(context.Background(), tasks, maxConcurrent)

	if peak > maxConcurrent {
		t.Fatalf("peak concurrency %d exceeded limit %d", peak, maxConcurrent)
	}
}

func TestRunFailureDoesNotAbortBatch(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task[string]{
		func(context.Context) (string, error) { return "a", nil },
		func(context.Context) (string, error) { return "", boom },
		func(context.Context) (string, error) { panic("unexpected") },
		func(context.Context) (string, error) { return "d", nil },
	}

	outcomes := Run(context.Background(), tasks, 2)

	if outcomes[0].Value != "a" || outcomes[0].Err != nil {
		t.Fatalf("task 0: %+v", outcomes[0])
	}
	if !errors.Is(outcomes[1].Err, boom) {
		t.Fatalf("task 1: expected boom, got %v", outcomes[1].Err)
	}
	if outcomes[2].Err == nil {
		t.Fatalf("task 2: expected captured panic")
	}
	if outcomes[3].Value != "d" || outcomes[3].Err != nil {
		t.Fatalf("task 3: %+v", outcomes[3])
	}
}

func TestRunEmptyAndZeroLimit(t *testing.T) {
	if got := Run[int](context.Background(), nil, 3); len(got) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(got))
	}

	tasks := []Task[int]{func(context.Context) (int, error) { return 7, nil }}
	outcomes := Run(context.Background(), tasks, 0)
	if outcomes[0].Value != 7 {
		t.Fatalf("expected 7, got %d", outcomes[0].Value)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []Task[int]{func(context.Context) (int, error) { return 1, nil }}
	outcomes := Run(ctx, tasks, 1)
	if !errors.Is(outcomes[0].Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", outcomes[0].Err)
	}
}
