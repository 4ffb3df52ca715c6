package pool

import (
	"context"
	"fmt"
)

// Task is one unit of asynchronous work.
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the result of one task. Index refers to the task's position in
// the input slice so callers can key outcomes regardless of completion order.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// Run executes tasks with at most maxConcurrent in flight. As soon as one
// task finishes the next queued task is admitted. A task's error (or panic)
// is captured in its Outcome and never aborts the batch; Run itself never
// fails. Outcomes are returned indexed by input position.
func Run[T any](ctx context.Context, tasks []Task[T], maxConcurrent int) []Outcome[T] {
	outcomes := make([]Outcome[T], len(tasks))
	if len(tasks) == 0 {
		return outcomes
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxConcurrent > len(tasks) {
		maxConcurrent = len(tasks)
	}

	sem := make(chan struct{}, maxConcurrent)
	done := make(chan Outcome[T])

	go func() {
		for i, task := range tasks {
			sem <- struct{}{}
			go func(i int, task Task[T]) {
				defer func() { <-sem }()
				done <- runOne(ctx, i, task)
			}(i, task)
		}
	}()

	for range tasks {
		o := <-done
		outcomes[o.Index] = o
	}
	return outcomes
}

func runOne[T any](ctx context.Context, idx int, task Task[T]) (o Outcome[T]) {
	o.Index = idx
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("task %d panicked: %v", idx, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}
	o.Value, o.Err = task(ctx)
	return o
}
