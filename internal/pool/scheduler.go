// Package pool runs a fixed batch of independent tasks with a bounded
// number in flight, collecting results in input order.
package pool

import (
	"sync"
	"sync/atomic"
)

// Task is a deferred unit of work producing a value of type T.
type Task[T any] func() (T, error)

// Scheduler drives an ordered task set through a fixed-width execution
// window. The task set is immutable for the duration of a run.
type Scheduler[T any] struct {
	tasks []Task[T]
}

// New creates a Scheduler over the given task set.
func New[T any](tasks []Task[T]) *Scheduler[T] {
	return &Scheduler[T]{tasks: tasks}
}

// Run executes the task set with at most width tasks in flight and returns
// the results aligned to task order, regardless of completion order. A width
// below 1 is treated as 1; a width above the task count is clamped.
//
// On the first task error Run returns that error immediately. Tasks already
// in flight are neither cancelled nor awaited; they finish in the background
// and their results are discarded.
func (s *Scheduler[T]) Run(width int) ([]T, error) {
	n := len(s.tasks)
	if n == 0 {
		return []T{}, nil
	}
	if width < 1 {
		width = 1
	}
	if width > n {
		width = n
	}

	results := make([]T, n)

	// cursor holds the highest slot claimed so far; the first width slots
	// are handed out up front, one per worker.
	var cursor atomic.Int64
	cursor.Store(int64(width - 1))

	errc := make(chan error, 1)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(width)
	for i := 0; i < width; i++ {
		go func(slot int) {
			defer wg.Done()
			for {
				v, err := s.tasks[slot]()
				if err != nil {
					select {
					case errc <- err:
					default:
					}
					return
				}
				// Each slot is claimed by exactly one worker, so the
				// write below never races with another write.
				results[slot] = v

				next := int(cursor.Add(1))
				if next >= n {
					return
				}
				slot = next
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case err := <-errc:
		return nil, err
	case <-done:
		// A failure can race with the last success; the run still fails.
		select {
		case err := <-errc:
			return nil, err
		default:
		}
		out := make([]T, n)
		copy(out, results)
		return out, nil
	}
}

// Len returns the size of the task set.
func (s *Scheduler[T]) Len() int {
	return len(s.tasks)
}
