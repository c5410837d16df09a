package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func square(task Task[int]) (int, error) {
	// Later tasks finish first so ordering has to come from the pool
	time.Sleep(time.Duration(10-task.Payload%10) * 100 * time.Microsecond)
	return task.Payload * task.Payload, nil
}

func TestPool_RunDeliversInOrder(t *testing.T) {
	payloads := make([]int, 50)
	for i := range payloads {
		payloads[i] = i
	}

	for _, workers := range []int{1, 4, 0} {
		pool := New(workers, 4, square)
		var got []int
		err := pool.Run(context.Background(), payloads, func(id int, value int) error {
			if id != len(got) {
				t.Fatalf("workers=%d: delivered id %d, expected %d", workers, id, len(got))
			}
			got = append(got, value)
			return nil
		})
		if err != nil {
			t.Fatalf("workers=%d: Run failed: %v", workers, err)
		}
		if len(got) != len(payloads) {
			t.Fatalf("workers=%d: got %d results", workers, len(got))
		}
		for i, v := range got {
			if v != i*i {
				t.Errorf("workers=%d: result %d = %d, expected %d", workers, i, v, i*i)
			}
		}
	}
}

func TestPool_RunEmpty(t *testing.T) {
	pool := New(2, 0, square)
	if err := pool.Run(context.Background(), nil, func(int, int) error { return nil }); err != nil {
		t.Errorf("Empty run failed: %v", err)
	}
}

func TestPool_RunTaskError(t *testing.T) {
	boom := errors.New("boom")
	pool := New(3, 0, func(task Task[int]) (int, error) {
		if task.Payload == 7 {
			return 0, boom
		}
		return task.Payload, nil
	})

	payloads := make([]int, 20)
	for i := range payloads {
		payloads[i] = i
	}
	delivered := 0
	err := pool.Run(context.Background(), payloads, func(id int, value int) error {
		delivered++
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if delivered > 7 {
		t.Errorf("Results after the failed task must not be delivered, got %d", delivered)
	}
}

func TestPool_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var processed atomic.Int32
	pool := New(1, 0, func(task Task[int]) (int, error) {
		processed.Add(1)
		if task.ID == 2 {
			cancel()
		}
		return 0, nil
	})

	payloads := make([]int, 1000)
	err := pool.Run(ctx, payloads, func(int, int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if processed.Load() == 1000 {
		t.Error("Cancellation should stop submission early")
	}
}

func TestPool_ManualRounds(t *testing.T) {
	pool := New(2, 8, func(task Task[string]) (int, error) {
		return len(task.Payload), nil
	})
	pool.Start()
	defer pool.Stop()

	for round := 0; round < 3; round++ {
		words := []string{"a", "bb", "ccc"}
		for i, w := range words {
			pool.SubmitTask(Task[string]{ID: i, Payload: w})
		}
		total := 0
		for range words {
			result, ok := pool.GetResult()
			if !ok {
				t.Fatal("Pool closed unexpectedly")
			}
			total += result.Value
		}
		if total != 6 {
			t.Errorf("round %d: total %d, expected 6", round, total)
		}
	}
	if pool.NumWorkers() != 2 {
		t.Errorf("NumWorkers: got %d", pool.NumWorkers())
	}
}
