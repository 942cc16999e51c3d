package fanout_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"loom/internal/fanout"
)

func TestWaitSucceedsWhenAllUnitsSucceed(t *testing.T) {
	var group fanout.Group
	var mu sync.Mutex
	completed := 0
	for i := 0; i < 4; i++ {
		group.Go(context.Background(), fmt.Sprintf("job-%d", i), func(context.Context) error {
			mu.Lock()
			completed++
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if completed != 4 {
		t.Fatalf("expected 4 completions, got %d", completed)
	}
}

func TestWaitReportsExactFailureCount(t *testing.T) {
	boom := errors.New("boom")
	var group fanout.Group
	group.Go(context.Background(), "train", func(context.Context) error { return nil })
	group.Go(context.Background(), "dev", func(context.Context) error { return boom })
	group.Go(context.Background(), "test", func(context.Context) error { return nil })

	err := group.Wait()
	if err == nil {
		t.Fatal("expected fan-out failure")
	}
	var partial *fanout.PartialFanoutError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFanoutError, got %T", err)
	}
	if partial.Launched != 3 {
		t.Fatalf("expected 3 launched, got %d", partial.Launched)
	}
	if len(partial.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(partial.Failures))
	}
	if partial.Failures[0].Name != "dev" {
		t.Fatalf("unexpected failed unit: %s", partial.Failures[0].Name)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped unit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "1 of 3 jobs failed") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestWaitAggregatesMultipleFailuresInLaunchOrder(t *testing.T) {
	var group fanout.Group
	for i := 0; i < 5; i++ {
		i := i
		group.Go(context.Background(), fmt.Sprintf("job-%d", i), func(context.Context) error {
			if i%2 == 1 {
				return fmt.Errorf("unit %d failed", i)
			}
			return nil
		})
	}

	var partial *fanout.PartialFanoutError
	if err := group.Wait(); !errors.As(err, &partial) {
		t.Fatalf("expected PartialFanoutError, got %v", err)
	}
	if len(partial.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(partial.Failures))
	}
	if partial.Failures[0].Name != "job-1" || partial.Failures[1].Name != "job-3" {
		t.Fatalf("failures not in launch order: %+v", partial.Failures)
	}
}

func TestSequentialGroupRunsInOrder(t *testing.T) {
	group := fanout.Group{Sequential: true}
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		group.Go(context.Background(), name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if strings.Join(order, "") != "abc" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestRunConvenience(t *testing.T) {
	err := fanout.Run(context.Background(), []string{"x", "y"}, false, func(_ context.Context, name string) error {
		if name == "y" {
			return errors.New("no")
		}
		return nil
	})
	var partial *fanout.PartialFanoutError
	if !errors.As(err, &partial) || len(partial.Failures) != 1 {
		t.Fatalf("expected single failure, got %v", err)
	}
}
