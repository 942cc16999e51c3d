package fanout

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// UnitError pairs a launched unit's name with the error it returned.
type UnitError struct {
	Name string
	Err  error
}

// PartialFanoutError reports that one or more launched units failed.
// It is returned only after every unit has completed.
type PartialFanoutError struct {
	Launched int
	Failures []UnitError
}

func (e *PartialFanoutError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		names = append(names, failure.Name)
	}
	return fmt.Sprintf("%d of %d jobs failed: %s", len(e.Failures), e.Launched, strings.Join(names, ", "))
}

// Unwrap exposes the first failure for errors.Is/As inspection.
func (e *PartialFanoutError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0].Err
}

// Group launches units of work and waits for all of them. The zero
// value is ready to use; Sequential forces in-order execution instead
// of concurrent launch.
type Group struct {
	Sequential bool

	mu    sync.Mutex
	wg    sync.WaitGroup
	names []string
	errs  []error
}

// Go launches one named unit. Launch order follows call order; when the
// group is concurrent, completion order is unconstrained.
func (g *Group) Go(ctx context.Context, name string, fn func(context.Context) error) {
	g.mu.Lock()
	index := len(g.names)
	g.names = append(g.names, name)
	g.errs = append(g.errs, nil)
	g.mu.Unlock()

	if g.Sequential {
		g.record(index, fn(ctx))
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.record(index, fn(ctx))
	}()
}

func (g *Group) record(index int, err error) {
	if err == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[index] = err
}

// Wait blocks until every launched unit has completed. It returns nil
// when all units succeeded, or a PartialFanoutError carrying the exact
// failure count and per-unit errors in launch order.
func (g *Group) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	var failures []UnitError
	for i, err := range g.errs {
		if err != nil {
			failures = append(failures, UnitError{Name: g.names[i], Err: err})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &PartialFanoutError{Launched: len(g.names), Failures: failures}
}

// Run fans fn out over names and waits for all units.
func Run(ctx context.Context, names []string, sequential bool, fn func(context.Context, string) error) error {
	group := Group{Sequential: sequential}
	for _, name := range names {
		name := name
		group.Go(ctx, name, func(ctx context.Context) error {
			return fn(ctx, name)
		})
	}
	return group.Wait()
}
