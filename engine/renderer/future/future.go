// Package future models GPU ordering as an explicit dependency graph.
//
// A Future is a node with a label, a set of dependencies and an optional wait operation.
// Waiting on a Future first waits on every dependency, then runs its own wait exactly once.
// The renderer builds one small graph per frame:
//
//	acquire ─┐
//	         ├─ join ─ graphics ─ present
//	compute ─┘
package future

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Future is a node in a frame's dependency graph.
type Future interface {
	// Label returns the human-readable name of the operation the future represents.
	Label() string

	// Wait blocks until every dependency and then this future's own operation are complete.
	// The first error encountered is returned; later calls return the same result.
	//
	// Returns:
	//   - error: the first dependency or operation error, wrapped with the failing label
	Wait() error

	// Signaled reports whether Wait has already completed.
	Signaled() bool

	// Dependencies returns the direct dependencies of this future.
	Dependencies() []Future
}

type futureImpl struct {
	label string
	deps  []Future
	wait  func() error

	once     sync.Once
	mu       sync.Mutex
	signaled bool
	err      error
}

var _ Future = &futureImpl{}

// New creates a future that runs wait after all deps have completed.
// A nil wait makes the future complete as soon as its dependencies do.
//
// Parameters:
//   - label: the operation name
//   - wait: the blocking operation, run at most once
//   - deps: futures that must complete first
//
// Returns:
//   - Future: the new graph node
func New(label string, wait func() error, deps ...Future) Future {
	return &futureImpl{
		label: label,
		deps:  deps,
		wait:  wait,
	}
}

// Resolved returns a future that is already complete.
func Resolved(label string) Future {
	f := &futureImpl{label: label, signaled: true}
	f.once.Do(func() {})
	return f
}

// Join returns a future that completes once every dep has completed.
//
// Parameters:
//   - label: the join name
//   - deps: the futures to join
//
// Returns:
//   - Future: a node with no operation of its own
func Join(label string, deps ...Future) Future {
	return New(label, nil, deps...)
}

// DependsOn reports whether g is reachable from f through dependency edges. A future does not
// depend on itself.
//
// Parameters:
//   - f: the dependent future
//   - g: the candidate dependency
//
// Returns:
//   - bool: true when f transitively depends on g
func DependsOn(f, g Future) bool {
	if f == nil || g == nil {
		return false
	}
	seen := map[Future]bool{}
	stack := append([]Future{}, f.Dependencies()...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || seen[n] {
			continue
		}
		if n == g {
			return true
		}
		seen[n] = true
		stack = append(stack, n.Dependencies()...)
	}
	return false
}

// Describe renders the graph below f as an indented tree of labels, one per line.
func Describe(f Future) string {
	var b strings.Builder
	describe(&b, f, 0)
	return b.String()
}

func describe(b *strings.Builder, f Future, depth int) {
	if f == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(f.Label())
	if f.Signaled() {
		b.WriteString(" (signaled)")
	}
	b.WriteByte('\n')
	for _, d := range f.Dependencies() {
		describe(b, d, depth+1)
	}
}

func (f *futureImpl) Label() string {
	return f.label
}

func (f *futureImpl) Dependencies() []Future {
	return f.deps
}

func (f *futureImpl) Signaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

func (f *futureImpl) Wait() error {
	f.once.Do(func() {
		var errs []error
		for _, d := range f.deps {
			if d == nil {
				continue
			}
			if err := d.Wait(); err != nil {
				errs = append(errs, err)
			}
		}

		var err error
		if len(errs) > 0 {
			err = fmt.Errorf("%s: %w", f.label, errors.Join(errs...))
		} else if f.wait != nil {
			if werr := f.wait(); werr != nil {
				err = fmt.Errorf("%s: %w", f.label, werr)
			}
		}

		f.mu.Lock()
		f.signaled = true
		f.err = err
		f.mu.Unlock()
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
