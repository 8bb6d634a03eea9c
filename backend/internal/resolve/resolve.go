// Package resolve holds the resolution-path bookkeeping shared by the
// backend adapters: cycle detection and the provider handed to factories.
package resolve

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
)

// Path is the list of keys under construction on one resolution path,
// plus the identity of the walk that owns it. Nested resolutions made by a
// factory continue the same walk.
type Path struct {
	keys []string
	w    *walk
}

// walk identifies one top-level resolution across goroutines waiting on
// each other's cells. The id keeps walks distinct allocations.
type walk struct {
	id uint64
}

var walkIDs atomic.Uint64

// Keys returns the keys on the path, outermost first.
func (p Path) Keys() []string {
	return slices.Clone(p.keys)
}

// Len returns the number of keys on the path.
func (p Path) Len() int { return len(p.keys) }

// Enter returns the path extended by key, or CIRCULAR_DEPENDENCY when key is
// already being constructed. The first Enter starts a new walk.
func (p Path) Enter(key string) (Path, error) {
	if slices.Contains(p.keys, key) {
		return Path{}, errors.CircularDependency(append(slices.Clone(p.keys), key))
	}
	w := p.w
	if w == nil {
		w = &walk{id: walkIDs.Add(1)}
	}
	return Path{keys: append(slices.Clone(p.keys), key), w: w}, nil
}

// Lister lists exports with a known resolution path.
type Lister interface {
	ExportsOn(path Path, t reflect.Type, name string) []*facade.Export
}

// nested is the facade.Source behind the provider given to a factory. While
// the factory runs it resolves along path; once it returns, the provider
// starts a fresh path.
type nested struct {
	lister Lister
	path   Path
	active atomic.Bool
}

func (n *nested) Exports(t reflect.Type, name string) []*facade.Export {
	if n.active.Load() {
		return n.lister.ExportsOn(n.path, t, name)
	}
	return n.lister.ExportsOn(Path{}, t, name)
}

// Run calls factory with a provider resolving through lister along path.
func Run(lister Lister, path Path, factory facade.Factory) (any, error) {
	n := &nested{lister: lister, path: path}
	n.active.Store(true)
	defer n.active.Store(false)
	return factory(facade.New(n))
}

// waits records, for every walk blocked on a cell, the cell it waits for.
// Cell state is guarded by the same mutex so the wait-for chain is read
// consistently.
var waits = struct {
	mu sync.Mutex
	on map[*walk]*Cell
}{on: make(map[*walk]*Cell)}

// Cell is a lazily filled instance. Backends whose container owns the
// lifetime hand out cells; the adapter fills them on first use. A failed
// fill is retried on the next call.
//
// Concurrent walks wait for the walk building the cell. A walk that would
// wait on a cell whose builder is, through the wait-for chain, waiting on
// the walk itself fails with CIRCULAR_DEPENDENCY instead of blocking.
type Cell struct {
	done    bool
	value   any
	builder *walk
	built   chan struct{}
}

// Fill runs create once it succeeded and returns the cached value after.
// path is the resolution path that entered the cell's key. fresh reports
// whether this call created the value.
func (c *Cell) Fill(path Path, create func() (any, error)) (value any, fresh bool, err error) {
	w := path.w
	if w == nil {
		w = &walk{id: walkIDs.Add(1)}
	}
	for {
		waits.mu.Lock()
		if c.done {
			v := c.value
			waits.mu.Unlock()
			return v, false, nil
		}
		if c.builder == nil {
			built := make(chan struct{})
			c.builder, c.built = w, built
			waits.mu.Unlock()
			return c.build(built, create)
		}
		if c.builder == w || waitsOn(c.builder, w) {
			waits.mu.Unlock()
			return nil, false, errors.CircularDependency(path.Keys())
		}
		waits.on[w] = c
		built := c.built
		waits.mu.Unlock()

		<-built

		waits.mu.Lock()
		delete(waits.on, w)
		waits.mu.Unlock()
	}
}

func (c *Cell) build(built chan struct{}, create func() (any, error)) (v any, fresh bool, err error) {
	returned := false
	defer func() {
		waits.mu.Lock()
		if returned && err == nil {
			c.value, c.done = v, true
		}
		c.builder = nil
		waits.mu.Unlock()
		close(built)
	}()
	v, err = create()
	returned = true
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// waitsOn reports whether from is, through the chain of cells it and their
// builders wait for, waiting on target. Callers hold waits.mu.
func waitsOn(from, target *walk) bool {
	seen := make(map[*walk]bool)
	for cur := from; cur != nil && !seen[cur]; {
		if cur == target {
			return true
		}
		seen[cur] = true
		next, ok := waits.on[cur]
		if !ok {
			return false
		}
		cur = next.builder
	}
	return false
}

// Filled reports whether the cell holds a value.
func (c *Cell) Filled() bool {
	waits.mu.Lock()
	defer waits.mu.Unlock()
	return c.done
}
