package arena

import (
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/exportkit/backend/internal/resolve"
	"github.com/kbukum/exportkit/binder"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/metadata"
)

// Name identifies the backend in configuration and logs.
const Name = "arena"

// entry is one registration plus, for a shared unbounded master, the cell
// holding its single instance.
type entry struct {
	reg  binder.Registration
	slot *resolve.Cell
}

// Container is the arena backend. It is both a binder.Target and a
// facade.Provider for the root scope.
type Container struct {
	*facade.Facade

	mu        sync.RWMutex
	entries   map[string]*entry
	order     []*entry
	aliases   map[string]string
	committed bool
	pending   []metadata.Contract

	hub  *facade.Hub
	root *Scope
	log  *logger.Logger
}

var (
	_ binder.Target           = (*Container)(nil)
	_ binder.Committer        = (*Container)(nil)
	_ facade.BoundaryProvider = (*Container)(nil)
	_ facade.Inspector        = (*Container)(nil)
)

// New creates an empty arena.
func New() *Container {
	c := &Container{
		entries: make(map[string]*entry),
		aliases: make(map[string]string),
		hub:     facade.NewHub(),
		log:     logger.Get("arena"),
	}
	c.root = newScope(c, nil, nil)
	c.Facade = facade.New(c.root, facade.WithHub(c.hub), facade.WithCloser(c.root.disposer.Close))
	return c
}

// Register adds a registration. Aliases must name an existing master.
func (c *Container) Register(reg binder.Registration) error {
	c.mu.Lock()
	if _, exists := c.entries[reg.Key]; exists {
		c.mu.Unlock()
		return fmt.Errorf("arena: key %s already registered", reg.Key)
	}
	if reg.IsAlias() {
		if _, ok := c.entries[reg.Forward]; !ok {
			c.mu.Unlock()
			return fmt.Errorf("arena: alias %s forwards to unknown key %s", reg.Key, reg.Forward)
		}
		c.aliases[reg.Key] = reg.Forward
	} else if reg.Factory == nil {
		c.mu.Unlock()
		return fmt.Errorf("arena: registration %s has no factory", reg.Key)
	}

	e := &entry{reg: reg}
	if reg.Lifetime.Shared && reg.Lifetime.Boundary == "" && !reg.IsAlias() {
		e.slot = &resolve.Cell{}
	}
	c.entries[reg.Key] = e
	c.order = append(c.order, e)

	var ev *facade.ExportsChangedEvent
	if reg.Contract != nil {
		c.pending = append(c.pending, *reg.Contract)
		if c.committed {
			ev = c.drainLocked()
		}
	}
	c.mu.Unlock()

	if ev != nil {
		c.hub.Publish(*ev)
	}
	return nil
}

// Alias adds a hidden forwarding key for an existing registration. It is
// reachable through Resolve only.
func (c *Container) Alias(alias, key string) error {
	c.mu.RLock()
	target, ok := c.entries[c.canonicalLocked(key)]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("arena: cannot alias unknown key %s", key)
	}
	reg := target.reg
	reg.Key = alias
	reg.Forward = target.reg.Key
	reg.Factory = nil
	reg.Contract = nil
	return c.Register(reg)
}

// Commit publishes the registrations added so far.
func (c *Container) Commit() error {
	c.mu.Lock()
	c.committed = true
	ev := c.drainLocked()
	c.mu.Unlock()

	if ev != nil {
		c.hub.Publish(*ev)
	}
	c.log.Debug("Arena committed", logger.Fields("entries", len(c.order)))
	return nil
}

func (c *Container) drainLocked() *facade.ExportsChangedEvent {
	if len(c.pending) == 0 {
		return nil
	}
	ev := &facade.ExportsChangedEvent{Added: c.pending, At: time.Now()}
	c.pending = nil
	return ev
}

// Resolve resolves a registration key in the root scope.
func (c *Container) Resolve(key string) (any, error) {
	return c.root.resolve(key, resolve.Path{})
}

// BeginBoundary opens a scope in which registrations shared within one of
// names are visible.
func (c *Container) BeginBoundary(names ...string) (facade.Provider, error) {
	return c.root.BeginBoundary(names...)
}

// Registrations lists every registration in insertion order.
func (c *Container) Registrations() []facade.RegistrationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]facade.RegistrationInfo, 0, len(c.order))
	for _, e := range c.order {
		info := e.reg.Info()
		if s := c.slotLocked(e); s != nil {
			info.Created = s.Filled()
		}
		out = append(out, info)
	}
	return out
}

// canonicalLocked follows the alias table to the key owning the factory.
func (c *Container) canonicalLocked(key string) string {
	for {
		next, ok := c.aliases[key]
		if !ok {
			return key
		}
		key = next
	}
}

func (c *Container) slotLocked(e *entry) *resolve.Cell {
	if e.reg.IsAlias() {
		if m, ok := c.entries[c.canonicalLocked(e.reg.Key)]; ok {
			return m.slot
		}
		return nil
	}
	return e.slot
}

// public returns the entries a query may match, in insertion order.
func (c *Container) public() []*entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entry, 0, len(c.order))
	for _, e := range c.order {
		if !e.reg.IsHidden() {
			out = append(out, e)
		}
	}
	return out
}
