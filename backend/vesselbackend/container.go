package vesselbackend

import (
	"sync"
	"sync/atomic"

	"github.com/xraph/go-utils/di"
	"github.com/xraph/vessel"

	"github.com/kbukum/exportkit/backend/internal/resolve"
	"github.com/kbukum/exportkit/binder"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
)

// Name identifies the backend in configuration and logs.
const Name = "vessel"

type entry struct {
	reg     binder.Registration
	created atomic.Bool
}

// Container adapts a vessel container. vessel owns the lifetimes: each
// registration's vessel factory returns an empty resolve.Cell, which vessel
// caches as a singleton, per scope or not at all. The adapter fills cells
// itself so factories run with cycle detection and the exportkit provider.
type Container struct {
	*facade.Facade

	vessel vessel.Vessel

	mu      sync.RWMutex
	entries map[string]*entry
	order   []*entry
	sealed  bool

	root *Scope
	log  *logger.Logger
}

var (
	_ binder.Target           = (*Container)(nil)
	_ binder.Committer        = (*Container)(nil)
	_ facade.BoundaryProvider = (*Container)(nil)
	_ facade.Inspector        = (*Container)(nil)
)

// New creates an adapter over a fresh vessel container.
func New() *Container {
	c := &Container{
		vessel:  vessel.New(),
		entries: make(map[string]*entry),
		log:     logger.Get("vessel"),
	}
	c.root = &Scope{c: c, disposer: &facade.Disposer{}}
	c.Facade = facade.New(c.root, facade.WithCloser(c.root.disposer.Close))
	return c
}

// Vessel returns the underlying container.
func (c *Container) Vessel() vessel.Vessel { return c.vessel }

// Register adds reg to vessel. Forwarding registrations without a sharing
// boundary become transient vessel services resolving their master;
// forwarding within a boundary is resolved by the adapter.
func (c *Container) Register(reg binder.Registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sealed {
		return errors.ContainerSealed(Name, reg.Key)
	}
	if _, exists := c.entries[reg.Key]; exists {
		return errors.DuplicateContract(reg.ImplementationType.String(), reg.Key)
	}
	if reg.IsAlias() {
		if _, ok := c.entries[reg.Forward]; !ok {
			return errors.InvalidInput("forward", "alias "+reg.Key+" forwards to unknown key "+reg.Forward)
		}
	} else if reg.Factory == nil {
		return errors.InvalidInput("factory", "registration "+reg.Key+" has no factory")
	}

	e := &entry{reg: reg}
	if !(reg.IsAlias() && reg.Lifetime.Boundary != "") {
		if err := c.vessel.Register(reg.Key, serviceFactory(reg), serviceOptions(reg)...); err != nil {
			return errors.Internal(err)
		}
	}
	c.entries[reg.Key] = e
	c.order = append(c.order, e)
	return nil
}

func serviceFactory(reg binder.Registration) func(vessel.Vessel) (any, error) {
	if reg.IsAlias() {
		forward := reg.Forward
		return func(v vessel.Vessel) (any, error) { return v.Resolve(forward) }
	}
	return func(vessel.Vessel) (any, error) { return &resolve.Cell{}, nil }
}

func serviceOptions(reg binder.Registration) []di.RegisterOption {
	var lifetime di.RegisterOption
	switch {
	case reg.IsAlias():
		lifetime = di.Transient()
	case reg.Lifetime.Boundary != "":
		lifetime = di.Scoped()
	case reg.Lifetime.Shared:
		lifetime = di.Singleton()
	default:
		lifetime = di.Transient()
	}
	opts := []di.RegisterOption{
		lifetime,
		di.WithDIMetadata("implementation", reg.ImplementationType.String()),
		di.WithDIMetadata("lifetime", reg.Lifetime.String()),
	}
	if reg.Contract != nil {
		opts = append(opts, di.WithDIMetadata("contract", reg.Contract.String()))
	}
	if reg.IsAlias() {
		opts = append(opts, di.WithDIMetadata("forward", reg.Forward))
	}
	return opts
}

// Commit seals the container. vessel cannot observe later registrations, so
// OnExportsChanged subscribers are never called.
func (c *Container) Commit() error {
	c.mu.Lock()
	c.sealed = true
	n := len(c.order)
	c.mu.Unlock()

	c.log.Debug("vessel container sealed", logger.Fields("entries", n))
	return nil
}

// BeginBoundary opens a vessel scope for names.
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
		info.Created = c.masterLocked(e).created.Load()
		out = append(out, info)
	}
	return out
}

func (c *Container) masterLocked(e *entry) *entry {
	for e.reg.IsAlias() {
		next, ok := c.entries[e.reg.Forward]
		if !ok {
			return e
		}
		e = next
	}
	return e
}

func (c *Container) lookup(key string) (*entry, *entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil, false
	}
	return e, c.masterLocked(e), true
}

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
