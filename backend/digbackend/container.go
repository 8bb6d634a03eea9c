package digbackend

import (
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/dig"

	"github.com/kbukum/exportkit/backend/internal/resolve"
	"github.com/kbukum/exportkit/binder"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
)

// Name identifies the backend in configuration and logs.
const Name = "dig"

var nameSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/kbukum/exportkit/dig"))

// instance carries a shared value through dig, which caches it.
type instance struct{ value any }

// transient carries a non-shared registration. dig caches the function, each
// call creates a new value resolving its dependencies in the given scope.
type transient func(from *Scope) (any, error)

var (
	instanceType  = reflect.TypeFor[*instance]()
	transientType = reflect.TypeFor[transient]()
	inType        = reflect.TypeFor[dig.In]()
	errorType     = reflect.TypeFor[error]()
)

type entry struct {
	reg     binder.Registration
	created atomic.Bool
}

func (e *entry) carrier() reflect.Type {
	if e.reg.Lifetime.Shared {
		return instanceType
	}
	return transientType
}

// Container adapts a dig.Container. dig is not safe for concurrent use, so
// every top-level resolution holds mu; resolutions nested in a factory run
// on the goroutine already holding it. tableMu guards the entry table.
type Container struct {
	*facade.Facade

	mu      sync.Mutex
	dig     *dig.Container
	current resolve.Path

	tableMu  sync.RWMutex
	entries  map[string]*entry
	order    []*entry
	deferred []*entry
	sealed   bool
	serial   atomic.Uint64

	root *Scope
	log  *logger.Logger
}

var (
	_ binder.Target           = (*Container)(nil)
	_ binder.Committer        = (*Container)(nil)
	_ facade.BoundaryProvider = (*Container)(nil)
	_ facade.Inspector        = (*Container)(nil)
)

// New creates an adapter over a fresh dig container.
func New(opts ...dig.Option) *Container {
	c := &Container{
		dig:     dig.New(append([]dig.Option{dig.DeferAcyclicVerification()}, opts...)...),
		entries: make(map[string]*entry),
		log:     logger.Get("dig"),
	}
	c.root = newScope(c, nil, c.dig, nil)
	c.Facade = facade.New(c.root, facade.WithCloser(c.root.disposer.Close))
	return c
}

// Register provides reg to dig. Registrations with a sharing boundary are
// provided to each scope opening that boundary instead.
func (c *Container) Register(reg binder.Registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableMu.Lock()
	defer c.tableMu.Unlock()

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
	if reg.Lifetime.Boundary != "" {
		c.deferred = append(c.deferred, e)
	} else if err := c.root.provide(e); err != nil {
		return err
	}
	c.entries[reg.Key] = e
	c.order = append(c.order, e)
	return nil
}

// Commit seals the container. dig cannot observe later registrations, so
// OnExportsChanged subscribers are never called.
func (c *Container) Commit() error {
	c.tableMu.Lock()
	c.sealed = true
	n := len(c.order)
	c.tableMu.Unlock()

	c.log.Debug("dig container sealed", logger.Fields("entries", n))
	return nil
}

// BeginBoundary opens a dig child scope in which registrations shared within
// one of names are provided.
func (c *Container) BeginBoundary(names ...string) (facade.Provider, error) {
	return c.root.BeginBoundary(names...)
}

// Registrations lists every registration in insertion order.
func (c *Container) Registrations() []facade.RegistrationInfo {
	c.tableMu.RLock()
	defer c.tableMu.RUnlock()

	out := make([]facade.RegistrationInfo, 0, len(c.order))
	for _, e := range c.order {
		info := e.reg.Info()
		info.Created = c.masterLocked(e).created.Load()
		out = append(out, info)
	}
	return out
}

// masterLocked returns the entry owning the factory behind e.
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
	c.tableMu.RLock()
	defer c.tableMu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil, false
	}
	return e, c.masterLocked(e), true
}

// public returns the entries a query may match, in insertion order.
func (c *Container) public() []*entry {
	c.tableMu.RLock()
	defer c.tableMu.RUnlock()
	out := make([]*entry, 0, len(c.order))
	for _, e := range c.order {
		if !e.reg.IsHidden() {
			out = append(out, e)
		}
	}
	return out
}

// digName is the dig value name of key within the scope numbered serial.
func digName(key string, serial uint64) string {
	return "exportkit-" + uuid.NewSHA1(nameSpace, []byte(key)).String() + "-" + strconv.FormatUint(serial, 10)
}

// paramType builds a dig parameter object with one field V of type carrier
// named name.
func paramType(carrier reflect.Type, name string) reflect.Type {
	return reflect.StructOf([]reflect.StructField{
		{Name: "In", Type: inType, Anonymous: true},
		{Name: "V", Type: carrier, Tag: reflect.StructTag(`name:"` + name + `"`)},
	})
}
