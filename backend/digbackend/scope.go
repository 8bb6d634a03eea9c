package digbackend

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/dig"

	"github.com/kbukum/exportkit/backend/internal/resolve"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/metadata"
)

// store is the part of *dig.Container and *dig.Scope the adapter uses.
type store interface {
	Provide(constructor any, opts ...dig.ProvideOption) error
	Invoke(function any, opts ...dig.InvokeOption) error
	Scope(name string, opts ...dig.ScopeOption) *dig.Scope
}

// Scope is a resolution scope backed by a dig container or child scope.
type Scope struct {
	*facade.Facade

	c          *Container
	parent     *Scope
	boundaries map[string]struct{}
	serial     uint64
	store      store
	disposer   *facade.Disposer
}

var _ facade.BoundaryProvider = (*Scope)(nil)

func newScope(c *Container, parent *Scope, st store, names []string) *Scope {
	s := &Scope{
		c:          c,
		parent:     parent,
		boundaries: make(map[string]struct{}, len(names)),
		store:      st,
		disposer:   &facade.Disposer{},
	}
	if parent != nil {
		s.serial = c.serial.Add(1)
		s.Facade = facade.New(s, facade.WithCloser(s.disposer.Close))
	}
	for _, n := range names {
		s.boundaries[n] = struct{}{}
	}
	return s
}

// BeginBoundary opens a dig child scope and provides the registrations
// shared within names to it.
func (s *Scope) BeginBoundary(names ...string) (facade.Provider, error) {
	if len(names) == 0 {
		return nil, errors.InvalidInput("names", "at least one boundary name is required")
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	child := newScope(s.c, s, s.store.Scope(strings.Join(names, ",")), names)

	s.c.tableMu.RLock()
	deferred := slices.Clone(s.c.deferred)
	s.c.tableMu.RUnlock()
	for _, e := range deferred {
		if _, ok := child.boundaries[e.reg.Lifetime.Boundary]; !ok {
			continue
		}
		if err := child.provide(e); err != nil {
			return nil, err
		}
	}
	s.c.log.Debug("Boundary scope opened", logger.Fields(logger.FieldBoundary, names))
	return child, nil
}

// provide hands e to dig under its scope-local name. Aliases take the
// master value as a named parameter and return it unchanged.
func (s *Scope) provide(e *entry) error {
	var ctor any
	switch {
	case e.reg.IsAlias():
		carrier := e.carrier()
		in := paramType(carrier, digName(e.reg.Forward, s.serial))
		ctor = reflect.MakeFunc(
			reflect.FuncOf([]reflect.Type{in}, []reflect.Type{carrier}, false),
			func(args []reflect.Value) []reflect.Value {
				return []reflect.Value{args[0].Field(1)}
			},
		).Interface()
	case e.reg.Lifetime.Shared:
		ctor = func() (*instance, error) {
			v, err := s.run(e, s)
			if err != nil {
				return nil, err
			}
			s.disposer.Track(v)
			s.c.log.Debug("Shared instance created", logger.Fields(
				logger.FieldKey, e.reg.Key, logger.FieldImpl, e.reg.ImplementationType.String()))
			return &instance{value: v}, nil
		}
	default:
		ctor = func() transient {
			return func(from *Scope) (any, error) { return s.run(e, from) }
		}
	}

	if err := s.store.Provide(ctor, dig.Name(digName(e.reg.Key, s.serial))); err != nil {
		return errors.Internal(fmt.Errorf("dig: providing %s: %w", e.reg.Key, err))
	}
	return nil
}

// run calls the factory of e with dependencies resolved in from.
func (s *Scope) run(e *entry, from *Scope) (any, error) {
	v, err := resolve.Run(from, s.c.current, e.reg.Factory)
	if err != nil {
		return nil, err
	}
	e.created.Store(true)
	return v, nil
}

func (s *Scope) owner(boundary string) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.boundaries[boundary]; ok {
			return cur
		}
	}
	return nil
}

func (s *Scope) visible(e *entry) bool {
	b := e.reg.Lifetime.Boundary
	return b == "" || s.owner(b) != nil
}

// Exports implements facade.Source.
func (s *Scope) Exports(t reflect.Type, name string) []*facade.Export {
	return s.ExportsOn(resolve.Path{}, t, name)
}

// ExportsOn lists the matching exports visible in s, resolving along path.
func (s *Scope) ExportsOn(path resolve.Path, t reflect.Type, name string) []*facade.Export {
	var out []*facade.Export
	for _, e := range s.c.public() {
		if e.reg.Contract.Type != t || !metadata.ContractNameMatches(e.reg.Metadata, name) || !s.visible(e) {
			continue
		}
		key := e.reg.Key
		out = append(out, facade.NewExport(*e.reg.Contract, e.reg.Metadata, func() (any, error) {
			return s.resolve(key, path)
		}))
	}
	return out
}

// resolve invokes key in the scope that provided it. A call with an empty
// path starts a resolution and takes the container lock.
func (s *Scope) resolve(key string, path resolve.Path) (any, error) {
	e, master, ok := s.c.lookup(key)
	if !ok || !s.visible(e) {
		return nil, errors.ExportNotFound(key)
	}
	top := path.Len() == 0
	path, err := path.Enter(master.reg.Key)
	if err != nil {
		return nil, err
	}

	home := s.c.root
	if b := e.reg.Lifetime.Boundary; b != "" {
		home = s.owner(b)
	}

	if top {
		s.c.mu.Lock()
		defer s.c.mu.Unlock()
	}
	prev := s.c.current
	s.c.current = path
	defer func() { s.c.current = prev }()

	return home.invoke(e, s)
}

// invoke asks dig for the carrier of e and unwraps it.
func (s *Scope) invoke(e *entry, from *Scope) (any, error) {
	in := paramType(e.carrier(), digName(e.reg.Key, s.serial))

	var (
		out    any
		runErr error
	)
	fn := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{in}, []reflect.Type{errorType}, false),
		func(args []reflect.Value) []reflect.Value {
			switch v := args[0].Field(1).Interface().(type) {
			case *instance:
				out = v.value
			case transient:
				out, runErr = v(from)
			}
			return []reflect.Value{reflect.Zero(errorType)}
		},
	)
	if err := s.store.Invoke(fn.Interface()); err != nil {
		return nil, dig.RootCause(err)
	}
	return out, runErr
}

// Close disposes the shared instances created in this scope.
func (s *Scope) Close() error {
	if s.Facade == nil {
		return s.disposer.Close()
	}
	return s.Facade.Close()
}
