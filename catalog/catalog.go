// Package catalog holds the ordered set of part types handed to the reader
// together with the constructors the binder uses to create them.
//
//	cat := catalog.New().
//		MustProvide(NewFileLogger).
//		MustAdd(catalog.TypeOf[*ConsoleLogger]())
package catalog

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
)

// Part is one catalogued type and its optional constructor.
type Part struct {
	Type        reflect.Type
	Constructor reflect.Value
}

// Catalog is an ordered registry of parts. Parts keep their registration order.
type Catalog struct {
	mu      sync.RWMutex
	entries []*Part
	lookup  map[reflect.Type]*Part
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{lookup: make(map[reflect.Type]*Part)}
}

// TypeOf returns the reflect.Type of T.
func TypeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

// Add registers types without a constructor. Pointer-to-struct types are
// created as zero values; other types need Provide.
func (c *Catalog) Add(types ...reflect.Type) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range types {
		if t == nil {
			return errors.InvalidInput("type", "nil type")
		}
		if _, exists := c.lookup[t]; exists {
			return fmt.Errorf("part %s already registered", t)
		}
		c.append(&Part{Type: t})
	}
	return nil
}

// Provide registers a constructor. The part type is the constructor's first
// result. Accepted shapes are func(deps...) T and func(deps...) (T, error).
// A constructor for a type already added without one replaces the zero-value
// activator in place.
func (c *Catalog) Provide(ctor any) error {
	fn := reflect.ValueOf(ctor)
	t, err := validateConstructor(fn)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, exists := c.lookup[t]; exists {
		if p.Constructor.IsValid() {
			return fmt.Errorf("part %s already has a constructor", t)
		}
		p.Constructor = fn
		return nil
	}
	c.append(&Part{Type: t, Constructor: fn})
	return nil
}

// MustAdd is like Add but panics on error.
func (c *Catalog) MustAdd(types ...reflect.Type) *Catalog {
	if err := c.Add(types...); err != nil {
		panic(err)
	}
	return c
}

// MustProvide is like Provide but panics on error.
func (c *Catalog) MustProvide(ctors ...any) *Catalog {
	for _, ctor := range ctors {
		if err := c.Provide(ctor); err != nil {
			panic(err)
		}
	}
	return c
}

func (c *Catalog) append(p *Part) {
	c.entries = append(c.entries, p)
	c.lookup[p.Type] = p
	logger.Get("catalog").Debug("Part registered", logger.ImplFields(p.Type))
}

// Types returns the part types in registration order.
func (c *Catalog) Types() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]reflect.Type, len(c.entries))
	for i, p := range c.entries {
		out[i] = p.Type
	}
	return out
}

// Len returns the number of parts.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Activator returns the factory creating instances of impl.
func (c *Catalog) Activator(impl reflect.Type) (facade.Factory, error) {
	c.mu.RLock()
	p, ok := c.lookup[impl]
	c.mu.RUnlock()

	if ok && p.Constructor.IsValid() {
		return constructorFactory(p.Constructor), nil
	}
	if impl.Kind() == reflect.Pointer && impl.Elem().Kind() == reflect.Struct {
		return func(facade.Provider) (any, error) {
			return reflect.New(impl.Elem()).Interface(), nil
		}, nil
	}
	return nil, errors.InvalidConstructor(impl.String(), "no constructor registered and the type is not a pointer to a struct")
}
