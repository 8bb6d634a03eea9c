package arena

import (
	"reflect"
	"sync"

	"github.com/kbukum/exportkit/backend/internal/resolve"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/metadata"
)

// Scope is a resolution scope. The root scope belongs to the Container;
// boundary scopes are created by BeginBoundary.
type Scope struct {
	*facade.Facade

	c          *Container
	parent     *Scope
	boundaries map[string]struct{}

	mu       sync.Mutex
	slots    map[string]*resolve.Cell
	disposer *facade.Disposer
}

var _ facade.BoundaryProvider = (*Scope)(nil)

func newScope(c *Container, parent *Scope, names []string) *Scope {
	s := &Scope{
		c:          c,
		parent:     parent,
		boundaries: make(map[string]struct{}, len(names)),
		slots:      make(map[string]*resolve.Cell),
		disposer:   &facade.Disposer{},
	}
	for _, n := range names {
		s.boundaries[n] = struct{}{}
	}
	if parent != nil {
		s.Facade = facade.New(s, facade.WithHub(c.hub), facade.WithCloser(s.disposer.Close))
	}
	return s
}

// BeginBoundary opens a nested scope for names.
func (s *Scope) BeginBoundary(names ...string) (facade.Provider, error) {
	if len(names) == 0 {
		return nil, errors.InvalidInput("names", "at least one boundary name is required")
	}
	s.c.log.Debug("Boundary scope opened", logger.Fields(logger.FieldBoundary, names))
	return newScope(s.c, s, names), nil
}

// owner returns the nearest scope that opened boundary, or nil.
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

// resolve creates or returns the instance behind key.
func (s *Scope) resolve(key string, path resolve.Path) (any, error) {
	s.c.mu.RLock()
	canonical := s.c.canonicalLocked(key)
	e, ok := s.c.entries[canonical]
	s.c.mu.RUnlock()
	if !ok || !s.visible(e) {
		return nil, errors.ExportNotFound(key)
	}
	path, err := path.Enter(canonical)
	if err != nil {
		return nil, err
	}

	lt := e.reg.Lifetime
	if !lt.Shared {
		return s.construct(e, path)
	}
	home, sl := s.c.root, e.slot
	if lt.Boundary != "" {
		home = s.owner(lt.Boundary)
		sl = home.slotFor(canonical)
	}

	// Dependencies of a shared instance resolve in the scope owning it.
	instance, fresh, err := sl.Fill(path, func() (any, error) {
		return home.construct(e, path)
	})
	if err != nil {
		return nil, err
	}
	if fresh {
		home.disposer.Track(instance)
		s.c.log.Debug("Shared instance created", logger.Fields(
			logger.FieldKey, canonical, logger.FieldImpl, e.reg.ImplementationType.String()))
	}
	return instance, nil
}

func (s *Scope) slotFor(key string) *resolve.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key]
	if !ok {
		sl = &resolve.Cell{}
		s.slots[key] = sl
	}
	return sl
}

// construct runs the factory of e. Factory errors are returned unwrapped.
func (s *Scope) construct(e *entry, path resolve.Path) (any, error) {
	return resolve.Run(s, path, e.reg.Factory)
}

// Close disposes the shared instances owned by this scope.
func (s *Scope) Close() error {
	if s.Facade == nil {
		return s.disposer.Close()
	}
	return s.Facade.Close()
}
