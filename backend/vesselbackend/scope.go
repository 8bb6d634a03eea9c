package vesselbackend

import (
	stderrors "errors"
	"fmt"
	"reflect"

	"github.com/xraph/vessel"

	"github.com/kbukum/exportkit/backend/internal/resolve"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/metadata"
)

// Scope is a resolution scope. Boundary scopes hold a vessel scope in which
// the registrations shared within their boundaries live.
type Scope struct {
	*facade.Facade

	c          *Container
	parent     *Scope
	boundaries map[string]struct{}
	vscope     vessel.Scope
	disposer   *facade.Disposer
}

var _ facade.BoundaryProvider = (*Scope)(nil)

// BeginBoundary opens a nested scope for names.
func (s *Scope) BeginBoundary(names ...string) (facade.Provider, error) {
	if len(names) == 0 {
		return nil, errors.InvalidInput("names", "at least one boundary name is required")
	}
	child := &Scope{
		c:          s.c,
		parent:     s,
		boundaries: make(map[string]struct{}, len(names)),
		vscope:     s.c.vessel.BeginScope(),
		disposer:   &facade.Disposer{},
	}
	for _, n := range names {
		child.boundaries[n] = struct{}{}
	}
	child.Facade = facade.New(child, facade.WithCloser(child.end))
	s.c.log.Debug("Boundary scope opened", logger.Fields(logger.FieldBoundary, names))
	return child, nil
}

func (s *Scope) end() error {
	err := s.disposer.Close()
	return stderrors.Join(err, s.vscope.End())
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

// resolve asks vessel for the cell of key and fills it.
func (s *Scope) resolve(key string, path resolve.Path) (any, error) {
	e, master, ok := s.c.lookup(key)
	if !ok || !s.visible(e) {
		return nil, errors.ExportNotFound(key)
	}
	path, err := path.Enter(master.reg.Key)
	if err != nil {
		return nil, err
	}

	home := s.c.root
	var raw any
	if b := e.reg.Lifetime.Boundary; b != "" {
		home = s.owner(b)
		raw, err = home.vscope.Resolve(master.reg.Key)
	} else {
		raw, err = s.c.vessel.Resolve(key)
	}
	if err != nil {
		return nil, err
	}
	cell, ok := raw.(*resolve.Cell)
	if !ok {
		return nil, errors.Internal(fmt.Errorf("vessel: %s resolved to %T", key, raw))
	}

	// Shared instances resolve their dependencies in the scope owning them.
	from := s
	if master.reg.Lifetime.Shared {
		from = home
	}
	value, fresh, err := cell.Fill(path, func() (any, error) {
		return resolve.Run(from, path, master.reg.Factory)
	})
	if err != nil {
		return nil, err
	}
	if fresh {
		master.created.Store(true)
		if master.reg.Lifetime.Shared {
			home.disposer.Track(value)
			s.c.log.Debug("Shared instance created", logger.Fields(
				logger.FieldKey, master.reg.Key, logger.FieldImpl, master.reg.ImplementationType.String()))
		}
	}
	return value, nil
}

// Close disposes the shared instances owned by this scope and ends its
// vessel scope.
func (s *Scope) Close() error {
	if s.Facade == nil {
		return s.disposer.Close()
	}
	return s.Facade.Close()
}
