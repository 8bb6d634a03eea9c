package facade

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/exportkit/metadata"
)

// Export is a lazily created exported value together with its metadata.
type Export struct {
	contract metadata.Contract
	md       metadata.View
	factory  func() (any, error)

	once    sync.Once
	value   any
	err     error
	created atomic.Bool
}

// NewExport creates an export whose value is produced by factory on first access.
func NewExport(contract metadata.Contract, md metadata.View, factory func() (any, error)) *Export {
	if md == nil {
		md = metadata.Empty
	}
	return &Export{contract: contract, md: md, factory: factory}
}

// Contract returns the contract the export was matched on.
func (e *Export) Contract() metadata.Contract { return e.contract }

// Metadata returns the export metadata. It never creates the value.
func (e *Export) Metadata() metadata.View { return e.md }

// Value creates the value on first call and returns the cached result after.
// A construction error is cached as well.
func (e *Export) Value() (any, error) {
	e.once.Do(func() {
		e.value, e.err = e.factory()
		e.created.Store(true)
	})
	return e.value, e.err
}

// IsValueCreated reports whether Value has run.
func (e *Export) IsValueCreated() bool { return e.created.Load() }
