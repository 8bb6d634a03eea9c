package facade

import (
	stderrors "errors"
	"io"
	"sync"
)

// Disposer closes tracked instances in reverse creation order.
type Disposer struct {
	mu     sync.Mutex
	items  []io.Closer
	closed bool
}

// Track remembers v if it implements io.Closer. Values tracked after Close
// are closed immediately.
func (d *Disposer) Track(v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		_ = c.Close()
		return
	}
	d.items = append(d.items, c)
	d.mu.Unlock()
}

// Len returns the number of tracked instances.
func (d *Disposer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Close closes every tracked instance, newest first, and joins the errors.
func (d *Disposer) Close() error {
	d.mu.Lock()
	items := d.items
	d.items = nil
	d.closed = true
	d.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
