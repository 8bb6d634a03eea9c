package resolve

import (
	stderrors "errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/metadata"
)

func TestPath_Enter(t *testing.T) {
	p, err := Path{}.Enter("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, _ := p.Enter("b")
	if p.Len() != 1 || p2.Len() != 2 {
		t.Error("Enter must not modify the receiver")
	}
	if _, err := p2.Enter("a"); !stderrors.Is(err, errors.ErrCircularDependency) {
		t.Errorf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}
}

type recordingLister struct {
	paths []Path
}

func (r *recordingLister) ExportsOn(path Path, t reflect.Type, name string) []*facade.Export {
	r.paths = append(r.paths, path)
	return []*facade.Export{facade.NewExport(metadata.Contract{Type: t}, nil, func() (any, error) { return 1, nil })}
}

func TestRun_PathOnlyWhileActive(t *testing.T) {
	l := &recordingLister{}
	var kept facade.Provider
	start, _ := Path{}.Enter("a")
	_, err := Run(l, start, func(p facade.Provider) (any, error) {
		kept = p
		return p.GetExportedValue(reflect.TypeFor[int](), "")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = kept.GetExportedValue(reflect.TypeFor[int](), "")

	if len(l.paths) != 2 || l.paths[0].Len() != 1 || l.paths[1].Len() != 0 {
		t.Errorf("unexpected paths %v", l.paths)
	}
}

func TestCell_Fill(t *testing.T) {
	var c Cell
	calls := 0
	_, _, err := c.Fill(Path{}, func() (any, error) { calls++; return nil, stderrors.New("fail") })
	if err == nil || c.Filled() {
		t.Fatal("failed fill must leave the cell empty")
	}
	v, fresh, _ := c.Fill(Path{}, func() (any, error) { calls++; return "x", nil })
	v2, fresh2, _ := c.Fill(Path{}, func() (any, error) { calls++; return "y", nil })
	if v != "x" || v2 != "x" || !fresh || fresh2 || calls != 2 {
		t.Errorf("unexpected fill results %v %v %v %v %d", v, fresh, v2, fresh2, calls)
	}
}

func TestCell_Fill_PanicLeavesCellEmpty(t *testing.T) {
	var c Cell
	func() {
		defer func() { _ = recover() }()
		_, _, _ = c.Fill(Path{}, func() (any, error) { panic("boom") })
	}()
	if c.Filled() {
		t.Fatal("panicking fill must leave the cell empty")
	}
	v, fresh, err := c.Fill(Path{}, func() (any, error) { return 1, nil })
	if err != nil || v != 1 || !fresh {
		t.Errorf("expected retry after panic, got %v %v %v", v, fresh, err)
	}
}

func TestCell_Fill_ConcurrentWaitersShareValue(t *testing.T) {
	var c Cell
	release := make(chan struct{})
	var calls atomic.Int32
	results := make(chan any, 4)
	for range 4 {
		go func() {
			p, _ := Path{}.Enter("k")
			v, _, _ := c.Fill(p, func() (any, error) {
				calls.Add(1)
				<-release
				return "v", nil
			})
			results <- v
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	for range 4 {
		if v := <-results; v != "v" {
			t.Errorf("unexpected value %v", v)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected one build, got %d", calls.Load())
	}
}

// Two walks each build one cell and then need the other's: the second one
// to wait must fail instead of blocking, and the first then fails on its own
// path once it builds the other cell itself.
func TestCell_Fill_CrossWalkCycle(t *testing.T) {
	var left, right Cell
	var resolveLeft, resolveRight func(p Path) (any, error)

	build := func(own *Cell, key string, next func(Path) (any, error)) func(Path) (any, error) {
		return func(p Path) (any, error) {
			p, err := p.Enter(key)
			if err != nil {
				return nil, err
			}
			v, _, err := own.Fill(p, func() (any, error) {
				time.Sleep(30 * time.Millisecond)
				return next(p)
			})
			return v, err
		}
	}
	resolveLeft = build(&left, "left", func(p Path) (any, error) { return resolveRight(p) })
	resolveRight = build(&right, "right", func(p Path) (any, error) { return resolveLeft(p) })

	errs := make(chan error, 2)
	go func() { _, err := resolveLeft(Path{}); errs <- err }()
	go func() { _, err := resolveRight(Path{}); errs <- err }()

	for range 2 {
		select {
		case err := <-errs:
			if !stderrors.Is(err, errors.ErrCircularDependency) {
				t.Errorf("expected CIRCULAR_DEPENDENCY, got %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("resolution blocked on a cross-goroutine cycle")
		}
	}
	if left.Filled() || right.Filled() {
		t.Error("cells of a cycle must stay empty")
	}
}
