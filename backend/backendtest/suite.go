// Package backendtest is the behavioral suite every backend adapter must
// pass. Adapters run it from their own tests:
//
//	func TestConformance(t *testing.T) {
//		backendtest.Run(t, func() backendtest.Backend { return arena.New() })
//	}
package backendtest

import (
	stderrors "errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/exportkit/binder"
	"github.com/kbukum/exportkit/catalog"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/reader"
)

// Backend is a binding target that serves the bound exports.
type Backend interface {
	binder.Target
	facade.Provider
}

// Bind reads cat and binds it into b.
func Bind(t *testing.T, b Backend, cat *catalog.Catalog) {
	t.Helper()
	records, err := reader.New().ReadCatalog(cat)
	if err != nil {
		t.Fatalf("reading catalog: %v", err)
	}
	if _, err := binder.BindExports(records, cat, b); err != nil {
		t.Fatalf("binding exports: %v", err)
	}
}

// Run executes the suite against fresh backends from newBackend.
func Run(t *testing.T, newBackend func() Backend) {
	setup := func(t *testing.T) (Backend, *Counters) {
		t.Helper()
		counters := &Counters{}
		b := newBackend()
		Bind(t, b, NewCatalog(counters))
		t.Cleanup(func() { _ = b.Close() })
		return b, counters
	}

	t.Run("SharedAcrossContracts", func(t *testing.T) {
		b, counters := setup(t)

		own, err := facade.GetExportedValue[*Greeting](b)
		if err != nil {
			t.Fatalf("own identity: %v", err)
		}
		unnamed, err := facade.GetExportedValue[Greeter](b)
		if err != nil {
			t.Fatalf("unnamed contract: %v", err)
		}
		named, err := facade.GetExportedValue[Greeter](b, "X")
		if err != nil {
			t.Fatalf("named contract: %v", err)
		}
		if unnamed != Greeter(own) || named != Greeter(own) {
			t.Error("expected one instance across all contracts")
		}
		if n := counters.Greeting.Load(); n != 1 {
			t.Errorf("expected 1 construction, got %d", n)
		}
	})

	t.Run("NonSharedDistinct", func(t *testing.T) {
		b, counters := setup(t)

		first, err := facade.GetExportedValue[Counter](b)
		if err != nil {
			t.Fatalf("first: %v", err)
		}
		second, err := facade.GetExportedValue[Counter](b)
		if err != nil {
			t.Fatalf("second: %v", err)
		}
		if first == second {
			t.Error("expected distinct instances")
		}
		if n := counters.Ticket.Load(); n != 2 {
			t.Errorf("expected 2 tickets, got %d", n)
		}
		if n := counters.Greeting.Load(); n != 1 {
			t.Errorf("expected shared dependency once, got %d", n)
		}
	})

	t.Run("LightDefaultsToNonShared", func(t *testing.T) {
		b, counters := setup(t)

		first := facade.MustGetExportedValue[Clock](b)
		second := facade.MustGetExportedValue[Clock](b)
		if first == second {
			t.Error("expected distinct instances")
		}
		if n := counters.Clock.Load(); n != 2 {
			t.Errorf("expected 2 clocks, got %d", n)
		}
	})

	t.Run("LazyExports", func(t *testing.T) {
		b, counters := setup(t)

		exports := facade.GetExports[Plugin](b)
		if len(exports) != 2 {
			t.Fatalf("expected 2 exports, got %d", len(exports))
		}
		for _, e := range exports {
			if _, err := e.Metadata().GetValue("Order"); err != nil {
				t.Errorf("metadata unavailable: %v", err)
			}
			if e.IsValueCreated() {
				t.Error("value created before access")
			}
		}
		if counters.Alpha.Load()+counters.Beta.Load() != 0 {
			t.Fatal("listing exports constructed a value")
		}

		v, err := exports[0].Value()
		if err != nil || v == nil {
			t.Fatalf("value: %v", err)
		}
		if !exports[0].IsValueCreated() {
			t.Error("expected value to be created")
		}
		if got := counters.Alpha.Load() + counters.Beta.Load(); got != 1 {
			t.Errorf("expected 1 construction, got %d", got)
		}
	})

	t.Run("TypedMetadata", func(t *testing.T) {
		b, _ := setup(t)

		exports, err := facade.GetExportsWithMetadata[Plugin, PluginMeta](b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		sort.Slice(exports, func(i, j int) bool { return exports[i].Meta.Order < exports[j].Meta.Order })
		if len(exports) != 2 || exports[0].Meta.Title != "alpha" || exports[1].Meta.Order != 2 {
			t.Errorf("unexpected metadata: %+v", exports)
		}
	})

	t.Run("Ambiguous", func(t *testing.T) {
		b, _ := setup(t)

		if _, err := facade.GetExportedValue[Plugin](b); !stderrors.Is(err, errors.ErrAmbiguousExport) {
			t.Errorf("expected AMBIGUOUS_EXPORT, got %v", err)
		}
		if _, err := facade.GetExportedValueOrDefault[Plugin](b); !stderrors.Is(err, errors.ErrAmbiguousExport) {
			t.Errorf("expected AMBIGUOUS_EXPORT from OrDefault, got %v", err)
		}
		if _, ok := facade.TryGetExportedValue[Plugin](b); ok {
			t.Error("TryGet must fail on ambiguity")
		}
		values, err := facade.GetExportedValues[Plugin](b)
		if err != nil {
			t.Fatalf("values: %v", err)
		}
		if len(values) != 2 {
			t.Errorf("expected 2 values, got %d", len(values))
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		b, _ := setup(t)

		if _, err := facade.GetExportedValue[Missing](b); !stderrors.Is(err, errors.ErrExportNotFound) {
			t.Errorf("expected EXPORT_NOT_FOUND, got %v", err)
		}
		v, err := facade.GetExportedValueOrDefault[Missing](b)
		if err != nil || v != nil {
			t.Errorf("expected zero value, got %v, %v", v, err)
		}
		if _, ok := facade.TryGetExportedValue[Missing](b); ok {
			t.Error("TryGet must fail when nothing matches")
		}
		values, err := facade.GetExportedValues[Missing](b)
		if err != nil || len(values) != 0 {
			t.Errorf("expected no values, got %d, %v", len(values), err)
		}
		if _, err := facade.GetExportedValue[Greeter](b, "Y"); err == nil {
			t.Error("expected unknown name to fail")
		}
	})

	t.Run("EmptyNameMeansUnnamed", func(t *testing.T) {
		b, _ := setup(t)

		absent := facade.GetExports[Greeter](b)
		empty := facade.GetExports[Greeter](b, "")
		if len(absent) != 1 || len(empty) != 1 {
			t.Fatalf("expected the unnamed export only, got %d and %d", len(absent), len(empty))
		}
		a, _ := absent[0].Value()
		e, _ := empty[0].Value()
		if a != e {
			t.Error("expected the same instance")
		}
	})

	t.Run("MissingDependency", func(t *testing.T) {
		b, _ := setup(t)

		if _, err := facade.GetExportedValue[*Broken](b); err == nil {
			t.Error("expected resolution to fail")
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		b := newBackend()
		Bind(t, b, NewCycleCatalog())
		t.Cleanup(func() { _ = b.Close() })

		if _, err := facade.GetExportedValue[Cyclic](b, "a"); err == nil {
			t.Error("expected a cycle error")
		}
	})

	t.Run("Boundaries", func(t *testing.T) {
		b, counters := setup(t)

		if _, err := facade.GetExportedValue[Session](b); err == nil {
			t.Error("boundary export visible at the root")
		}

		first, err := facade.BeginBoundary(b, "request")
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		second, err := facade.BeginBoundary(b, "request")
		if err != nil {
			t.Fatalf("begin: %v", err)
		}

		s1 := facade.MustGetExportedValue[Session](first)
		if again := facade.MustGetExportedValue[Session](first); again != s1 {
			t.Error("expected one session per scope")
		}
		s2 := facade.MustGetExportedValue[Session](second)
		if s1 == s2 {
			t.Error("expected distinct sessions per scope")
		}

		nested, err := facade.BeginBoundary(first, "inner")
		if err != nil {
			t.Fatalf("nested: %v", err)
		}
		if got := facade.MustGetExportedValue[Session](nested); got != s1 {
			t.Error("nested scope must see the enclosing session")
		}

		root := facade.MustGetExportedValue[Greeter](b)
		if facade.MustGetExportedValue[Greeter](first) != root {
			t.Error("root singleton must be shared with scopes")
		}

		if err := nested.Close(); err != nil {
			t.Fatalf("close nested: %v", err)
		}
		if err := first.Close(); err != nil {
			t.Fatalf("close first: %v", err)
		}
		if !s1.(*RequestSession).closed.Load() {
			t.Error("session of closed scope not disposed")
		}
		if s2.(*RequestSession).closed.Load() {
			t.Error("session of open scope disposed")
		}
		if root.(*Greeting).Closed() {
			t.Error("closing a scope disposed a root singleton")
		}
		if n := counters.Session.Load(); n != 2 {
			t.Errorf("expected 2 sessions, got %d", n)
		}
		_ = second.Close()
	})

	t.Run("CloseDisposesShared", func(t *testing.T) {
		counters := &Counters{}
		b := newBackend()
		Bind(t, b, NewCatalog(counters))

		g := facade.MustGetExportedValue[*Greeting](b)
		if err := b.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if !g.Closed() {
			t.Error("shared instance not disposed")
		}
	})

	t.Run("ConcurrentShared", func(t *testing.T) {
		b, counters := setup(t)

		var wg sync.WaitGroup
		results := make([]Greeter, 32)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = facade.GetExportedValue[Greeter](b)
			}()
		}
		wg.Wait()

		for _, r := range results {
			if r == nil || r != results[0] {
				t.Fatal("expected every goroutine to observe one instance")
			}
		}
		if n := counters.Greeting.Load(); n != 1 {
			t.Errorf("expected 1 construction, got %d", n)
		}
	})

	t.Run("SyntheticMasterShared", func(t *testing.T) {
		counters := &Counters{}
		b := newBackend()
		Bind(t, b, NewMasterCatalog(counters))
		t.Cleanup(func() { _ = b.Close() })

		p, err := facade.GetExportedValue[Plain](b, "duplex")
		if err != nil {
			t.Fatalf("plain: %v", err)
		}
		o, err := facade.GetExportedValue[Other](b, "duplex")
		if err != nil {
			t.Fatalf("other: %v", err)
		}
		if p.(*Duplex) != o.(*Duplex) || facade.MustGetExportedValue[Plain](b, "duplex") != p {
			t.Error("expected one instance behind both contracts")
		}
		if n := counters.Duplex.Load(); n != 1 {
			t.Errorf("expected 1 construction, got %d", n)
		}

		if _, err := facade.GetExportedValue[*Duplex](b); !stderrors.Is(err, errors.ErrExportNotFound) {
			t.Errorf("hidden master must not match a query, got %v", err)
		}
		if in, ok := b.(facade.Inspector); ok {
			hidden := 0
			for _, info := range in.Registrations() {
				if info.Hidden && strings.HasPrefix(info.Key, "master:") {
					hidden++
				}
			}
			if hidden != 1 {
				t.Errorf("expected 1 hidden master, got %d", hidden)
			}
		}
	})

	t.Run("NonSharedMultiContract", func(t *testing.T) {
		counters := &Counters{}
		b := newBackend()
		Bind(t, b, NewMasterCatalog(counters))
		t.Cleanup(func() { _ = b.Close() })

		first := facade.MustGetExportedValue[Plain](b, "relay")
		second := facade.MustGetExportedValue[Plain](b, "relay")
		other := facade.MustGetExportedValue[Other](b, "relay")
		if first == second {
			t.Error("expected distinct instances for one contract")
		}
		if first.(*Relay) == other.(*Relay) {
			t.Error("expected distinct instances across contracts")
		}
		if n := counters.Relay.Load(); n != 3 {
			t.Errorf("expected 3 constructions, got %d", n)
		}
	})

	t.Run("ZeroSizeNonSharedRejected", func(t *testing.T) {
		cat := catalog.New().MustAdd(reflect.TypeFor[*Stateless]())
		records, err := reader.New().ReadCatalog(cat)
		if err != nil {
			t.Fatalf("reading catalog: %v", err)
		}
		if len(records) != 1 || records[0].IsShared() {
			t.Fatalf("expected one non-shared record, got %+v", records)
		}

		b := newBackend()
		t.Cleanup(func() { _ = b.Close() })
		if _, err := binder.BindExports(records, cat, b); !stderrors.Is(err, errors.ErrInvalidDeclaration) {
			t.Errorf("expected INVALID_DECLARATION, got %v", err)
		}
	})

	t.Run("ConcurrentCycle", func(t *testing.T) {
		b := newBackend()
		Bind(t, b, NewCrossCycleCatalog(50*time.Millisecond))
		t.Cleanup(func() { _ = b.Close() })

		errs := make(chan error, 2)
		go func() {
			_, err := facade.GetExportedValue[Left](b)
			errs <- err
		}()
		go func() {
			_, err := facade.GetExportedValue[Right](b)
			errs <- err
		}()

		timeout := time.After(3 * time.Second)
		for range 2 {
			select {
			case err := <-errs:
				if !stderrors.Is(err, errors.ErrCircularDependency) {
					t.Errorf("expected CIRCULAR_DEPENDENCY, got %v", err)
				}
			case <-timeout:
				t.Fatal("resolution blocked on a cycle entered from both ends")
			}
		}
	})
}
