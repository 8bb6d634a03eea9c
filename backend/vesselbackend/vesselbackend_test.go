package vesselbackend_test

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/kbukum/exportkit/backend/backendtest"
	"github.com/kbukum/exportkit/backend/vesselbackend"
	"github.com/kbukum/exportkit/binder"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/metadata"
)

func TestConformance(t *testing.T) {
	backendtest.Run(t, func() backendtest.Backend { return vesselbackend.New() })
}

type note struct{}

func TestRegister_SealedAfterCommit(t *testing.T) {
	c := vesselbackend.New()
	backendtest.Bind(t, c, backendtest.NewCatalog(&backendtest.Counters{}))

	typ := reflect.TypeFor[*note]()
	err := c.Register(binder.Registration{
		Key:                "late",
		ImplementationType: typ,
		Lifetime:           binder.Lifetime{Shared: true},
		Factory:            func(facade.Provider) (any, error) { return &note{}, nil },
		Contract:           &metadata.Contract{Type: typ},
		Metadata:           metadata.NewView(metadata.GetDefaultMetadata(typ, nil, "")),
	})
	if !stderrors.Is(err, errors.ErrContainerSealed) {
		t.Errorf("expected CONTAINER_SEALED, got %v", err)
	}
}

func TestRegister_RejectsUnknownForward(t *testing.T) {
	c := vesselbackend.New()
	err := c.Register(binder.Registration{Key: "alias", Forward: "nowhere"})
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestOnExportsChanged_NeverCalled(t *testing.T) {
	c := vesselbackend.New()
	called := false
	c.OnExportsChanged(func(facade.ExportsChangedEvent) { called = true })
	backendtest.Bind(t, c, backendtest.NewCatalog(&backendtest.Counters{}))
	if called {
		t.Error("vessel cannot observe changes")
	}
}

func TestCycle_Detected(t *testing.T) {
	c := vesselbackend.New()
	backendtest.Bind(t, c, backendtest.NewCycleCatalog())

	_, err := facade.GetExportedValue[backendtest.Cyclic](c, "a")
	if !stderrors.Is(err, errors.ErrCircularDependency) {
		t.Fatalf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}
}

func TestRegister_AllInVessel(t *testing.T) {
	c := vesselbackend.New()
	backendtest.Bind(t, c, backendtest.NewCatalog(&backendtest.Counters{}))

	// the fixtures have no forwarding registration within a boundary
	if got, want := len(c.Vessel().Services()), len(c.Registrations()); got != want {
		t.Errorf("expected %d vessel services, got %d", want, got)
	}
	for _, info := range c.Registrations() {
		if !c.Vessel().Has(info.Key) {
			t.Errorf("%s missing from vessel", info.Key)
		}
	}
}

func TestRegistrations_TracksCreation(t *testing.T) {
	c := vesselbackend.New()
	backendtest.Bind(t, c, backendtest.NewCatalog(&backendtest.Counters{}))

	facade.MustGetExportedValue[backendtest.Greeter](c)
	for _, info := range c.Registrations() {
		if info.Implementation == reflect.TypeFor[*backendtest.Greeting]() && !info.Created {
			t.Errorf("%s not reported as created", info.Key)
		}
	}
}

var errFactory = stderrors.New("factory failed")

func TestResolve_FactoryErrorUnwrapped(t *testing.T) {
	c := vesselbackend.New()
	typ := reflect.TypeFor[*note]()
	err := c.Register(binder.Registration{
		Key:                "failing",
		ImplementationType: typ,
		Lifetime:           binder.Lifetime{Shared: true},
		Factory:            func(facade.Provider) (any, error) { return nil, errFactory },
		Contract:           &metadata.Contract{Type: typ},
		Metadata:           metadata.NewView(metadata.GetDefaultMetadata(typ, nil, "")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := facade.GetExportedValue[*note](c); err != errFactory {
		t.Errorf("expected the factory error as-is, got %v", err)
	}
}
