package binder

import (
	"reflect"
	"time"

	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/metadata"
)

// Activators supplies the factory of an implementation type.
type Activators interface {
	Activator(impl reflect.Type) (facade.Factory, error)
}

// Target is a backend accepting registrations.
type Target interface {
	Register(reg Registration) error
}

// Committer is implemented by targets that finish binding explicitly.
type Committer interface {
	Commit() error
}

// Plan computes the registrations of one record without touching a backend.
func Plan(rec metadata.ExportRecord, acts Activators) ([]Registration, error) {
	impl := rec.ImplementationType()
	contracts := rec.ContractList()
	views := rec.Contracts()

	for _, c := range contracts {
		if c.Type != impl && !impl.AssignableTo(c.Type) {
			return nil, errors.ContractTypeMismatch(impl.String(), c.Type.String())
		}
	}

	// Go may hand out one address for every zero-size allocation, so such a
	// type cannot yield distinct instances.
	if !rec.IsShared() && zeroSize(impl) {
		return nil, errors.InvalidDeclaration(impl.String(),
			"a non-shared part needs at least one field of non-zero size")
	}

	factory, err := acts.Activator(impl)
	if err != nil {
		return nil, err
	}
	lifetime := Lifetime{Shared: rec.IsShared(), Boundary: rec.SharingBoundary()}

	direct := func(i int) Registration {
		c := contracts[i]
		return Registration{
			Key:                KeyFor(c, impl),
			ImplementationType: impl,
			Lifetime:           lifetime,
			Factory:            factory,
			Contract:           &c,
			Metadata:           metadata.WithDefaults(views[i], impl),
		}
	}

	if len(contracts) == 1 {
		return []Registration{direct(0)}, nil
	}

	own := rec.OwnIdentityIndex()
	var master Registration
	if own >= 0 {
		master = direct(own)
	} else {
		master = Registration{
			Key:                MasterKey(impl),
			ImplementationType: impl,
			Lifetime:           lifetime,
			Factory:            factory,
			Metadata:           metadata.NewView(metadata.GetDefaultMetadata(impl, nil, "")),
		}
	}

	regs := make([]Registration, 0, len(contracts)+1)
	regs = append(regs, master)
	for i := range contracts {
		if i == own {
			continue
		}
		alias := direct(i)
		alias.Factory = nil
		alias.Forward = master.Key
		regs = append(regs, alias)
	}
	return regs, nil
}

// BindExports registers every record into target and commits it when it
// implements Committer. Binding stops at the first error.
func BindExports[T Target](records []metadata.ExportRecord, acts Activators, target T) (T, error) {
	log := logger.Get("binder")
	start := time.Now()
	count := 0

	for _, rec := range records {
		regs, err := Plan(rec, acts)
		if err != nil {
			log.Error("Planning failed", logger.Merge(logger.ImplFields(rec.ImplementationType()), logger.Fields(logger.FieldError, err.Error())))
			return target, err
		}
		for _, reg := range regs {
			if err := target.Register(reg); err != nil {
				return target, err
			}
			log.Debug("Registered", logger.Fields(
				logger.FieldKey, reg.Key,
				logger.FieldImpl, reg.ImplementationType.String(),
				"lifetime", reg.Lifetime.String(),
				"forward", reg.Forward,
			))
			count++
		}
	}

	if c, ok := any(target).(Committer); ok {
		if err := c.Commit(); err != nil {
			return target, err
		}
	}

	log.Info("Exports bound", logger.Merge(
		logger.DurationFields("bind", time.Since(start)),
		logger.Fields(logger.FieldRecordCount, len(records), "registrations", count),
	))
	return target, nil
}

func zeroSize(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Size() == 0
}
