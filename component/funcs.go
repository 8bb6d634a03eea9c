package component

import "context"

// Funcs builds a Component from plain functions. Nil functions are no-ops
// and a nil health function reports healthy.
type Funcs struct {
	ComponentName string
	StartFunc     func(ctx context.Context) error
	StopFunc      func(ctx context.Context) error
	HealthFunc    func(ctx context.Context) Health
	Description   *Description
}

var (
	_ Component   = (*Funcs)(nil)
	_ Describable = (*Funcs)(nil)
)

func (f *Funcs) Name() string { return f.ComponentName }

func (f *Funcs) Start(ctx context.Context) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx)
}

func (f *Funcs) Stop(ctx context.Context) error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc(ctx)
}

func (f *Funcs) Health(ctx context.Context) Health {
	if f.HealthFunc == nil {
		return Health{Name: f.ComponentName, Status: StatusHealthy}
	}
	h := f.HealthFunc(ctx)
	if h.Name == "" {
		h.Name = f.ComponentName
	}
	return h
}

func (f *Funcs) Describe() Description {
	if f.Description == nil {
		return Description{Name: f.ComponentName}
	}
	return *f.Description
}
