package bootstrap

import (
	"context"
	"errors"
	"fmt"
)

// Hook is a lifecycle callback. Hooks receive no provider; they read
// App.Exports, which is set before the first start hook runs.
type Hook func(ctx context.Context) error

type phase string

const (
	phaseStart phase = "start"
	phaseReady phase = "ready"
	phaseStop  phase = "stop"
)

// OnStart registers hooks run once every component, the exports included,
// has started.
func (a *App[C]) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnReady registers hooks run after the ready check.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers hooks run at shutdown before any component stops, while
// Exports still resolves. All stop hooks run even when one fails.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

func runHooks(ctx context.Context, p phase, hooks []Hook) error {
	var errs []error
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			err = fmt.Errorf("%s hook %d: %w", p, i, err)
			if p != phaseStop {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
