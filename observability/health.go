package observability

import (
	"context"
	"strconv"

	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/facade"
)

// ServiceHealth describes the overall health of a service and its components.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by parts that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) component.Health
}

// NewServiceHealth creates a healthy ServiceHealth.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  component.StatusHealthy,
		Version: version,
	}
}

// AddComponent adds a component result and degrades the overall status.
func (sh *ServiceHealth) AddComponent(ch component.Health) {
	sh.Components = append(sh.Components, ch)
	sh.Status = component.Overall([]component.Health{{Status: sh.Status}, ch})
}

// RegistryChecker reports the registrations of a provider. A provider with
// no registrations is degraded; one that cannot list them is healthy with
// no details.
type RegistryChecker struct {
	Name     string
	Provider facade.Provider
}

func (r RegistryChecker) CheckHealth(context.Context) component.Health {
	h := component.Health{Name: r.Name, Status: component.StatusHealthy}
	in, ok := r.Provider.(facade.Inspector)
	if !ok {
		return h
	}

	regs := in.Registrations()
	created := 0
	for _, reg := range regs {
		if reg.Created {
			created++
		}
	}
	h.Details = map[string]string{
		"registrations": strconv.Itoa(len(regs)),
		"created":       strconv.Itoa(created),
	}
	if len(regs) == 0 {
		h.Status = component.StatusDegraded
		h.Message = "no exports registered"
	}
	return h
}
