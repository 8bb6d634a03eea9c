package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/facade"
)

// Summary collects and prints the startup summary.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary printing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// DisplaySummary prints components, exports, routes and live health.
func (s *Summary) DisplaySummary(registry *component.Registry, exports facade.Provider) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var (
		comps  []component.Component
		routes []component.Route
	)
	if registry != nil {
		comps = registry.All()
	}

	if len(comps) > 0 {
		fmt.Fprintf(w, "📊 Components\n")
		for i, c := range comps {
			d := component.Description{Name: c.Name()}
			if desc, ok := c.(component.Describable); ok {
				d = desc.Describe()
				if d.Name == "" {
					d.Name = c.Name()
				}
			}
			line := d.Name
			if d.Details != "" {
				line += ": " + d.Details
			}
			if d.Type != "" {
				line += " [" + d.Type + "]"
			}
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(comps)), line)

			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}
	} else {
		fmt.Fprintf(w, "   └── No components registered\n")
	}

	if in, ok := exports.(facade.Inspector); ok {
		var visible []facade.RegistrationInfo
		for _, r := range in.Registrations() {
			if !r.Hidden {
				visible = append(visible, r)
			}
		}
		fmt.Fprintf(w, "\n📦 Exports (%d)\n", len(visible))
		for i, r := range visible {
			fmt.Fprintf(w, "   %s %s → %s [%s]\n", treePrefix(i, len(visible)), r.Contract, r.Implementation, lifetimeLabel(r))
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		results := registry.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " - " + h.Message
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}
	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func lifetimeLabel(r facade.RegistrationInfo) string {
	switch {
	case r.Boundary != "":
		return "shared:" + r.Boundary
	case r.Shared:
		return "shared"
	default:
		return "non-shared"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
