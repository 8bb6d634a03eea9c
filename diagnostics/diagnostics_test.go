package diagnostics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/exportkit/backend/arena"
	"github.com/kbukum/exportkit/backend/backendtest"
	"github.com/kbukum/exportkit/catalog"
	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/diagnostics"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/marker/classic"
	"github.com/kbukum/exportkit/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type listBody struct {
	Data []diagnostics.ExportView `json:"data"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

// dual has two contracts and no own identity, so it binds through a
// hidden master.
type dual struct {
	_ classic.Export[backendtest.Greeter] `name:"dual"`
	_ classic.Export[backendtest.Plugin]  `name:"dual"`
}

func (*dual) Greet() string { return "dual" }
func (*dual) Name() string  { return "dual" }

func newServer(t *testing.T, opts ...diagnostics.Option) (*diagnostics.Server, *backendtest.Counters) {
	t.Helper()
	counters := &backendtest.Counters{}
	return newServerWith(t, backendtest.NewCatalog(counters), opts...), counters
}

func newServerWith(t *testing.T, cat *catalog.Catalog, opts ...diagnostics.Option) *diagnostics.Server {
	t.Helper()
	c := arena.New()
	backendtest.Bind(t, c, cat)
	t.Cleanup(func() { _ = c.Close() })
	return diagnostics.New("127.0.0.1:0", c, opts...)
}

func get(t *testing.T, s *diagnostics.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return v
}

func TestListExports(t *testing.T) {
	s, counters := newServer(t)

	w := get(t, s, "/exports")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected a request id header")
	}

	body := decode[listBody](t, w)
	if len(body.Data) == 0 || body.Meta.Total != len(body.Data) {
		t.Fatalf("unexpected body %+v", body)
	}
	for _, v := range body.Data {
		if v.Hidden {
			t.Errorf("hidden registration listed by default: %+v", v)
		}
		if v.Created {
			t.Errorf("%s reported as created", v.Key)
		}
	}
	if counters.Greeting.Load() != 0 || counters.Alpha.Load() != 0 {
		t.Error("listing must not instantiate exports")
	}
}

func TestListExports_Hidden(t *testing.T) {
	s := newServerWith(t, catalog.New().MustProvide(func() *dual { return &dual{} }))

	all := decode[listBody](t, get(t, s, "/exports?hidden=true"))
	visible := decode[listBody](t, get(t, s, "/exports"))
	if len(visible.Data) != 2 || len(all.Data) != 3 {
		t.Fatalf("expected 2 aliases plus a hidden master, got %d and %d", len(visible.Data), len(all.Data))
	}
	for _, v := range visible.Data {
		if v.Forward == "" {
			t.Errorf("expected %s to forward to the master", v.Key)
		}
	}

	w := get(t, s, "/exports?hidden=maybe")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decode[errors.ErrorResponse](t, w)
	if resp.Error.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", resp.Error.Code)
	}
}

func TestContractExports(t *testing.T) {
	s, counters := newServer(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"short name", "/exports/backendtest.Greeter", 2},
		{"qualified name", "/exports/github.com%2Fkbukum%2Fexportkit%2Fbackend%2Fbackendtest.Greeter", 2},
		{"named", "/exports/backendtest.Greeter?name=X", 1},
		{"empty name means unnamed", "/exports/backendtest.Greeter?name=", 1},
		{"plugins", "/exports/backendtest.Plugin", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, s, tc.target)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			body := decode[listBody](t, w)
			if len(body.Data) != tc.want {
				t.Fatalf("expected %d exports, got %+v", tc.want, body.Data)
			}
		})
	}

	named := decode[listBody](t, get(t, s, "/exports/backendtest.Greeter?name=X"))
	if named.Data[0].ContractName != "X" {
		t.Errorf("expected contract name X, got %+v", named.Data[0])
	}
	if named.Data[0].Metadata["Display"] != "greeting" {
		t.Errorf("expected Display metadata, got %v", named.Data[0].Metadata)
	}
	if counters.Greeting.Load() != 0 {
		t.Error("metadata queries must not instantiate exports")
	}
}

func TestContractExports_NotFound(t *testing.T) {
	s, _ := newServer(t)

	w := get(t, s, "/exports/backendtest.Missing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	resp := decode[errors.ErrorResponse](t, w)
	if resp.Error.Code != errors.ErrCodeExportNotFound {
		t.Errorf("expected EXPORT_NOT_FOUND, got %s", resp.Error.Code)
	}

	w = get(t, s, "/exports/backendtest.Greeter?name=nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown name, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t, diagnostics.WithService("orders", "1.2.3"))

	w := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[observability.ServiceHealth](t, w)
	if body.Service != "orders" || body.Version != "1.2.3" || body.Status != component.StatusHealthy {
		t.Errorf("unexpected health %+v", body)
	}
	if len(body.Components) != 1 || body.Components[0].Name != "exports" {
		t.Errorf("unexpected components %+v", body.Components)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	s, _ := newServer(t, diagnostics.WithHealth(func(context.Context) []component.Health {
		return []component.Health{
			{Name: "exports", Status: component.StatusHealthy},
			{Name: "telemetry", Status: component.StatusUnhealthy, Message: "exporter down"},
		}
	}))

	if w := get(t, s, "/health"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestInfo(t *testing.T) {
	s, _ := newServer(t, diagnostics.WithService("orders", "1.2.3"), diagnostics.WithBackend("arena"))

	w := get(t, s, "/info")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[struct {
		Data diagnostics.InfoView `json:"data"`
	}](t, w)
	if body.Data.Service != "orders" || body.Data.Version != "1.2.3" || body.Data.Backend != "arena" {
		t.Errorf("unexpected info %+v", body.Data)
	}
	if len(body.Data.Build.Backends) == 0 || body.Data.Build.Backends[0].Name != "arena" {
		t.Errorf("expected arena among linked backends, got %+v", body.Data.Build.Backends)
	}
}

func TestServerComponent_Lifecycle(t *testing.T) {
	s, _ := newServer(t)
	sc := diagnostics.NewComponent(s)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = sc.Stop(context.Background()) })

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if h := sc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}
	d := sc.Describe()
	if d.Type != "server" || d.Port == 0 {
		t.Errorf("unexpected description %+v", d)
	}

	routes := sc.Routes()
	if len(routes) != 4 {
		t.Fatalf("expected 4 routes, got %+v", routes)
	}
	if routes[0].Path != "/exports" || routes[0].Handler != "Server.listExports" {
		t.Errorf("unexpected first route %+v", routes[0])
	}
}
