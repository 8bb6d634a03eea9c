package backendtest

import (
	"sync/atomic"
	"time"

	"github.com/kbukum/exportkit/catalog"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/marker/classic"
	"github.com/kbukum/exportkit/marker/light"
)

// Greeter is exported by Greeting under two contracts.
type Greeter interface{ Greet() string }

// Counter is exported by the non-shared Ticket.
type Counter interface{ Next() int }

// Plugin is exported by two implementations.
type Plugin interface{ Name() string }

// Session is shared within the "request" boundary.
type Session interface{ ID() int64 }

// Clock is a light-family part with the family default lifetime.
type Clock interface{ Now() int64 }

// Cyclic is implemented by two parts depending on each other.
type Cyclic interface{ Peer() Cyclic }

type pluginExport struct {
	classic.Export[Plugin]
	Order int
	Title string
}

// PluginMeta is the typed metadata view of Plugin exports.
type PluginMeta struct {
	Order int
	Title string
}

type Greeting struct {
	_ classic.ExportSelf
	_ classic.Export[Greeter]
	_ classic.Export[Greeter] `name:"X"`
	_ classic.ExportMetadata `name:"Display" value:"greeting"`

	id     int64
	closed atomic.Bool
}

func (g *Greeting) Greet() string { return "hello" }

func (g *Greeting) Close() error {
	g.closed.Store(true)
	return nil
}

// Closed reports whether the instance was disposed.
func (g *Greeting) Closed() bool { return g.closed.Load() }

// Ticket is non-shared and depends on Greeter.
type Ticket struct {
	_ classic.Export[Counter]
	_ classic.PartCreationPolicy `policy:"NonShared"`

	greeter Greeter
	seq     int
}

func (t *Ticket) Next() int {
	t.seq++
	return t.seq
}

type Alpha struct {
	_ pluginExport `order:"1" title:"alpha"`
}

func (*Alpha) Name() string { return "alpha" }

type Beta struct {
	_ pluginExport `order:"2" title:"beta"`
}

func (*Beta) Name() string { return "beta" }

// RequestSession is shared per request scope.
type RequestSession struct {
	_ light.Export[Session]
	_ light.Shared `boundary:"request"`

	id     int64
	closed atomic.Bool
}

func (s *RequestSession) ID() int64 { return s.id }

func (s *RequestSession) Close() error {
	s.closed.Store(true)
	return nil
}

type LightClock struct {
	_ light.Export[Clock]

	n int64
}

func (c *LightClock) Now() int64 { return c.n }

// Broken exports a contract whose dependency is never registered.
type Broken struct {
	_ classic.ExportSelf
}

// Missing is never exported.
type Missing interface{ Missing() }

type CycleA struct {
	_ classic.Export[Cyclic] `name:"a"`

	peer Cyclic
}

func (c *CycleA) Peer() Cyclic { return c.peer }

type CycleB struct {
	_ classic.ExportSelf

	peer Cyclic
}

func (c *CycleB) Peer() Cyclic { return c.peer }

// Counters records how many instances each fixture constructor created.
type Counters struct {
	Greeting atomic.Int64
	Ticket   atomic.Int64
	Alpha    atomic.Int64
	Beta     atomic.Int64
	Session  atomic.Int64
	Clock    atomic.Int64
	Duplex   atomic.Int64
	Relay    atomic.Int64
}

// NewCatalog builds the fixture catalog. Constructors count into counters.
func NewCatalog(counters *Counters) *catalog.Catalog {
	return catalog.New().MustProvide(
		func() *Greeting {
			return &Greeting{id: counters.Greeting.Add(1)}
		},
		func(g Greeter) *Ticket {
			counters.Ticket.Add(1)
			return &Ticket{greeter: g}
		},
		func() *Alpha {
			counters.Alpha.Add(1)
			return &Alpha{}
		},
		func() *Beta {
			counters.Beta.Add(1)
			return &Beta{}
		},
		func() *RequestSession {
			return &RequestSession{id: counters.Session.Add(1)}
		},
		func() *LightClock {
			return &LightClock{n: counters.Clock.Add(1)}
		},
		func(Missing) *Broken { return &Broken{} },
	)
}

// NewCycleCatalog builds two parts depending on each other.
func NewCycleCatalog() *catalog.Catalog {
	return catalog.New().MustProvide(
		func(b *CycleB) *CycleA { return &CycleA{peer: b} },
		func(p facade.Provider) (*CycleB, error) {
			peer, err := facade.GetExportedValue[Cyclic](p, "a")
			if err != nil {
				return nil, err
			}
			return &CycleB{peer: peer}, nil
		},
	)
}

// Plain and Other are exported together by the multi-contract fixtures.
type Plain interface{ Plain() int64 }

// Other is the second contract of Duplex and Relay.
type Other interface{ Other() int64 }

// Duplex is shared and has two contracts but no own identity, so it binds
// through a hidden master.
type Duplex struct {
	_ classic.Export[Plain] `name:"duplex"`
	_ classic.Export[Other] `name:"duplex"`

	id int64
}

func (d *Duplex) Plain() int64 { return d.id }
func (d *Duplex) Other() int64 { return d.id }

// Relay is non-shared with two contracts: both aliases forward to a
// transient master.
type Relay struct {
	_ light.Export[Plain] `name:"relay"`
	_ light.Export[Other] `name:"relay"`

	id int64
}

func (r *Relay) Plain() int64 { return r.id }
func (r *Relay) Other() int64 { return r.id }

// NewMasterCatalog builds the multi-contract fixtures.
func NewMasterCatalog(counters *Counters) *catalog.Catalog {
	return catalog.New().MustProvide(
		func() *Duplex { return &Duplex{id: counters.Duplex.Add(1)} },
		func() *Relay { return &Relay{id: counters.Relay.Add(1)} },
	)
}

// Stateless is non-shared and made of marker fields only.
type Stateless struct {
	_ light.Export[Plain] `name:"stateless"`
	_ light.Export[Other] `name:"stateless"`
}

func (*Stateless) Plain() int64 { return 0 }
func (*Stateless) Other() int64 { return 0 }

// Left and Right are exported by two shared parts needing each other.
type Left interface{ Left() }

// Right is the other end of the Left/Right cycle.
type Right interface{ Right() }

type PartL struct {
	_ classic.Export[Left]

	right Right
}

func (*PartL) Left() {}

type PartR struct {
	_ classic.Export[Right]

	left Left
}

func (*PartR) Right() {}

// NewCrossCycleCatalog builds PartL and PartR. Each constructor pauses
// before resolving its peer so two goroutines entering from opposite ends
// both hold their own instance under construction.
func NewCrossCycleCatalog(pause time.Duration) *catalog.Catalog {
	return catalog.New().MustProvide(
		func(p facade.Provider) (*PartL, error) {
			time.Sleep(pause)
			r, err := facade.GetExportedValue[Right](p)
			if err != nil {
				return nil, err
			}
			return &PartL{right: r}, nil
		},
		func(p facade.Provider) (*PartR, error) {
			time.Sleep(pause)
			l, err := facade.GetExportedValue[Left](p)
			if err != nil {
				return nil, err
			}
			return &PartR{left: l}, nil
		},
	)
}
