package reader_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/kbukum/exportkit/marker/classic"
	"github.com/kbukum/exportkit/marker/light"
)

type Logger interface{ Log(string) }

type View interface{ Render() string }

type Level int

const (
	LevelLow Level = iota
	LevelHigh
)

func (l *Level) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "low":
		*l = LevelLow
	case "high":
		*l = LevelHigh
	default:
		return fmt.Errorf("unknown level %q", b)
	}
	return nil
}

// ViewExport is a custom classic export marker carrying metadata.
type ViewExport struct {
	classic.Export[View]
	Region   string
	Order    int
	Roles    []string
	Level    Level
	Kind     reflect.Type
	Weights  [2]uint8
	Timeout  time.Duration
	Priority float32
	Enabled  bool
}

// checkedExport rejects an empty region once its properties are set.
type checkedExport struct {
	classic.Export[View]
	Region string
}

func (c *checkedExport) InitMarker() error {
	if c.Region == "" {
		return errors.New("region is required")
	}
	return nil
}

type badPropertyExport struct {
	classic.Export[View]
	Options map[string]string
}

type reservedPropertyExport struct {
	classic.Export[View]
	ContractName string
}

type nestedExport struct {
	classic.Export[View]
	Grid [][]int
}

// --- classic parts ---

type FileLogger struct {
	_ classic.ExportSelf
	_ classic.Export[Logger]
	_ classic.Export[Logger] `name:"X"`
	_ classic.ExportMetadata `name:"Display" value:"File logger"`
}

func (*FileLogger) Log(string) {}

type NonSharedLogger struct {
	_ classic.Export[Logger]
	_ classic.PartCreationPolicy `policy:"NonShared"`
}

func (*NonSharedLogger) Log(string) {}

type Toolbar struct {
	_ ViewExport `name:"toolbar" region:"Main" order:"2" roles:"admin, ops" level:"high" kind:"reader_test.Toolbar" weights:"3,4" timeout:"1500ms" priority:"0.5" enabled:"true"`
}

func (*Toolbar) Render() string { return "toolbar" }

type Mixed struct {
	_ classic.Export[Logger]
	_ light.Shared
	_ light.Export[View]
}

func (*Mixed) Log(string)     {}
func (*Mixed) Render() string { return "mixed" }

type Plain struct{ Name string }

type Duplicate struct {
	_ classic.Export[Logger] `name:"a"`
	_ classic.Export[Logger] `name:"a"`
}

func (*Duplicate) Log(string) {}

type MetadataCollision struct {
	_ checkedExport          `region:"Main"`
	_ classic.ExportMetadata `name:"Region" value:"Side"`
}

func (*MetadataCollision) Render() string { return "collision" }

type TwoPolicies struct {
	_ classic.ExportSelf
	_ classic.PartCreationPolicy `policy:"Shared"`
	_ classic.PartCreationPolicy `policy:"NonShared"`
}

type BadInt struct {
	_ ViewExport `order:"many"`
}

type Overflow struct {
	_ ViewExport `weights:"300,1"`
}

type WrongArrayLength struct {
	_ ViewExport `weights:"1,2,3"`
}

type UnknownEnum struct {
	_ ViewExport `level:"medium"`
}

type UnknownType struct {
	_ ViewExport `kind:"nowhere.Missing"`
}

type UnknownProperty struct {
	_ ViewExport `colour:"red"`
}

type MapProperty struct {
	_ badPropertyExport `options:"a"`
}

type ReservedProperty struct {
	_ reservedPropertyExport
}

type NestedProperty struct {
	_ nestedExport `grid:"1"`
}

type Unchecked struct {
	_ checkedExport
}

type Checked struct {
	_ checkedExport `region:"Side"`
}

func (*Checked) Render() string { return "checked" }

// --- light parts ---

type LightDefault struct {
	_ light.Export[Logger]
}

func (*LightDefault) Log(string) {}

type LightShared struct {
	_ light.ExportSelf
	_ light.Export[Logger]
	_ light.Shared `boundary:"request"`
}

func (*LightShared) Log(string) {}

type LightExplicitNonShared struct {
	_ light.Export[Logger]
	_ light.NonShared
}

func (*LightExplicitNonShared) Log(string) {}

type LightConflict struct {
	_ light.Export[Logger]
	_ light.Shared
	_ light.NonShared
}

type EmbeddedMarker struct {
	classic.ExportSelf
	Value int
}
