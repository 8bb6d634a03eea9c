package reader_test

import (
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	"github.com/kbukum/exportkit/catalog"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/metadata"
	"github.com/kbukum/exportkit/reader"
)

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

func readOne(t *testing.T, typ reflect.Type, opts ...reader.Option) metadata.ExportRecord {
	t.Helper()
	recs, err := reader.New(opts...).Read([]reflect.Type{typ})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	return recs[0]
}

func TestRead_FamilyDefaults(t *testing.T) {
	tests := []struct {
		name     string
		typ      reflect.Type
		shared   bool
		boundary string
	}{
		{"classic default shared", typeOf[*FileLogger](), true, ""},
		{"classic NonShared policy", typeOf[*NonSharedLogger](), false, ""},
		{"light default non-shared", typeOf[*LightDefault](), false, ""},
		{"light Shared with boundary", typeOf[*LightShared](), true, "request"},
		{"light explicit NonShared", typeOf[*LightExplicitNonShared](), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := readOne(t, tt.typ)
			if rec.IsShared() != tt.shared {
				t.Errorf("IsShared = %v, want %v", rec.IsShared(), tt.shared)
			}
			if rec.SharingBoundary() != tt.boundary {
				t.Errorf("boundary = %q, want %q", rec.SharingBoundary(), tt.boundary)
			}
		})
	}
}

func TestRead_Contracts(t *testing.T) {
	rec := readOne(t, typeOf[*FileLogger]())
	got := rec.ContractList()
	want := []metadata.Contract{
		{Type: typeOf[*FileLogger]()},
		{Type: typeOf[Logger]()},
		{Type: typeOf[Logger](), Name: "X"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("contracts = %v, want %v", got, want)
	}
	if _, ok := rec.Contracts()[0].TryGetValue(metadata.ContractTypeKey); ok {
		t.Error("own identity entry must not carry ContractType")
	}
	for i, v := range rec.Contracts() {
		if d, _ := v.GetValue("Display"); d != "File logger" {
			t.Errorf("entry %d: expected ExportMetadata on every entry, got %v", i, d)
		}
	}
}

func TestRead_MetadataRoundTrip(t *testing.T) {
	rec := readOne(t, typeOf[*Toolbar]())
	v := rec.Contracts()[0]

	want := map[string]any{
		metadata.ContractNameKey: "toolbar",
		metadata.ContractTypeKey: typeOf[View](),
		"Region":                 "Main",
		"Order":                  2,
		"Roles":                  []string{"admin", "ops"},
		"Level":                  LevelHigh,
		"Kind":                   typeOf[Toolbar](),
		"Weights":                [2]uint8{3, 4},
		"Timeout":                1500 * time.Millisecond,
		"Priority":               float32(0.5),
		"Enabled":                true,
	}
	for key, expected := range want {
		got, err := v.GetValue(key)
		if err != nil {
			t.Errorf("%s: %v", key, err)
			continue
		}
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("%s = %#v, want %#v", key, got, expected)
		}
	}
	if len(v.Keys()) != len(want) {
		t.Errorf("unexpected keys %v", v.Keys())
	}
}

func TestRead_TypeResolverByQualifiedName(t *testing.T) {
	type local struct {
		_ ViewExport `kind:"github.com/kbukum/exportkit/reader_test.FileLogger"`
	}
	rec := readOne(t, typeOf[local](), reader.WithTypes(typeOf[FileLogger]()))
	if got, _ := rec.Contracts()[0].GetValue("Kind"); got != typeOf[FileLogger]() {
		t.Errorf("expected FileLogger type, got %v", got)
	}
}

func TestRead_SkipsUnmarkedAndRepeated(t *testing.T) {
	recs, err := reader.New().Read([]reflect.Type{
		typeOf[*Plain](), typeOf[int](), nil,
		typeOf[*FileLogger](), typeOf[*FileLogger](), typeOf[*LightDefault](),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ImplementationType() != typeOf[*FileLogger]() || recs[1].ImplementationType() != typeOf[*LightDefault]() {
		t.Error("records must follow input order")
	}
}

func TestRead_IgnoresOtherFamily(t *testing.T) {
	rec := readOne(t, typeOf[*Mixed]())
	if !rec.IsShared() {
		t.Error("light Shared marker must be ignored, classic default applies")
	}
	if len(rec.Contracts()) != 1 {
		t.Errorf("light export must be ignored, got %d contracts", len(rec.Contracts()))
	}
}

func TestRead_EmbeddedMarker(t *testing.T) {
	rec := readOne(t, typeOf[*EmbeddedMarker]())
	if c := rec.ContractList()[0]; c.Type != typeOf[*EmbeddedMarker]() {
		t.Errorf("expected own identity, got %v", c)
	}
}

func TestRead_InitMarker(t *testing.T) {
	rec := readOne(t, typeOf[*Checked]())
	if got, _ := rec.Contracts()[0].GetValue("Region"); got != "Side" {
		t.Errorf("expected Side, got %v", got)
	}
	_, err := reader.New().Read([]reflect.Type{typeOf[*Unchecked]()})
	if !stderrors.Is(err, errors.ErrInvalidDeclaration) {
		t.Errorf("expected INVALID_DECLARATION, got %v", err)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want error
	}{
		{"duplicate contract", typeOf[*Duplicate](), errors.ErrDuplicateContract},
		{"two policies", typeOf[*TwoPolicies](), errors.ErrInvalidDeclaration},
		{"light conflict", typeOf[*LightConflict](), errors.ErrInvalidDeclaration},
		{"bad int", typeOf[*BadInt](), errors.ErrMetadataConversion},
		{"overflow", typeOf[*Overflow](), errors.ErrMetadataConversion},
		{"array length", typeOf[*WrongArrayLength](), errors.ErrMetadataConversion},
		{"unknown enum", typeOf[*UnknownEnum](), errors.ErrMetadataConversion},
		{"unknown type", typeOf[*UnknownType](), errors.ErrMetadataConversion},
		{"unknown property", typeOf[*UnknownProperty](), errors.ErrMetadataConversion},
		{"map property", typeOf[*MapProperty](), errors.ErrMetadataConversion},
		{"nested collection", typeOf[*NestedProperty](), errors.ErrMetadataConversion},
		{"reserved property", typeOf[*ReservedProperty](), errors.ErrInvalidDeclaration},
		{"metadata collides with property", typeOf[*MetadataCollision](), errors.ErrInvalidDeclaration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.New().Read([]reflect.Type{tt.typ})
			if !stderrors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRead_ContinueOnError(t *testing.T) {
	types := []reflect.Type{typeOf[*BadInt](), typeOf[*FileLogger](), typeOf[*Duplicate]()}

	if recs, err := reader.New().Read(types); err == nil || recs != nil {
		t.Fatalf("fail-fast reader must stop: %v %v", recs, err)
	}

	recs, err := reader.New(reader.WithFailFast(false)).Read(types)
	if len(recs) != 1 || recs[0].ImplementationType() != typeOf[*FileLogger]() {
		t.Fatalf("expected the valid record only, got %d", len(recs))
	}
	if !stderrors.Is(err, errors.ErrMetadataConversion) || !stderrors.Is(err, errors.ErrDuplicateContract) {
		t.Errorf("expected both failures joined, got %v", err)
	}
}

func TestReadCatalog(t *testing.T) {
	c := catalog.New().MustAdd(typeOf[*LightShared](), typeOf[*Plain]())
	recs, err := reader.New().ReadCatalog(c)
	if err != nil || len(recs) != 1 {
		t.Fatalf("unexpected %v %v", recs, err)
	}
}
