package reader

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/fatih/structtag"

	"github.com/kbukum/exportkit/catalog"
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/marker"
	"github.com/kbukum/exportkit/metadata"
)

// nameKey is the tag key carrying the contract name of an export marker.
const nameKey = "name"

// Reader scans types for export declarations.
type Reader struct {
	failFast bool
	conv     *converter
	log      *logger.Logger
}

// New creates a reader. It fails fast unless configured otherwise.
func New(opts ...Option) *Reader {
	r := &Reader{failFast: true, conv: newConverter()}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("reader")
	}
	return r
}

// ReadCatalog reads every part type of c in registration order.
func (r *Reader) ReadCatalog(c *catalog.Catalog) ([]metadata.ExportRecord, error) {
	return r.Read(c.Types())
}

// Read returns one record per exported type, in input order. Types without
// export markers and repeated types are skipped.
func (r *Reader) Read(types []reflect.Type) ([]metadata.ExportRecord, error) {
	r.conv.register(types...)

	records := make([]metadata.ExportRecord, 0, len(types))
	seen := make(map[reflect.Type]struct{}, len(types))
	var errs []error

	for _, t := range types {
		if t == nil {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}

		rec, ok, err := r.readType(t)
		if err != nil {
			r.log.Warn("Export declaration rejected", logger.Merge(logger.ImplFields(t), logger.Fields(logger.FieldError, err.Error())))
			if r.failFast {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		if ok {
			records = append(records, rec)
		}
	}

	r.log.Debug("Types scanned", logger.Fields("types", len(types), logger.FieldRecordCount, len(records)))
	return records, stderrors.Join(errs...)
}

type markerField struct {
	field reflect.StructField
	kind  marker.Kind
}

// readType scans one type. ok is false when it carries no export marker.
func (r *Reader) readType(impl reflect.Type) (rec metadata.ExportRecord, ok bool, err error) {
	st := impl
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return rec, false, nil
	}

	fields := collectMarkers(st)
	firstExport := slices.IndexFunc(fields, func(f markerField) bool { return f.kind == marker.KindExport })
	if firstExport < 0 {
		return rec, false, nil
	}

	fam := reflect.Zero(fields[firstExport].field.Type).Interface().(marker.Marker).MarkerFamily()
	strat, known := strategyFor(fam)
	if !known {
		return rec, false, errors.InvalidDeclaration(impl.String(), fmt.Sprintf("unsupported marker family %s", fam))
	}

	var (
		contracts []metadata.Map
		policies  []marker.Policy
		extra     = metadata.Map{}
	)
	for _, mf := range fields {
		if f := reflect.Zero(mf.field.Type).Interface().(marker.Marker).MarkerFamily(); f != fam {
			r.log.Debug("Ignoring marker of another family", logger.Merge(logger.ImplFields(impl),
				logger.Fields(logger.FieldFamily, f.String(), "marker", mf.field.Type.String())))
			continue
		}

		val, contractName, err := r.materialize(impl, mf)
		if err != nil {
			return rec, false, err
		}
		switch mf.kind {
		case marker.KindExport:
			entry, err := exportEntry(impl, val, contractName)
			if err != nil {
				return rec, false, err
			}
			contracts = append(contracts, entry)
		case marker.KindPolicy:
			policies = append(policies, val.Interface().(marker.Policy))
		case marker.KindMetadata:
			key, value := val.Interface().(marker.Metadata).MetadataEntry()
			if key == "" || key == metadata.ContractTypeKey || key == metadata.ContractNameKey {
				return rec, false, errors.InvalidDeclaration(impl.String(), fmt.Sprintf("invalid metadata name %q", key))
			}
			if _, dup := extra[key]; dup {
				return rec, false, errors.InvalidDeclaration(impl.String(), fmt.Sprintf("metadata %q declared twice", key))
			}
			extra[key] = value
		}
	}

	shared, boundary, err := strat.sharing(impl.String(), policies)
	if err != nil {
		return rec, false, err
	}
	for _, entry := range contracts {
		for k, v := range extra {
			if _, taken := entry[k]; taken {
				return rec, false, errors.InvalidDeclaration(impl.String(),
					fmt.Sprintf("metadata %q collides with an export property", k))
			}
			entry[k] = v
		}
	}

	rec, err = metadata.NewExportRecord(impl, contracts, shared, boundary)
	if err != nil {
		return rec, false, err
	}
	r.log.Debug("Export record read", logger.Merge(logger.ImplFields(impl), logger.Fields(
		logger.FieldFamily, fam.String(), logger.FieldShared, shared, "contracts", len(contracts))))
	return rec, true, nil
}

// collectMarkers returns the blank and embedded marker fields of st in
// declaration order.
func collectMarkers(st reflect.Type) []markerField {
	var out []markerField
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Name != "_" && !f.Anonymous {
			continue
		}
		if k := marker.KindOf(f.Type); k != marker.KindNone {
			out = append(out, markerField{field: f, kind: k})
		}
	}
	return out
}

// materialize creates a marker value from its tag descriptor.
func (r *Reader) materialize(impl reflect.Type, mf markerField) (reflect.Value, string, error) {
	mt := mf.field.Type
	ptr := reflect.New(mt)
	val := ptr.Elem()

	tags, err := structtag.Parse(string(mf.field.Tag))
	if err != nil {
		return val, "", errors.InvalidDeclaration(impl.String(), fmt.Sprintf("malformed tag on %s: %v", mt, err))
	}

	var contractName string
	seen := make(map[string]struct{})
	if tags != nil {
		for _, tag := range tags.Tags() {
			key := strings.ToLower(tag.Key)
			if _, dup := seen[key]; dup {
				return val, "", errors.InvalidDeclaration(impl.String(), fmt.Sprintf("tag key %q repeated on %s", tag.Key, mt))
			}
			seen[key] = struct{}{}

			if mf.kind == marker.KindExport && key == nameKey {
				contractName = tag.Value()
				continue
			}
			if mt.Kind() != reflect.Struct {
				return val, "", errors.MetadataConversion(mt.String(), tag.Key, "marker has no properties")
			}
			prop, found := findProperty(mt, tag.Key)
			if !found {
				return val, "", errors.MetadataConversion(mt.String(), tag.Key, "no such property")
			}
			converted, err := r.conv.convert(tag.Value(), prop.Type)
			if err != nil {
				return val, "", errors.MetadataConversion(mt.String(), prop.Name, err.Error()).WithCause(err)
			}
			val.FieldByIndex(prop.Index).Set(converted)
		}
	}

	if init, ok := ptr.Interface().(marker.Initializer); ok {
		if err := init.InitMarker(); err != nil {
			return val, "", errors.InvalidDeclaration(impl.String(), fmt.Sprintf("%s: %v", mt, err)).WithCause(err)
		}
	}
	return val, contractName, nil
}

// exportEntry reads the properties of a materialized export marker.
func exportEntry(impl reflect.Type, val reflect.Value, contractName string) (metadata.Map, error) {
	entry := metadata.Map{}
	for _, prop := range properties(val.Type()) {
		if prop.Name == metadata.ContractTypeKey || prop.Name == metadata.ContractNameKey {
			return nil, errors.InvalidDeclaration(impl.String(), fmt.Sprintf("%s declares reserved property %s", val.Type(), prop.Name))
		}
		entry[prop.Name] = val.FieldByIndex(prop.Index).Interface()
	}

	if ct := val.Interface().(marker.Export).ExportedContract(); ct != nil && ct != impl {
		entry[metadata.ContractTypeKey] = ct
	}
	if contractName != "" {
		entry[metadata.ContractNameKey] = contractName
	}
	return entry, nil
}

// properties returns the exported, non-embedded fields of a marker struct
// sorted by name.
func properties(mt reflect.Type) []reflect.StructField {
	if mt.Kind() != reflect.Struct {
		return nil
	}
	var out []reflect.StructField
	for i := 0; i < mt.NumField(); i++ {
		f := mt.Field(i)
		if f.IsExported() && !f.Anonymous {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b reflect.StructField) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func findProperty(mt reflect.Type, key string) (reflect.StructField, bool) {
	for _, p := range properties(mt) {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return reflect.StructField{}, false
}
