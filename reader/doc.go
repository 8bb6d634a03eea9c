// Package reader scans Go types for export markers and materializes them
// into metadata.ExportRecord values.
//
// A marker is a blank or embedded field whose type implements one of the
// marker interfaces. The struct tag of that field is its descriptor: the
// reader creates a fresh marker value, converts every tag value to the type
// of the property it addresses and reads the properties back:
//
//	type ViewExport struct {
//		classic.Export[View]
//		Region string
//		Order  int
//		Roles  []string
//	}
//
//	type Toolbar struct {
//		_ ViewExport `name:"toolbar" region:"Main" order:"2" roles:"admin,ops"`
//	}
//
// yields one contract entry
//
//	ContractType=View ContractName="toolbar" Order=2 Region="Main" Roles=[admin ops]
//
// The marker family (classic or light) is decided by the first export
// marker; markers of the other family on the same type are ignored.
package reader
