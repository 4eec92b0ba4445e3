// Package catalog holds the static per-procedure metadata: which raw
// output columns map onto which canonical record fields, how children
// reference their parent, and how each kind is displayed. It is the
// single source of truth the mapper and the extraction pipeline
// dispatch on; it must stay exhaustive over the three supported kinds.
package catalog

import (
	"fmt"

	"github.com/yungbote/dbhealth-backend/internal/types"
)

// ColumnBinding ties one raw output column to a setter on the concrete
// record type for its kind. Assign fails only when the raw value cannot
// be coerced to the field's type.
type ColumnBinding struct {
	Raw    string
	Field  string
	Assign func(record interface{}, value interface{}) error
}

// Spec is the full static description of one procedure kind.
type Spec struct {
	Kind            types.ProcedureKind
	DisplayName     string
	ProcedureTypeID uint
	NewRecord       func() types.CanonicalRecord
	Bindings        []ColumnBinding
	DisplayColumns  []string
	// ChildFKColumn names the column child detail rows use to reference
	// their parent record; empty for kinds without children.
	ChildFKColumn string
}

var specs = map[types.ProcedureKind]*Spec{
	types.KindBlitz: {
		Kind:            types.KindBlitz,
		DisplayName:     "Blitz",
		ProcedureTypeID: 1,
		NewRecord:       func() types.CanonicalRecord { return &types.FindingRecord{} },
		Bindings: []ColumnBinding{
			{Raw: "Finding", Field: "finding", Assign: func(r, v interface{}) error {
				return assignString(&r.(*types.FindingRecord).Finding, v)
			}},
			{Raw: "Details", Field: "details", Assign: func(r, v interface{}) error {
				return assignString(&r.(*types.FindingRecord).Details, v)
			}},
			{Raw: "Priority", Field: "priority", Assign: func(r, v interface{}) error {
				return assignInt(&r.(*types.FindingRecord).Priority, v)
			}},
		},
		DisplayColumns: []string{"finding", "details", "priority"},
	},
	types.KindBlitzIndex: {
		Kind:            types.KindBlitzIndex,
		DisplayName:     "Blitz Index",
		ProcedureTypeID: 2,
		NewRecord:       func() types.CanonicalRecord { return &types.IndexFindingRecord{} },
		Bindings: []ColumnBinding{
			{Raw: "Finding", Field: "finding", Assign: func(r, v interface{}) error {
				return assignString(&r.(*types.IndexFindingRecord).Finding, v)
			}},
			{Raw: "Details: schema.table.index(indexid)", Field: "details", Assign: func(r, v interface{}) error {
				return assignString(&r.(*types.IndexFindingRecord).Details, v)
			}},
			{Raw: "Priority", Field: "priority", Assign: func(r, v interface{}) error {
				return assignInt(&r.(*types.IndexFindingRecord).Priority, v)
			}},
			{Raw: "More Info", Field: "secondary_command", Assign: func(r, v interface{}) error {
				return assignString(&r.(*types.IndexFindingRecord).SecondaryCommand, v)
			}},
		},
		DisplayColumns: []string{"finding", "details", "priority"},
		ChildFKColumn:  "index_finding_id",
	},
	types.KindBlitzCache: {
		Kind:            types.KindBlitzCache,
		DisplayName:     "Blitz Cache",
		ProcedureTypeID: 3,
		NewRecord:       func() types.CanonicalRecord { return &types.QueryCacheRecord{} },
		Bindings: []ColumnBinding{
			{Raw: "Query Text", Field: "query_text", Assign: func(r, v interface{}) error {
				return assignString(&r.(*types.QueryCacheRecord).QueryText, v)
			}},
			{Raw: "Avg CPU (ms)", Field: "avg_cpu_ms", Assign: func(r, v interface{}) error {
				return assignFloat(&r.(*types.QueryCacheRecord).AvgCPUMS, v)
			}},
			{Raw: "Total CPU (ms)", Field: "total_cpu_ms", Assign: func(r, v interface{}) error {
				return assignFloat(&r.(*types.QueryCacheRecord).TotalCPUMS, v)
			}},
			{Raw: "Warnings", Field: "warnings", Assign: func(r, v interface{}) error {
				return assignString(&r.(*types.QueryCacheRecord).Warnings, v)
			}},
		},
		DisplayColumns: []string{"query_text", "avg_cpu_ms", "total_cpu_ms", "warnings"},
	},
}

// Lookup returns the spec for kind, or ErrUnknownProcedure.
func Lookup(kind types.ProcedureKind) (*Spec, error) {
	spec, ok := specs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownProcedure, kind)
	}
	return spec, nil
}

// KindFromName resolves a canonical procedure name to its kind.
func KindFromName(name string) (types.ProcedureKind, error) {
	kind := types.ProcedureKind(name)
	if _, ok := specs[kind]; !ok {
		return "", fmt.Errorf("%w: %q", types.ErrUnknownProcedure, name)
	}
	return kind, nil
}

// DisplayNameFor maps a UI display name back to its kind.
func DisplayNameFor(display string) (types.ProcedureKind, error) {
	for kind, spec := range specs {
		if spec.DisplayName == display {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: display name %q", types.ErrUnknownProcedure, display)
}
