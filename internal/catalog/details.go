package catalog

import (
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// DetailBinding ties a raw column of a follow-up result set to a setter
// on an IndexDetail or FindingDetail row.
type DetailBinding struct {
	Raw    string
	Assign func(detail interface{}, value interface{}) error
}

// IndexDetailBindings maps the first qualifying result set of a
// sp_BlitzIndex follow-up call (structural index rows) onto IndexDetail
// fields. The two foreign-key columns arrive as "True"/"False" strings
// and are coerced to 0/1.
var IndexDetailBindings = []DetailBinding{
	{Raw: "Details: db_schema.table.index(indexid)", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).SchemaObjectIndexID, v)
	}},
	{Raw: "Definition: [Property] ColumnName {datatype maxbytes}", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).IndexDefinition, v)
	}},
	{Raw: "Secret Columns", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).SecretColumns, v)
	}},
	{Raw: "Fillfactor", Assign: func(d, v interface{}) error {
		return assignInt(&d.(*types.IndexDetail).FillFactor, v)
	}},
	{Raw: "Usage Stats", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).UsageSummary, v)
	}},
	{Raw: "Op Stats", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).OpStats, v)
	}},
	{Raw: "Size", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).SizeSummary, v)
	}},
	{Raw: "Compression Type", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).CompressionDetail, v)
	}},
	{Raw: "Lock Waits", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).LockWaitSummary, v)
	}},
	{Raw: "Referenced by FK?", Assign: func(d, v interface{}) error {
		return assignBoolInt(&d.(*types.IndexDetail).ReferencedByFK, v)
	}},
	{Raw: "FK Covered by Index?", Assign: func(d, v interface{}) error {
		return assignBoolInt(&d.(*types.IndexDetail).FKsCoveredByIndex, v)
	}},
	{Raw: "Last User Seek", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).LastUserSeek, v)
	}},
	{Raw: "Last User Scan", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).LastUserScan, v)
	}},
	{Raw: "Last User Lookup", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).LastUserLookup, v)
	}},
	{Raw: "Last User Write", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).LastUserUpdate, v)
	}},
	{Raw: "Created", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).CreateDate, v)
	}},
	{Raw: "Last Modified", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).ModifyDate, v)
	}},
	{Raw: "Page Latch Wait Count", Assign: func(d, v interface{}) error {
		return assignInt(&d.(*types.IndexDetail).PageLatchWaits, v)
	}},
	{Raw: "Page Latch Wait Time (D:H:M:S)", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).PageLatchWaitTime, v)
	}},
	{Raw: "Page IO Latch Wait Count", Assign: func(d, v interface{}) error {
		return assignInt(&d.(*types.IndexDetail).PageIOLatchWaits, v)
	}},
	{Raw: "Page IO Latch Wait Time (D:H:M:S)", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).PageIOLatchWaitTime, v)
	}},
	{Raw: "Create TSQL", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).CreateTSQL, v)
	}},
	{Raw: "Drop TSQL", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.IndexDetail).DropTSQL, v)
	}},
}

// FindingDetailBindings maps the second qualifying result set
// (missing-index findings) onto FindingDetail fields. Direct copy, no
// coercion beyond stringification.
var FindingDetailBindings = []DetailBinding{
	{Raw: "Finding", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.FindingDetail).Finding, v)
	}},
	{Raw: "URL", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.FindingDetail).URL, v)
	}},
	{Raw: "Estimated Benefit", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.FindingDetail).EstimatedBenefit, v)
	}},
	{Raw: "Missing Index Request", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.FindingDetail).MissingIndexRequest, v)
	}},
	{Raw: "Estimated Impact", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.FindingDetail).EstimatedImpact, v)
	}},
	{Raw: "Create TSQL", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.FindingDetail).CreateTSQL, v)
	}},
	{Raw: "Sample Query Plan", Assign: func(d, v interface{}) error {
		return assignString(&d.(*types.FindingDetail).SampleQueryPlan, v)
	}},
}
