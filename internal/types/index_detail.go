package types

// IndexDetail is one structural index row extracted from the first
// qualifying result set of a per-table sp_BlitzIndex follow-up call.
// Children are fully replaced on every re-extraction.
type IndexDetail struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	IndexFindingID      uint                `gorm:"column:index_finding_id;not null;index" json:"index_finding_id"`
	IndexFinding        *IndexFindingRecord `gorm:"constraint:OnDelete:CASCADE;foreignKey:IndexFindingID;references:ID" json:"-"`
	SchemaObjectIndexID *string             `gorm:"column:schema_object_indexid" json:"schema_object_indexid,omitempty"`
	IndexDefinition     *string             `gorm:"column:index_definition" json:"index_definition,omitempty"`
	SecretColumns       *string             `gorm:"column:secret_columns" json:"secret_columns,omitempty"`
	FillFactor          *int                `gorm:"column:fill_factor" json:"fill_factor,omitempty"`
	UsageSummary        *string             `gorm:"column:usage_summary" json:"usage_summary,omitempty"`
	OpStats             *string             `gorm:"column:op_stats" json:"op_stats,omitempty"`
	SizeSummary         *string             `gorm:"column:size_summary" json:"size_summary,omitempty"`
	CompressionDetail   *string             `gorm:"column:compression_detail" json:"compression_detail,omitempty"`
	LockWaitSummary     *string             `gorm:"column:lock_wait_summary" json:"lock_wait_summary,omitempty"`
	ReferencedByFK      *int                `gorm:"column:referenced_by_fk" json:"referenced_by_fk,omitempty"`
	FKsCoveredByIndex   *int                `gorm:"column:fks_covered_by_index" json:"fks_covered_by_index,omitempty"`
	LastUserSeek        *string             `gorm:"column:last_user_seek" json:"last_user_seek,omitempty"`
	LastUserScan        *string             `gorm:"column:last_user_scan" json:"last_user_scan,omitempty"`
	LastUserLookup      *string             `gorm:"column:last_user_lookup" json:"last_user_lookup,omitempty"`
	LastUserUpdate      *string             `gorm:"column:last_user_update" json:"last_user_update,omitempty"`
	CreateDate          *string             `gorm:"column:create_date" json:"create_date,omitempty"`
	ModifyDate          *string             `gorm:"column:modify_date" json:"modify_date,omitempty"`
	PageLatchWaits      *int                `gorm:"column:page_latch_waits" json:"page_latch_waits,omitempty"`
	PageLatchWaitTime   *string             `gorm:"column:page_latch_wait_time" json:"page_latch_wait_time,omitempty"`
	PageIOLatchWaits    *int                `gorm:"column:page_io_latch_waits" json:"page_io_latch_waits,omitempty"`
	PageIOLatchWaitTime *string             `gorm:"column:page_io_latch_wait_time" json:"page_io_latch_wait_time,omitempty"`
	CreateTSQL          *string             `gorm:"column:create_tsql" json:"create_tsql,omitempty"`
	DropTSQL            *string             `gorm:"column:drop_tsql" json:"drop_tsql,omitempty"`
}

func (IndexDetail) TableName() string { return "index_detail" }
