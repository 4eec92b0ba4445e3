package types

import (
	"github.com/google/uuid"

	"gorm.io/datatypes"
)

// QueryCacheRecord is one sp_BlitzCache output row.
type QueryCacheRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	RunID      uuid.UUID      `gorm:"type:uuid;column:run_id;not null;index:idx_query_cache_run_ord,unique" json:"run_id"`
	Run        *Run           `gorm:"constraint:OnDelete:CASCADE;foreignKey:RunID;references:ID" json:"run,omitempty"`
	Ordinal    int            `gorm:"column:ordinal;not null;index:idx_query_cache_run_ord,unique" json:"ordinal"`
	QueryText  *string        `gorm:"column:query_text" json:"query_text,omitempty"`
	AvgCPUMS   *float64       `gorm:"column:avg_cpu_ms" json:"avg_cpu_ms,omitempty"`
	TotalCPUMS *float64       `gorm:"column:total_cpu_ms" json:"total_cpu_ms,omitempty"`
	Warnings   *string        `gorm:"column:warnings" json:"warnings,omitempty"`
	Raw        datatypes.JSON `gorm:"column:raw_row" json:"raw_row,omitempty"`
	Analyzed   bool           `gorm:"-" json:"analyzed"`
}

func (QueryCacheRecord) TableName() string { return "query_cache_record" }

func (r *QueryCacheRecord) RecordID() uint             { return r.ID }
func (r *QueryCacheRecord) RecordKind() ProcedureKind  { return KindBlitzCache }
func (r *QueryCacheRecord) RecordOrdinal() int         { return r.Ordinal }
func (r *QueryCacheRecord) RecordRunID() uuid.UUID     { return r.RunID }
func (r *QueryCacheRecord) RecordRaw() datatypes.JSON  { return r.Raw }
func (r *QueryCacheRecord) RecordAnalyzed() bool       { return r.Analyzed }
func (r *QueryCacheRecord) MarkAnalyzed(analyzed bool) { r.Analyzed = analyzed }
