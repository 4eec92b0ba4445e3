package types

import (
	"github.com/google/uuid"

	"gorm.io/datatypes"
)

// FindingRecord is one sp_Blitz output row. Immutable once created;
// superseded wholesale by the next run of the same pair.
type FindingRecord struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	RunID    uuid.UUID      `gorm:"type:uuid;column:run_id;not null;index:idx_finding_run_ord,unique" json:"run_id"`
	Run      *Run           `gorm:"constraint:OnDelete:CASCADE;foreignKey:RunID;references:ID" json:"run,omitempty"`
	Ordinal  int            `gorm:"column:ordinal;not null;index:idx_finding_run_ord,unique" json:"ordinal"`
	Finding  *string        `gorm:"column:finding" json:"finding,omitempty"`
	Details  *string        `gorm:"column:details" json:"details,omitempty"`
	Priority *int           `gorm:"column:priority" json:"priority,omitempty"`
	Raw      datatypes.JSON `gorm:"column:raw_row" json:"raw_row,omitempty"`
	Analyzed bool           `gorm:"-" json:"analyzed"`
}

func (FindingRecord) TableName() string { return "finding_record" }

func (r *FindingRecord) RecordID() uint               { return r.ID }
func (r *FindingRecord) RecordKind() ProcedureKind    { return KindBlitz }
func (r *FindingRecord) RecordOrdinal() int           { return r.Ordinal }
func (r *FindingRecord) RecordRunID() uuid.UUID       { return r.RunID }
func (r *FindingRecord) RecordRaw() datatypes.JSON    { return r.Raw }
func (r *FindingRecord) RecordAnalyzed() bool         { return r.Analyzed }
func (r *FindingRecord) MarkAnalyzed(analyzed bool)   { r.Analyzed = analyzed }
