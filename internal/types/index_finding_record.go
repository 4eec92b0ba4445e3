package types

import (
	"strings"

	"github.com/google/uuid"

	"gorm.io/datatypes"
)

// IndexFindingRecord is one sp_BlitzIndex output row. SecondaryCommand
// carries the follow-up EXEC suggested by the row's "More Info" column;
// the extraction pipeline runs it to populate IndexDetail and
// FindingDetail children and then flips DetailsLoaded.
type IndexFindingRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	RunID            uuid.UUID      `gorm:"type:uuid;column:run_id;not null;index:idx_index_finding_run_ord,unique" json:"run_id"`
	Run              *Run           `gorm:"constraint:OnDelete:CASCADE;foreignKey:RunID;references:ID" json:"run,omitempty"`
	Ordinal          int            `gorm:"column:ordinal;not null;index:idx_index_finding_run_ord,unique" json:"ordinal"`
	Finding          *string        `gorm:"column:finding" json:"finding,omitempty"`
	Details          *string        `gorm:"column:details" json:"details,omitempty"`
	Priority         *int           `gorm:"column:priority" json:"priority,omitempty"`
	SecondaryCommand *string        `gorm:"column:secondary_command" json:"secondary_command,omitempty"`
	DetailsLoaded    bool           `gorm:"column:details_loaded;not null;default:false" json:"details_loaded"`
	Raw              datatypes.JSON `gorm:"column:raw_row" json:"raw_row,omitempty"`
	Analyzed         bool           `gorm:"-" json:"analyzed"`
}

func (IndexFindingRecord) TableName() string { return "index_finding_record" }

func (r *IndexFindingRecord) RecordID() uint             { return r.ID }
func (r *IndexFindingRecord) RecordKind() ProcedureKind  { return KindBlitzIndex }
func (r *IndexFindingRecord) RecordOrdinal() int         { return r.Ordinal }
func (r *IndexFindingRecord) RecordRunID() uuid.UUID     { return r.RunID }
func (r *IndexFindingRecord) RecordRaw() datatypes.JSON  { return r.Raw }
func (r *IndexFindingRecord) RecordAnalyzed() bool       { return r.Analyzed }
func (r *IndexFindingRecord) MarkAnalyzed(analyzed bool) { r.Analyzed = analyzed }

// HasSecondaryCommand reports whether the record carries a runnable
// procedure invocation.
func (r *IndexFindingRecord) HasSecondaryCommand() bool {
	return r.SecondaryCommand != nil &&
		strings.HasPrefix(strings.ToLower(strings.TrimSpace(*r.SecondaryCommand)), "exec")
}
