package types

import (
	"time"

	"github.com/google/uuid"
)

// Run is one snapshot execution of a diagnostic procedure against one
// database target. At most one run's artifacts are retained per
// (procedure, target) pair; StoreRun replaces the previous one
// wholesale inside a single transaction.
type Run struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProcedureTypeID  uint            `gorm:"column:procedure_type_id;not null" json:"procedure_type_id"`
	ProcedureType    *ProcedureType  `gorm:"foreignKey:ProcedureTypeID;references:ID" json:"procedure_type,omitempty"`
	Kind             ProcedureKind   `gorm:"column:procedure_name;not null;index:idx_run_pair,unique" json:"procedure_name"`
	DatabaseTargetID uint            `gorm:"column:database_target_id;not null;index:idx_run_pair,unique" json:"database_target_id"`
	DatabaseTarget   *DatabaseTarget `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatabaseTargetID;references:ID" json:"database_target,omitempty"`
	RanAt            time.Time       `gorm:"column:ran_at;not null" json:"ran_at"`
}

func (Run) TableName() string { return "run" }
