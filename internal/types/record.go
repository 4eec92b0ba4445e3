package types

import (
	"github.com/google/uuid"

	"gorm.io/datatypes"
)

// CanonicalRecord is the polymorphic view over the three per-procedure
// record tables. The externally addressable id of a record is its
// ordinal within the current run, not its row id; the row id exists so
// recommendations and chat turns have a stable foreign key.
type CanonicalRecord interface {
	RecordID() uint
	RecordKind() ProcedureKind
	RecordOrdinal() int
	RecordRunID() uuid.UUID
	RecordRaw() datatypes.JSON
	RecordAnalyzed() bool
	MarkAnalyzed(bool)
}
