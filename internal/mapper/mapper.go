// Package mapper converts raw diagnostic output rows into canonical
// typed records. Mapping is deterministic: present raw columns are
// copied, absent ones stay null, unknown extras are ignored so newer
// procedure versions keep working. The full raw row is snapshotted
// verbatim for fallback display.
package mapper

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gorm.io/datatypes"

	"github.com/yungbote/dbhealth-backend/internal/catalog"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// MapRow builds the canonical record for one raw row. A malformed row
// (any non-scalar value) returns *types.RowMappingError, which aborts
// the enclosing StoreRun wholesale.
func MapRow(kind types.ProcedureKind, row types.RawRow, ordinal int, runID uuid.UUID) (types.CanonicalRecord, error) {
	spec, err := catalog.Lookup(kind)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeRow(kind, row, ordinal)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.Marshal(normalized)
	if err != nil {
		return nil, &types.RowMappingError{Kind: kind, Ordinal: ordinal, Err: err}
	}

	record := spec.NewRecord()
	for _, binding := range spec.Bindings {
		value, ok := normalized[binding.Raw]
		if !ok {
			continue
		}
		if err := binding.Assign(record, value); err != nil {
			return nil, &types.RowMappingError{Kind: kind, Ordinal: ordinal, Column: binding.Raw, Err: err}
		}
	}

	setMeta(record, ordinal, runID, snapshot)
	return record, nil
}

// normalizeRow validates that every value is a flat scalar and rewrites
// the awkward ones (timestamps, byte blobs) into display-safe strings.
func normalizeRow(kind types.ProcedureKind, row types.RawRow, ordinal int) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(row))
	for column, value := range row {
		normalized, err := normalizeScalar(value)
		if err != nil {
			return nil, &types.RowMappingError{Kind: kind, Ordinal: ordinal, Column: column, Err: err}
		}
		out[column] = normalized
	}
	return out, nil
}

func normalizeScalar(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case []byte:
		return hex.EncodeToString(v), nil
	default:
		return nil, fmt.Errorf("value of type %T is not a flat scalar", value)
	}
}

func setMeta(record types.CanonicalRecord, ordinal int, runID uuid.UUID, snapshot []byte) {
	switch r := record.(type) {
	case *types.FindingRecord:
		r.Ordinal = ordinal
		r.RunID = runID
		r.Raw = datatypes.JSON(snapshot)
	case *types.IndexFindingRecord:
		r.Ordinal = ordinal
		r.RunID = runID
		r.Raw = datatypes.JSON(snapshot)
	case *types.QueryCacheRecord:
		r.Ordinal = ordinal
		r.RunID = runID
		r.Raw = datatypes.JSON(snapshot)
	}
}
