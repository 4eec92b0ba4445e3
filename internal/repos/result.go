package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/catalog"
	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/mapper"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// ResultRepo is the run ledger plus the result store: it creates and
// replaces versioned runs per (procedure, target) pair and serves the
// current run's canonical records.
type ResultRepo interface {
	// StoreRun replaces the previous run of (kind, databaseTargetID)
	// wholesale: recommendations, detail children, chat turns, records
	// and the run row all go inside one transaction before the new
	// snapshot is inserted. A single malformed row aborts the whole
	// call with *types.RowMappingError and nothing is written.
	StoreRun(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint, rows []types.RawRow) (*types.Run, error)
	// GetAllRecords returns the current run's records ordered by
	// ordinal, each annotated with the derived analyzed flag.
	GetAllRecords(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) ([]types.CanonicalRecord, error)
	GetRecord(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, ordinal int, databaseTargetID uint) (types.CanonicalRecord, error)
	CurrentRun(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) (*types.Run, error)
	// DeleteResults drops the run and all artifacts for one kind.
	DeleteResults(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) error
	// ClearAll drops every kind's run and artifacts for one target.
	ClearAll(ctx context.Context, tx *gorm.DB, databaseTargetID uint) error
}

type resultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRepo(db *gorm.DB, baseLog *logger.Logger) ResultRepo {
	return &resultRepo{
		db:  db,
		log: baseLog.With("repo", "ResultRepo"),
	}
}

func (r *resultRepo) StoreRun(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint, rows []types.RawRow) (*types.Run, error) {
	spec, err := catalog.Lookup(kind)
	if err != nil {
		return nil, err
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := requireTarget(ctx, transaction, databaseTargetID); err != nil {
		return nil, err
	}

	// Map every row before touching the store so a malformed row can
	// never leave a half-written run behind.
	runID := uuid.New()
	records := make([]types.CanonicalRecord, len(rows))
	for i, row := range rows {
		record, err := mapper.MapRow(kind, row, i, runID)
		if err != nil {
			return nil, err
		}
		records[i] = record
	}

	run := &types.Run{
		ID:               runID,
		ProcedureTypeID:  spec.ProcedureTypeID,
		Kind:             kind,
		DatabaseTargetID: databaseTargetID,
		RanAt:            time.Now().UTC(),
	}

	err = transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := deleteRunArtifacts(txx, kind, databaseTargetID); err != nil {
			return err
		}
		if err := txx.Create(run).Error; err != nil {
			return err
		}
		return insertRecords(txx, kind, records)
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("Stored diagnostic run", "procedure", kind, "database_target_id", databaseTargetID, "records", len(records))
	return run, nil
}

func (r *resultRepo) GetAllRecords(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) ([]types.CanonicalRecord, error) {
	if _, err := catalog.Lookup(kind); err != nil {
		return nil, err
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := requireTarget(ctx, transaction, databaseTargetID); err != nil {
		return nil, err
	}
	run, err := r.CurrentRun(ctx, transaction, kind, databaseTargetID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return []types.CanonicalRecord{}, nil
	}
	records, err := loadRecords(transaction.WithContext(ctx), kind, run.ID)
	if err != nil {
		return nil, err
	}
	if err := annotateAnalyzed(transaction.WithContext(ctx), kind, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *resultRepo) GetRecord(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, ordinal int, databaseTargetID uint) (types.CanonicalRecord, error) {
	records, err := r.GetAllRecords(ctx, tx, kind, databaseTargetID)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.RecordOrdinal() == ordinal {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s ordinal %d", types.ErrRecordNotFound, kind, ordinal)
}

func (r *resultRepo) CurrentRun(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) (*types.Run, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var run types.Run
	err := transaction.WithContext(ctx).
		Where("procedure_name = ? AND database_target_id = ?", kind, databaseTargetID).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *resultRepo) DeleteResults(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) error {
	if _, err := catalog.Lookup(kind); err != nil {
		return err
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		return deleteRunArtifacts(txx, kind, databaseTargetID)
	})
}

func (r *resultRepo) ClearAll(ctx context.Context, tx *gorm.DB, databaseTargetID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		for _, kind := range types.AllKinds() {
			if err := deleteRunArtifacts(txx, kind, databaseTargetID); err != nil {
				return err
			}
		}
		return nil
	})
}

// requireTarget rejects calls addressed to an unregistered database.
func requireTarget(ctx context.Context, tx *gorm.DB, databaseTargetID uint) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&types.DatabaseTarget{}).Where("id = ?", databaseTargetID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", types.ErrUnknownDatabase, databaseTargetID)
	}
	return nil
}

// deleteRunArtifacts removes the previous run of (kind, target) and
// everything hanging off it, children before parents so no dangling
// reference ever exists: recommendations, detail rows, chat turns,
// records, then the run itself.
func deleteRunArtifacts(txx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) error {
	var prev types.Run
	if err := txx.Where("procedure_name = ? AND database_target_id = ?", kind, databaseTargetID).Limit(1).Find(&prev).Error; err != nil {
		return err
	}
	if prev.ID == uuid.Nil {
		return nil
	}

	ids, err := recordIDsForRun(txx, kind, prev.ID)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := txx.Where(recommendationFKColumn(kind)+" IN ?", ids).Delete(&types.Recommendation{}).Error; err != nil {
			return err
		}
		if kind == types.KindBlitzIndex {
			if err := txx.Where("index_finding_id IN ?", ids).Delete(&types.IndexDetail{}).Error; err != nil {
				return err
			}
			if err := txx.Where("index_finding_id IN ?", ids).Delete(&types.FindingDetail{}).Error; err != nil {
				return err
			}
		}
		if err := txx.Where("procedure_name = ? AND record_id IN ?", kind, ids).Delete(&types.ChatTurn{}).Error; err != nil {
			return err
		}
		if err := txx.Where("run_id = ?", prev.ID).Delete(recordModel(kind)).Error; err != nil {
			return err
		}
	}
	return txx.Where("id = ?", prev.ID).Delete(&types.Run{}).Error
}

func recordModel(kind types.ProcedureKind) interface{} {
	switch kind {
	case types.KindBlitz:
		return &types.FindingRecord{}
	case types.KindBlitzIndex:
		return &types.IndexFindingRecord{}
	default:
		return &types.QueryCacheRecord{}
	}
}

func recordTableName(kind types.ProcedureKind) string {
	switch kind {
	case types.KindBlitz:
		return types.FindingRecord{}.TableName()
	case types.KindBlitzIndex:
		return types.IndexFindingRecord{}.TableName()
	default:
		return types.QueryCacheRecord{}.TableName()
	}
}

func recommendationFKColumn(kind types.ProcedureKind) string {
	switch kind {
	case types.KindBlitz:
		return "finding_id"
	case types.KindBlitzIndex:
		return "index_finding_id"
	default:
		return "query_cache_id"
	}
}

func recordIDsForRun(txx *gorm.DB, kind types.ProcedureKind, runID uuid.UUID) ([]uint, error) {
	var ids []uint
	err := txx.Model(recordModel(kind)).Where("run_id = ?", runID).Pluck("id", &ids).Error
	return ids, err
}

func insertRecords(txx *gorm.DB, kind types.ProcedureKind, records []types.CanonicalRecord) error {
	if len(records) == 0 {
		return nil
	}
	switch kind {
	case types.KindBlitz:
		rows := make([]*types.FindingRecord, len(records))
		for i, record := range records {
			rows[i] = record.(*types.FindingRecord)
		}
		return txx.Create(&rows).Error
	case types.KindBlitzIndex:
		rows := make([]*types.IndexFindingRecord, len(records))
		for i, record := range records {
			rows[i] = record.(*types.IndexFindingRecord)
		}
		return txx.Create(&rows).Error
	default:
		rows := make([]*types.QueryCacheRecord, len(records))
		for i, record := range records {
			rows[i] = record.(*types.QueryCacheRecord)
		}
		return txx.Create(&rows).Error
	}
}

func loadRecords(txx *gorm.DB, kind types.ProcedureKind, runID uuid.UUID) ([]types.CanonicalRecord, error) {
	switch kind {
	case types.KindBlitz:
		var rows []*types.FindingRecord
		if err := txx.Where("run_id = ?", runID).Order("ordinal ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]types.CanonicalRecord, len(rows))
		for i, row := range rows {
			out[i] = row
		}
		return out, nil
	case types.KindBlitzIndex:
		var rows []*types.IndexFindingRecord
		if err := txx.Where("run_id = ?", runID).Order("ordinal ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]types.CanonicalRecord, len(rows))
		for i, row := range rows {
			out[i] = row
		}
		return out, nil
	default:
		var rows []*types.QueryCacheRecord
		if err := txx.Where("run_id = ?", runID).Order("ordinal ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]types.CanonicalRecord, len(rows))
		for i, row := range rows {
			out[i] = row
		}
		return out, nil
	}
}

// annotateAnalyzed derives the analyzed flag from chat turn existence;
// it is never stored independently.
func annotateAnalyzed(txx *gorm.DB, kind types.ProcedureKind, records []types.CanonicalRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]uint, len(records))
	for i, record := range records {
		ids[i] = record.RecordID()
	}
	var analyzed []uint
	err := txx.Model(&types.ChatTurn{}).
		Where("procedure_name = ? AND record_id IN ?", kind, ids).
		Distinct("record_id").
		Pluck("record_id", &analyzed).Error
	if err != nil {
		return err
	}
	analyzedSet := make(map[uint]struct{}, len(analyzed))
	for _, id := range analyzed {
		analyzedSet[id] = struct{}{}
	}
	for _, record := range records {
		_, ok := analyzedSet[record.RecordID()]
		record.MarkAnalyzed(ok)
	}
	return nil
}
