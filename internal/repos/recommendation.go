package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/catalog"
	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// RecommendationRepo stores operator remediations. Rows carry no
// direct database reference, so database-scoped reads resolve
// transitively through the owning record's run.
type RecommendationRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, description string, sqlCommand *string, target types.RecommendationTarget) (uint, error)
	Get(ctx context.Context, tx *gorm.DB, id uint) (*types.Recommendation, error)
	// Delete reports false, not an error, when the id is absent.
	Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ListForDatabase(ctx context.Context, tx *gorm.DB, databaseTargetID uint) ([]*types.Recommendation, error)
	ListForProcedure(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) ([]*types.Recommendation, error)
	ListForRecord(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, recordID uint) ([]*types.Recommendation, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{
		db:  db,
		log: baseLog.With("repo", "RecommendationRepo"),
	}
}

func (r *recommendationRepo) Insert(ctx context.Context, tx *gorm.DB, description string, sqlCommand *string, target types.RecommendationTarget) (uint, error) {
	if _, err := target.Kind(); err != nil {
		return 0, err
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rec := types.Recommendation{
		Description:    description,
		SQLCommand:     sqlCommand,
		FindingID:      target.FindingID,
		IndexFindingID: target.IndexFindingID,
		QueryCacheID:   target.QueryCacheID,
	}
	if err := transaction.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (r *recommendationRepo) Get(ctx context.Context, tx *gorm.DB, id uint) (*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rec types.Recommendation
	err := transaction.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).Delete(&types.Recommendation{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *recommendationRepo) ListForDatabase(ctx context.Context, tx *gorm.DB, databaseTargetID uint) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Recommendation
	err := transaction.WithContext(ctx).
		Where(
			"finding_id IN (?) OR index_finding_id IN (?) OR query_cache_id IN (?)",
			recordIDsForDatabase(transaction, types.KindBlitz, databaseTargetID),
			recordIDsForDatabase(transaction, types.KindBlitzIndex, databaseTargetID),
			recordIDsForDatabase(transaction, types.KindBlitzCache, databaseTargetID),
		).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recommendationRepo) ListForProcedure(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) ([]*types.Recommendation, error) {
	if _, err := catalog.Lookup(kind); err != nil {
		return nil, err
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Recommendation
	err := transaction.WithContext(ctx).
		Where(recommendationFKColumn(kind)+" IN (?)", recordIDsForDatabase(transaction, kind, databaseTargetID)).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recommendationRepo) ListForRecord(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, recordID uint) ([]*types.Recommendation, error) {
	if _, err := catalog.Lookup(kind); err != nil {
		return nil, err
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Recommendation
	err := transaction.WithContext(ctx).
		Where(recommendationFKColumn(kind)+" = ?", recordID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// recordIDsForDatabase builds the subquery selecting record ids whose
// run belongs to the given database target.
func recordIDsForDatabase(tx *gorm.DB, kind types.ProcedureKind, databaseTargetID uint) *gorm.DB {
	table := recordTableName(kind)
	return tx.Session(&gorm.Session{NewDB: true}).
		Table(table).
		Select(table+".id").
		Joins("JOIN run ON run.id = "+table+".run_id").
		Where("run.database_target_id = ?", databaseTargetID)
}
