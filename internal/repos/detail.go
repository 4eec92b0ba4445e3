package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// DetailRepo persists the children a secondary extraction produces for
// one index-finding record. Re-extraction fully replaces both child
// collections; the two collections are independent, so partial success
// across them is acceptable.
type DetailRepo interface {
	// ReplaceForRecord deletes prior children, inserts the given ones
	// and flips the record's details-loaded flag, all in one local
	// transaction.
	ReplaceForRecord(ctx context.Context, tx *gorm.DB, recordID uint, indexes []*types.IndexDetail, findings []*types.FindingDetail) error
	GetIndexDetails(ctx context.Context, tx *gorm.DB, recordID uint) ([]*types.IndexDetail, error)
	GetFindingDetails(ctx context.Context, tx *gorm.DB, recordID uint) ([]*types.FindingDetail, error)
	// ClearForRecord removes all children and resets the flag, used
	// before an explicit reload.
	ClearForRecord(ctx context.Context, tx *gorm.DB, recordID uint) error
}

type detailRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDetailRepo(db *gorm.DB, baseLog *logger.Logger) DetailRepo {
	return &detailRepo{
		db:  db,
		log: baseLog.With("repo", "DetailRepo"),
	}
}

func (r *detailRepo) ReplaceForRecord(ctx context.Context, tx *gorm.DB, recordID uint, indexes []*types.IndexDetail, findings []*types.FindingDetail) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := deleteChildren(txx, recordID); err != nil {
			return err
		}
		for _, detail := range indexes {
			detail.IndexFindingID = recordID
		}
		for _, detail := range findings {
			detail.IndexFindingID = recordID
		}
		if len(indexes) > 0 {
			if err := txx.Create(&indexes).Error; err != nil {
				return err
			}
		}
		if len(findings) > 0 {
			if err := txx.Create(&findings).Error; err != nil {
				return err
			}
		}
		return txx.Model(&types.IndexFindingRecord{}).
			Where("id = ?", recordID).
			Update("details_loaded", true).Error
	})
}

func (r *detailRepo) GetIndexDetails(ctx context.Context, tx *gorm.DB, recordID uint) ([]*types.IndexDetail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.IndexDetail
	err := transaction.WithContext(ctx).
		Where("index_finding_id = ?", recordID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *detailRepo) GetFindingDetails(ctx context.Context, tx *gorm.DB, recordID uint) ([]*types.FindingDetail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.FindingDetail
	err := transaction.WithContext(ctx).
		Where("index_finding_id = ?", recordID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *detailRepo) ClearForRecord(ctx context.Context, tx *gorm.DB, recordID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := deleteChildren(txx, recordID); err != nil {
			return err
		}
		return txx.Model(&types.IndexFindingRecord{}).
			Where("id = ?", recordID).
			Update("details_loaded", false).Error
	})
}

func deleteChildren(txx *gorm.DB, recordID uint) error {
	if err := txx.Where("index_finding_id = ?", recordID).Delete(&types.IndexDetail{}).Error; err != nil {
		return err
	}
	return txx.Where("index_finding_id = ?", recordID).Delete(&types.FindingDetail{}).Error
}
