package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

type DatabaseTargetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, target *types.DatabaseTarget) (*types.DatabaseTarget, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.DatabaseTarget, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.DatabaseTarget, error)
	// Exists looks a target up by its (host, port, user) endpoint and
	// returns its id, or 0 when unregistered.
	Exists(ctx context.Context, tx *gorm.DB, host string, port int, user string) (uint, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	UpdateServerInfo(ctx context.Context, tx *gorm.DB, id uint, version *string, memoryMB *int) error
	UpdateProcedureStatus(ctx context.Context, tx *gorm.DB, id uint, installed bool) error
}

type databaseTargetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatabaseTargetRepo(db *gorm.DB, baseLog *logger.Logger) DatabaseTargetRepo {
	return &databaseTargetRepo{
		db:  db,
		log: baseLog.With("repo", "DatabaseTargetRepo"),
	}
}

func (r *databaseTargetRepo) Create(ctx context.Context, tx *gorm.DB, target *types.DatabaseTarget) (*types.DatabaseTarget, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(target).Error; err != nil {
		return nil, err
	}
	return target, nil
}

func (r *databaseTargetRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.DatabaseTarget, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var target types.DatabaseTarget
	err := transaction.WithContext(ctx).First(&target, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *databaseTargetRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.DatabaseTarget, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DatabaseTarget
	if err := transaction.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *databaseTargetRepo) Exists(ctx context.Context, tx *gorm.DB, host string, port int, user string) (uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var target types.DatabaseTarget
	err := transaction.WithContext(ctx).
		Where("host = ? AND port = ? AND user = ?", host, port, user).
		Limit(1).
		Find(&target).Error
	if err != nil {
		return 0, err
	}
	return target.ID, nil
}

func (r *databaseTargetRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).Delete(&types.DatabaseTarget{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *databaseTargetRepo) UpdateServerInfo(ctx context.Context, tx *gorm.DB, id uint, version *string, memoryMB *int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.DatabaseTarget{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"version":            version,
			"instance_memory_mb": memoryMB,
		}).Error
}

func (r *databaseTargetRepo) UpdateProcedureStatus(ctx context.Context, tx *gorm.DB, id uint, installed bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.DatabaseTarget{}).
		Where("id = ?", id).
		Update("has_procedures", installed).Error
}
