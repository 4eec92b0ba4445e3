package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// ChatRepo stores the analysis conversation attached to one diagnostic
// record. Writes are full replacements, never appends: callers adding a
// turn read the history, extend it and store the whole list back, which
// keeps ordering intact under partial-failure retries.
type ChatRepo interface {
	// GetHistory returns the ordered conversation, or nil when no
	// history was ever stored for the record. Callers use nil (as
	// opposed to an empty slice) to decide whether to trigger the
	// first-time automated analysis.
	GetHistory(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, recordID uint) ([]types.ChatMessage, error)
	StoreHistory(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, recordID uint, turns []types.ChatMessage) error
}

type chatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
	return &chatRepo{
		db:  db,
		log: baseLog.With("repo", "ChatRepo"),
	}
}

func (r *chatRepo) GetHistory(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, recordID uint) ([]types.ChatMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var turns []types.ChatTurn
	err := transaction.WithContext(ctx).
		Where("procedure_name = ? AND record_id = ?", kind, recordID).
		Order("ordinal ASC").
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, nil
	}
	out := make([]types.ChatMessage, len(turns))
	for i, turn := range turns {
		out[i] = types.ChatMessage{Role: turn.Role, Message: turn.Message}
	}
	return out, nil
}

func (r *chatRepo) StoreHistory(ctx context.Context, tx *gorm.DB, kind types.ProcedureKind, recordID uint, turns []types.ChatMessage) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("procedure_name = ? AND record_id = ?", kind, recordID).Delete(&types.ChatTurn{}).Error; err != nil {
			return err
		}
		if len(turns) == 0 {
			return nil
		}
		rows := make([]types.ChatTurn, len(turns))
		for i, turn := range turns {
			rows[i] = types.ChatTurn{
				Kind:     kind,
				RecordID: recordID,
				Ordinal:  i,
				Role:     turn.Role,
				Message:  turn.Message,
			}
		}
		return txx.Create(&rows).Error
	})
}
