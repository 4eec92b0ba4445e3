package types

import (
	"time"
)

// Recommendation is an operator-authored remediation attached to
// exactly one diagnostic record. The three nullable foreign keys are
// mutually exclusive; rows cascade away with their parent run.
type Recommendation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Description    string    `gorm:"column:description;not null" json:"description"`
	SQLCommand     *string   `gorm:"column:sql_command" json:"sql_command,omitempty"`
	FindingID      *uint     `gorm:"column:finding_id;index" json:"finding_id,omitempty"`
	IndexFindingID *uint     `gorm:"column:index_finding_id;index" json:"index_finding_id,omitempty"`
	QueryCacheID   *uint     `gorm:"column:query_cache_id;index" json:"query_cache_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (Recommendation) TableName() string { return "recommendation" }

// RecommendationTarget is the tagged union over the three possible
// owners of a recommendation. Exactly one id must be set.
type RecommendationTarget struct {
	FindingID      *uint
	IndexFindingID *uint
	QueryCacheID   *uint
}

// FindingTarget targets a sp_Blitz record.
func FindingTarget(id uint) RecommendationTarget {
	return RecommendationTarget{FindingID: &id}
}

// IndexFindingTarget targets a sp_BlitzIndex record.
func IndexFindingTarget(id uint) RecommendationTarget {
	return RecommendationTarget{IndexFindingID: &id}
}

// QueryCacheTarget targets a sp_BlitzCache record.
func QueryCacheTarget(id uint) RecommendationTarget {
	return RecommendationTarget{QueryCacheID: &id}
}

// Kind validates the mutual-exclusion invariant and returns the kind of
// the targeted record. ErrInvalidTarget when zero or more than one id
// is set.
func (t RecommendationTarget) Kind() (ProcedureKind, error) {
	set := 0
	var kind ProcedureKind
	if t.FindingID != nil {
		set++
		kind = KindBlitz
	}
	if t.IndexFindingID != nil {
		set++
		kind = KindBlitzIndex
	}
	if t.QueryCacheID != nil {
		set++
		kind = KindBlitzCache
	}
	if set != 1 {
		return "", ErrInvalidTarget
	}
	return kind, nil
}
