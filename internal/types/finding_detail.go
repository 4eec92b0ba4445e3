package types

// FindingDetail is one missing-index finding extracted from the second
// qualifying result set of a sp_BlitzIndex follow-up call.
type FindingDetail struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	IndexFindingID      uint                `gorm:"column:index_finding_id;not null;index" json:"index_finding_id"`
	IndexFinding        *IndexFindingRecord `gorm:"constraint:OnDelete:CASCADE;foreignKey:IndexFindingID;references:ID" json:"-"`
	Finding             *string             `gorm:"column:finding" json:"finding,omitempty"`
	URL                 *string             `gorm:"column:url" json:"url,omitempty"`
	EstimatedBenefit    *string             `gorm:"column:estimated_benefit" json:"estimated_benefit,omitempty"`
	MissingIndexRequest *string             `gorm:"column:missing_index_request" json:"missing_index_request,omitempty"`
	EstimatedImpact     *string             `gorm:"column:estimated_impact" json:"estimated_impact,omitempty"`
	CreateTSQL          *string             `gorm:"column:create_tsql" json:"create_tsql,omitempty"`
	SampleQueryPlan     *string             `gorm:"column:sample_query_plan" json:"sample_query_plan,omitempty"`
}

func (FindingDetail) TableName() string { return "finding_detail" }
