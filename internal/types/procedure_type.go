package types

// ProcedureType is static seed data describing one supported diagnostic
// procedure. Seeded at migration time; never written afterwards.
type ProcedureType struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	DisplayName   string        `gorm:"column:display_name;not null" json:"display_name"`
	ProcedureName ProcedureKind `gorm:"column:procedure_name;not null;uniqueIndex" json:"procedure_name"`
}

func (ProcedureType) TableName() string { return "procedure_type" }

// SeedProcedureTypes returns the canonical seed rows.
func SeedProcedureTypes() []ProcedureType {
	return []ProcedureType{
		{ID: 1, DisplayName: "Blitz", ProcedureName: KindBlitz},
		{ID: 2, DisplayName: "Blitz Index", ProcedureName: KindBlitzIndex},
		{ID: 3, DisplayName: "Blitz Cache", ProcedureName: KindBlitzCache},
	}
}
