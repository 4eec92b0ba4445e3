package types

// ProcedureKind identifies one of the supported diagnostic procedures
// from the First Responder Kit. The value is the canonical procedure
// name as installed on the target server.
type ProcedureKind string

const (
	KindBlitz      ProcedureKind = "sp_Blitz"
	KindBlitzIndex ProcedureKind = "sp_BlitzIndex"
	KindBlitzCache ProcedureKind = "sp_BlitzCache"
)

// AllKinds lists every supported kind in seed order.
func AllKinds() []ProcedureKind {
	return []ProcedureKind{KindBlitz, KindBlitzIndex, KindBlitzCache}
}

func (k ProcedureKind) String() string { return string(k) }

func (k ProcedureKind) Valid() bool {
	switch k {
	case KindBlitz, KindBlitzIndex, KindBlitzCache:
		return true
	}
	return false
}
