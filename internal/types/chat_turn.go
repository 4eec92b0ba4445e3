package types

// ChatTurn is one turn of the analysis conversation attached to a
// diagnostic record. The whole group for a record is replaced
// atomically on every write; ordinal preserves conversation order.
type ChatTurn struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	Kind     ProcedureKind `gorm:"column:procedure_name;not null;index:idx_chat_record" json:"procedure_name"`
	RecordID uint          `gorm:"column:record_id;not null;index:idx_chat_record" json:"record_id"`
	Ordinal  int           `gorm:"column:ordinal;not null" json:"ordinal"`
	Role     string        `gorm:"column:role;not null" json:"role"`
	Message  string        `gorm:"column:message;not null" json:"message"`
}

func (ChatTurn) TableName() string { return "chat_turn" }

// ChatMessage is the (role, message) pair exchanged with callers of the
// chat store; persistence metadata stays internal.
type ChatMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}
