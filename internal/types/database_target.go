package types

import (
	"time"
)

// DatabaseTarget is the connection descriptor for one remote database.
// Its id is the addressing key threaded through every run-ledger call.
type DatabaseTarget struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	Host             string    `gorm:"column:host;not null;index:idx_target_endpoint,unique" json:"host"`
	Port             int       `gorm:"column:port;not null;index:idx_target_endpoint,unique" json:"port"`
	User             string    `gorm:"column:user;not null;index:idx_target_endpoint,unique" json:"user"`
	Password         string    `gorm:"column:password;not null" json:"-"`
	Version          *string   `gorm:"column:version" json:"version,omitempty"`
	InstanceMemoryMB *int      `gorm:"column:instance_memory_mb" json:"instance_memory_mb,omitempty"`
	HasProcedures    *bool     `gorm:"column:has_procedures" json:"has_procedures,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (DatabaseTarget) TableName() string { return "database_target" }
