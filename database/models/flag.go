package models

import "time"

// Flag is a simple persisted key-value setting.
type Flag struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null;default:''"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Flag) TableName() string {
	return "flags"
}

const FlagLastNodeID = "last_node_id"

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{&Invoice{}, &Payment{}, &Flag{}}
}
