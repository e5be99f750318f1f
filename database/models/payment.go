package models

import (
	"time"

	"github.com/40acres/ettawallet/lightning"
)

type Payment struct {
	PaymentHash string           `gorm:"primaryKey"`
	Direction   PaymentDirection `gorm:"type:payment_direction;not null"`
	// Snapshot of the invoice at the time it was classified.
	Invoice lightning.Invoice `gorm:"type:text;serializer:json;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
