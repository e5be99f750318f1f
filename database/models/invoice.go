package models

import (
	"time"

	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
)

type Invoice struct {
	PaymentHash    string      `gorm:"primaryKey"`
	PayeePublicKey string      `gorm:"not null;default:''"`
	AmountSats     money.Money `gorm:"not null;default:0"`
	Description    string      `gorm:"not null;default:''"`
	// When the node issued the invoice, expiry counts from here.
	IssuedAt       time.Time `gorm:"not null"`
	ExpirySeconds  int64     `gorm:"not null;default:0"`
	PaymentRequest string    `gorm:"not null;default:''"`
	Settled        bool      `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func NewInvoice(invoice lightning.Invoice) *Invoice {
	return &Invoice{
		PaymentHash:    invoice.PaymentHash,
		PayeePublicKey: invoice.PayeePublicKey,
		AmountSats:     invoice.AmountSats,
		Description:    invoice.Description,
		IssuedAt:       invoice.CreatedAt,
		ExpirySeconds:  invoice.ExpirySeconds,
		PaymentRequest: invoice.PaymentRequest,
		Settled:        invoice.Settled,
	}
}

func (i Invoice) ToLightning() lightning.Invoice {
	return lightning.Invoice{
		PaymentHash:    i.PaymentHash,
		PayeePublicKey: i.PayeePublicKey,
		AmountSats:     i.AmountSats,
		Description:    i.Description,
		CreatedAt:      i.IssuedAt,
		ExpirySeconds:  i.ExpirySeconds,
		PaymentRequest: i.PaymentRequest,
		Settled:        i.Settled,
	}
}
