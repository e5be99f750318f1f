//nolint:dupl
package database

import (
	"context"

	"github.com/40acres/ettawallet/database/models"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	SaveInvoice(ctx context.Context, invoice *models.Invoice) error
	DeleteInvoices(ctx context.Context, paymentHashes ...string) error
	GetInvoices(ctx context.Context) ([]models.Invoice, error)
}

func (d *Database) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	return d.orm.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(invoice).Error
}

func (d *Database) DeleteInvoices(ctx context.Context, paymentHashes ...string) error {
	if len(paymentHashes) == 0 {
		return nil
	}

	return d.orm.WithContext(ctx).Where("payment_hash IN ?", paymentHashes).Delete(&models.Invoice{}).Error
}

// GetInvoices returns every stored invoice, oldest first.
func (d *Database) GetInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := d.orm.WithContext(ctx).Order("issued_at ASC, payment_hash ASC").Find(&invoices).Error

	return invoices, err
}
