//nolint:dupl
package database

import (
	"context"

	"github.com/40acres/ettawallet/database/models"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	SavePayment(ctx context.Context, payment *models.Payment) error
	GetPayments(ctx context.Context) ([]models.Payment, error)
}

func (d *Database) SavePayment(ctx context.Context, payment *models.Payment) error {
	return d.orm.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(payment).Error
}

func (d *Database) GetPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := d.orm.WithContext(ctx).Order("created_at ASC").Find(&payments).Error

	return payments, err
}
