package database

import (
	"context"
	"fmt"

	"github.com/40acres/ettawallet/database/models"
	"gorm.io/gorm/clause"
)

type FlagRepository interface {
	GetFlag(ctx context.Context, key string) (string, bool, error)
	SetFlag(ctx context.Context, key, value string) error
}

func (d *Database) GetFlag(ctx context.Context, key string) (string, bool, error) {
	var flag models.Flag
	// Find instead of First, a missing flag is not an error.
	result := d.orm.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&flag)
	if result.Error != nil {
		return "", false, fmt.Errorf("failed to read flag %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}

	return flag.Value, true, nil
}

func (d *Database) SetFlag(ctx context.Context, key, value string) error {
	result := d.orm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Flag{Key: key, Value: value})
	if result.Error != nil {
		return fmt.Errorf("failed to write flag %s: %w", key, result.Error)
	}

	return nil
}
