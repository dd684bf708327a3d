package repositories

import (
	"fmt"

	"cajero/internal/models"

	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

func (r *transferRepository) Create(transfer *models.Transfer) error {
	if err := r.db.Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer record: %w", err)
	}
	return nil
}

func (r *transferRepository) ListByAccount(number string, limit, offset int) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.Where("source_number = ? OR destination_number = ?", number, number).
		Order("executed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}
