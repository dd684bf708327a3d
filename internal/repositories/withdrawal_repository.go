package repositories

import (
	"errors"
	"fmt"

	"cajero/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type withdrawalRepository struct {
	db *gorm.DB
}

func (r *withdrawalRepository) Create(ticket *models.CardlessWithdrawal) error {
	if err := r.db.Create(ticket).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("failed to create withdrawal ticket: %w", err)
	}
	return nil
}

func (r *withdrawalRepository) FindByFolio(folio string) (*models.CardlessWithdrawal, error) {
	var ticket models.CardlessWithdrawal
	if err := r.db.Where("folio = ?", folio).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal ticket: %w", err)
	}
	return &ticket, nil
}

func (r *withdrawalRepository) FindByFolioForUpdate(folio string) (*models.CardlessWithdrawal, error) {
	var ticket models.CardlessWithdrawal
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("folio = ?", folio).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to lock withdrawal ticket: %w", err)
	}
	return &ticket, nil
}

func (r *withdrawalRepository) Save(ticket *models.CardlessWithdrawal) error {
	if err := r.db.Save(ticket).Error; err != nil {
		return fmt.Errorf("failed to update withdrawal ticket: %w", err)
	}
	return nil
}
