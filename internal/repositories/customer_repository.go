package repositories

import (
	"errors"
	"fmt"

	"cajero/internal/models"

	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

func (r *customerRepository) FindByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}
