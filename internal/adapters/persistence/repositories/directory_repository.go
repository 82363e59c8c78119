package repositories

import (
	"context"
	"errors"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/core/domain"

	"gorm.io/gorm"
)

// DirectoryRepository reads the platform-owned customers and
// professionals tables. Read only — this service never writes them.
type DirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// GetCustomer returns a customer within the tenant
func (r *DirectoryRepository) GetCustomer(ctx context.Context, tenantID, id string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	return &customer, err
}

// GetProfessional returns a professional within the tenant
func (r *DirectoryRepository) GetProfessional(ctx context.Context, tenantID, id string) (*models.Professional, error) {
	var professional models.Professional
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&professional).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProfessionalNotFound
	}
	return &professional, err
}
