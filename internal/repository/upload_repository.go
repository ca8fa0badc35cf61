package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuquery/internal/model"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(upload *model.Upload) error {
	if err := r.db.Create(upload).Error; err != nil {
		return fmt.Errorf("create upload failed: %w", err)
	}
	return nil
}

// ListByUserEmail returns every upload owned by the principal, in database
// default order.
func (r *UploadRepository) ListByUserEmail(email string) ([]model.Upload, error) {
	var uploads []model.Upload
	if err := r.db.Where("user_email = ?", email).Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("list uploads failed: %w", err)
	}
	return uploads, nil
}
