package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuquery/internal/model"
)

type UploadEventRepository struct {
	db *gorm.DB
}

func NewUploadEventRepository(db *gorm.DB) *UploadEventRepository {
	return &UploadEventRepository{db: db}
}

func (r *UploadEventRepository) Create(event *model.UploadEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create upload event failed: %w", err)
	}
	return nil
}
