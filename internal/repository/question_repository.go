package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuquery/internal/model"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("create question failed: %w", err)
	}
	return nil
}

// ListByUserEmailAndFilename returns the Q&A history for one document,
// newest first. A filename the principal never uploaded yields an empty
// list, not an error.
func (r *QuestionRepository) ListByUserEmailAndFilename(email, filename string) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.
		Where("user_email = ? AND filename = ?", email, filename).
		Order("asked_at DESC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list qna history failed: %w", err)
	}
	return questions, nil
}
