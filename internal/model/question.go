package model

import "time"

// Question is one answered question against a stored document. Immutable
// after insert; read back in reverse-chronological order per owner+filename.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"size:128;not null;index:idx_qna_owner" json:"user_email"`
	Filename  string    `gorm:"size:256;not null;index:idx_qna_owner" json:"filename"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	AskedAt   time.Time `gorm:"autoCreateTime" json:"asked_at"`
}

func (Question) TableName() string {
	return "qna_history"
}
