package model

import "time"

// UploadEvent is an audit row persisted asynchronously by the upload-event
// worker. It is not part of the upload workflow's success criteria.
type UploadEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"size:128;not null;index" json:"user_email"`
	Filename  string    `gorm:"size:256;not null" json:"filename"`
	Size      int64     `gorm:"not null" json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
