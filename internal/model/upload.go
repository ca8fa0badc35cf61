package model

import "time"

// Upload records one stored document. Rows are write-once: the service never
// updates or deletes them.
type Upload struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"size:256;not null;index:idx_uploads_owner" json:"filename"`
	UserEmail  string    `gorm:"size:128;not null;index:idx_uploads_owner" json:"user_email"`
	UploadTime time.Time `gorm:"autoCreateTime" json:"upload_time"`
}

func (Upload) TableName() string {
	return "uploads"
}
