package models

import "time"

// Bookmark marks a file as saved by a user.
type Bookmark struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_file" json:"userId"`
	FileID string `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_file;index" json:"fileId"`
}

// FileProgress records how far a user got with a file.
type FileProgress struct {
	BaseModel

	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_file" json:"userId"`
	FileID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_file;index" json:"fileId"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	LastOpenedAt *time.Time `json:"lastOpenedAt,omitempty"`
}

// TableName keeps the progress table name stable.
func (FileProgress) TableName() string {
	return "file_progress"
}
