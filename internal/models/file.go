package models

import "strings"

// FileType enumerates the content kinds a File can point at.
type FileType string

const (
	FileTypeVideo FileType = "VIDEO"
	FileTypePDF   FileType = "PDF"
)

// ParseFileType normalises user input into a FileType.
func ParseFileType(value string) (FileType, bool) {
	switch FileType(strings.ToUpper(strings.TrimSpace(value))) {
	case FileTypeVideo:
		return FileTypeVideo, true
	case FileTypePDF:
		return FileTypePDF, true
	default:
		return "", false
	}
}

// File is a link to externally hosted content placed inside a folder, or at the
// root when FolderID is nil. Ordering is unique among files sharing a FolderID.
type File struct {
	BaseModel

	Name        string   `gorm:"not null" json:"name"`
	Description string   `json:"description,omitempty"`
	FileType    FileType `gorm:"type:varchar(16);not null" json:"fileType"`
	ContentURL  string   `gorm:"not null" json:"contentUrl"`
	FolderID    *string  `gorm:"type:uuid;index" json:"folderId"`
	Ordering    int      `gorm:"not null;default:0" json:"order"`
	OwnerID     *string  `gorm:"type:uuid;index" json:"ownerId,omitempty"`
}
