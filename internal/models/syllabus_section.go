package models

// SyllabusSection is a node of the syllabus outline. It forms its own ordered
// hierarchy and may point at a Folder for cross-navigation; the link carries no
// ownership.
type SyllabusSection struct {
	BaseModel

	Title    string  `gorm:"not null" json:"title"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	ParentID *string `gorm:"type:uuid;index" json:"parentId"`
	FolderID *string `gorm:"type:uuid;index" json:"folderId"`
	Ordering int     `gorm:"not null;default:0" json:"order"`

	Children []SyllabusSection `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT" json:"-"`
}
