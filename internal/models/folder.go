package models

import "gorm.io/datatypes"

// Folder groups files and sub-folders into an ordered hierarchy. Ordering is
// unique among folders sharing the same ParentID.
type Folder struct {
	BaseModel

	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description,omitempty"`
	ParentID    *string        `gorm:"type:uuid;index" json:"parentId"`
	Ordering    int            `gorm:"not null;default:0" json:"order"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`

	Children []Folder          `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT" json:"-"`
	Files    []File            `gorm:"foreignKey:FolderID;constraint:OnDelete:RESTRICT" json:"-"`
	Sections []SyllabusSection `gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL" json:"-"`
}
