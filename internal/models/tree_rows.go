package models

// The methods below let folders, files and syllabus sections feed the generic
// tree builder directly.

func (f Folder) NodeID() string     { return f.ID }
func (f Folder) ParentKey() *string { return f.ParentID }
func (f Folder) SortOrder() int     { return f.Ordering }
func (f Folder) SortKey() string    { return f.Name }

func (f File) NodeID() string     { return f.ID }
func (f File) ParentKey() *string { return f.FolderID }
func (f File) SortOrder() int     { return f.Ordering }
func (f File) SortKey() string    { return f.Name }

func (s SyllabusSection) NodeID() string     { return s.ID }
func (s SyllabusSection) ParentKey() *string { return s.ParentID }
func (s SyllabusSection) SortOrder() int     { return s.Ordering }
func (s SyllabusSection) SortKey() string    { return s.Title }
