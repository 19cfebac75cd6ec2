package services

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/database/testutil"
)

const driveURL = "https://drive.google.com/file/d/abc123/view"

type hierarchyFixture struct {
	db        *gorm.DB
	orders    *OrderManager
	progress  *ProgressService
	syllabus  *SyllabusService
	hierarchy *HierarchyService
}

func newHierarchyFixture(t *testing.T, opts ...testutil.TestDBOption) *hierarchyFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, append([]testutil.TestDBOption{testutil.WithAutoMigrate()}, opts...)...)

	orders, err := NewOrderManager(db)
	require.NoError(t, err)
	progress, err := NewProgressService(db)
	require.NoError(t, err)
	syllabus, err := NewSyllabusService(db, orders)
	require.NoError(t, err)
	hierarchy, err := NewHierarchyService(db, orders, progress, NewContentURLPolicy(nil), syllabus)
	require.NoError(t, err)

	return &hierarchyFixture{
		db:        db,
		orders:    orders,
		progress:  progress,
		syllabus:  syllabus,
		hierarchy: hierarchy,
	}
}

func (f *hierarchyFixture) folder(t *testing.T, name string, parentID *string) *FolderDTO {
	t.Helper()
	folder, err := f.hierarchy.CreateFolder(context.Background(), FolderInput{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return folder
}

func (f *hierarchyFixture) file(t *testing.T, name string, folderID *string) *FileDTO {
	t.Helper()
	file, err := f.hierarchy.CreateFile(context.Background(), FileInput{
		Name:       name,
		FileType:   "PDF",
		ContentURL: driveURL,
		FolderID:   folderID,
	})
	require.NoError(t, err)
	return file
}

func (f *hierarchyFixture) section(t *testing.T, title string, parentID *string) *SectionDTO {
	t.Helper()
	section, err := f.syllabus.Create(context.Background(), SectionInput{
		Title:    title,
		Content:  "<p>" + title + "</p>",
		ParentID: parentID,
	})
	require.NoError(t, err)
	return section
}

// requireContiguous asserts that the scope is numbered exactly 0..n-1.
func requireContiguous(t *testing.T, db *gorm.DB, kind SiblingKind, scopeID *string) {
	t.Helper()

	spec, err := kind.spec()
	require.NoError(t, err)

	var orderings []int
	require.NoError(t, scoped(db.Table(spec.table), spec, scopeID).Pluck("ordering", &orderings).Error)
	sort.Ints(orderings)
	for i, ordering := range orderings {
		require.Equalf(t, i, ordering, "%s scope %v is not contiguous: %v", kind, scopeID, orderings)
	}
}

func strPtr(s string) *string { return &s }
