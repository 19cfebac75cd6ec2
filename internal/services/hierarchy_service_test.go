package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/studyhub/studyhub/internal/database/testutil"
	"github.com/studyhub/studyhub/internal/models"
	apperrors "github.com/studyhub/studyhub/pkg/errors"
)

func TestHierarchyEndToEndReorder(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	physics := f.folder(t, "Physics", nil)
	chemistry := f.folder(t, "Chemistry", nil)
	syllabus := f.file(t, "Syllabus.pdf", &physics.ID)

	require.Equal(t, 0, physics.Order)
	require.Equal(t, 1, chemistry.Order)
	require.Equal(t, 0, syllabus.Order)

	require.NoError(t, f.hierarchy.Reorder(ctx, KindFolder, nil, []string{chemistry.ID, physics.ID}))

	content, err := f.hierarchy.Tree(ctx, Viewer{Scope: ScopeAdmin})
	require.NoError(t, err)
	require.Len(t, content.Folders, 2)
	require.Equal(t, "Chemistry", content.Folders[0].Name)
	require.Equal(t, "Physics", content.Folders[1].Name)
	require.Empty(t, content.RootFiles)

	physicsNode := content.Folders[1]
	require.Len(t, physicsNode.Files, 1)
	require.Equal(t, syllabus.ID, physicsNode.Files[0].ID)
	require.Equal(t, 0, physicsNode.Files[0].Order)
	require.Nil(t, physicsNode.Files[0].Bookmarked)
}

func TestCreateAppendsToScope(t *testing.T) {
	f := newHierarchyFixture(t)

	parent := f.folder(t, "Maths", nil)
	for i, name := range []string{"Algebra", "Geometry", "Calculus"} {
		child := f.folder(t, name, &parent.ID)
		require.Equal(t, i, child.Order)
		require.Equal(t, parent.ID, *child.ParentID)
	}
	requireContiguous(t, f.db, KindFolder, &parent.ID)

	first := f.file(t, "Intro.pdf", &parent.ID)
	second := f.file(t, "Outro.pdf", &parent.ID)
	require.Equal(t, 0, first.Order)
	require.Equal(t, 1, second.Order)
}

func TestCreateFolderValidation(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	_, err := f.hierarchy.CreateFolder(ctx, FolderInput{Name: "   "})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.hierarchy.CreateFolder(ctx, FolderInput{Name: "Orphan", ParentID: strPtr("missing")})
	require.ErrorIs(t, err, apperrors.ErrInvalidParent)

	folder, err := f.hierarchy.CreateFolder(ctx, FolderInput{
		Name:     "Biology",
		ParentID: strPtr("  "),
		Metadata: map[string]any{"icon": "leaf"},
	})
	require.NoError(t, err)
	require.Nil(t, folder.ParentID)
	require.Equal(t, "leaf", folder.Metadata["icon"])
}

func TestUpdateFolderRenameKeepsOrder(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	f.folder(t, "A", nil)
	b := f.folder(t, "B", nil)

	name := "Botany"
	desc := "Plants"
	updated, err := f.hierarchy.UpdateFolder(ctx, b.ID, FolderUpdate{Name: &name, Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "Botany", updated.Name)
	require.Equal(t, "Plants", updated.Description)
	require.Equal(t, 1, updated.Order)

	_, err = f.hierarchy.UpdateFolder(ctx, "missing", FolderUpdate{Name: &name})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	blank := " "
	_, err = f.hierarchy.UpdateFolder(ctx, b.ID, FolderUpdate{Name: &blank})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUpdateFolderRejectsCycles(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	a := f.folder(t, "A", nil)
	b := f.folder(t, "B", &a.ID)
	c := f.folder(t, "C", &b.ID)

	_, err := f.hierarchy.UpdateFolder(ctx, a.ID, FolderUpdate{ParentID: &c.ID})
	require.ErrorIs(t, err, apperrors.ErrCycle)

	_, err = f.hierarchy.UpdateFolder(ctx, a.ID, FolderUpdate{ParentID: &a.ID})
	require.ErrorIs(t, err, apperrors.ErrCycle)

	_, err = f.hierarchy.UpdateFolder(ctx, a.ID, FolderUpdate{ParentID: strPtr("missing")})
	require.ErrorIs(t, err, apperrors.ErrInvalidParent)

	reloadedA, err := f.hierarchy.GetFolder(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, reloadedA.ParentID)
	reloadedC, err := f.hierarchy.GetFolder(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, *reloadedC.ParentID)
}

func TestMoveFolderAppendsAndCompacts(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	a := f.folder(t, "A", nil)
	b := f.folder(t, "B", nil)
	c := f.folder(t, "C", nil)
	f.folder(t, "A1", &a.ID)

	moved, err := f.hierarchy.UpdateFolder(ctx, b.ID, FolderUpdate{ParentID: &a.ID})
	require.NoError(t, err)
	require.Equal(t, a.ID, *moved.ParentID)
	require.Equal(t, 1, moved.Order)

	requireContiguous(t, f.db, KindFolder, nil)
	requireContiguous(t, f.db, KindFolder, &a.ID)
	reloadedC, err := f.hierarchy.GetFolder(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloadedC.Order)

	back, err := f.hierarchy.UpdateFolder(ctx, b.ID, FolderUpdate{MoveToRoot: true})
	require.NoError(t, err)
	require.Nil(t, back.ParentID)
	require.Equal(t, 2, back.Order)
	requireContiguous(t, f.db, KindFolder, &a.ID)
}

func TestDeleteFolderGuardsChildren(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	a := f.folder(t, "A", nil)
	b := f.folder(t, "B", &a.ID)

	err := f.hierarchy.DeleteFolder(ctx, a.ID)
	require.ErrorIs(t, err, apperrors.ErrNotEmpty)

	require.NoError(t, f.hierarchy.DeleteFolder(ctx, b.ID))
	require.NoError(t, f.hierarchy.DeleteFolder(ctx, a.ID))

	_, err = f.hierarchy.GetFolder(ctx, a.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	err = f.hierarchy.DeleteFolder(ctx, a.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteFolderWithFilesIsRejected(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	folder := f.folder(t, "Videos", nil)
	file := f.file(t, "Lecture 1", &folder.ID)

	require.ErrorIs(t, f.hierarchy.DeleteFolder(ctx, folder.ID), apperrors.ErrNotEmpty)
	require.NoError(t, f.hierarchy.DeleteFile(ctx, file.ID))
	require.NoError(t, f.hierarchy.DeleteFolder(ctx, folder.ID))
}

func TestDeleteFolderUnlinksSectionsAndCompacts(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	first := f.folder(t, "First", nil)
	second := f.folder(t, "Second", nil)
	section := f.section(t, "Unit 1", nil)
	_, err := f.syllabus.Link(ctx, section.ID, &first.ID)
	require.NoError(t, err)

	require.NoError(t, f.hierarchy.DeleteFolder(ctx, first.ID))

	reloaded, err := f.syllabus.Get(ctx, section.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.FolderID)

	remaining, err := f.hierarchy.GetFolder(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, 0, remaining.Order)
}

func TestCreateFileValidation(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	_, err := f.hierarchy.CreateFile(ctx, FileInput{Name: "x", FileType: "PDF", ContentURL: "https://example.com/x.pdf"})
	require.ErrorIs(t, err, apperrors.ErrInvalidContentURL)

	_, err = f.hierarchy.CreateFile(ctx, FileInput{Name: "x", FileType: "DOCX", ContentURL: driveURL})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.hierarchy.CreateFile(ctx, FileInput{Name: "x", FileType: "video", ContentURL: driveURL, FolderID: strPtr("missing")})
	require.ErrorIs(t, err, apperrors.ErrInvalidParent)

	file, err := f.hierarchy.CreateFile(ctx, FileInput{Name: "x", FileType: "video", ContentURL: driveURL})
	require.NoError(t, err)
	require.Equal(t, models.FileTypeVideo, file.FileType)
	require.Nil(t, file.FolderID)
}

func TestUpdateFileMovesAndValidates(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	source := f.folder(t, "Source", nil)
	target := f.folder(t, "Target", nil)
	first := f.file(t, "One", &source.ID)
	second := f.file(t, "Two", &source.ID)
	f.file(t, "Existing", &target.ID)

	badURL := "ftp://drive.google.com/file"
	_, err := f.hierarchy.UpdateFile(ctx, first.ID, FileUpdate{ContentURL: &badURL})
	require.ErrorIs(t, err, apperrors.ErrInvalidContentURL)

	moved, err := f.hierarchy.UpdateFile(ctx, first.ID, FileUpdate{FolderID: &target.ID})
	require.NoError(t, err)
	require.Equal(t, target.ID, *moved.FolderID)
	require.Equal(t, 1, moved.Order)

	left, err := f.hierarchy.GetFile(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, 0, left.Order)

	toRoot, err := f.hierarchy.UpdateFile(ctx, second.ID, FileUpdate{MoveToRoot: true})
	require.NoError(t, err)
	require.Nil(t, toRoot.FolderID)
	requireContiguous(t, f.db, KindFile, &source.ID)
	requireContiguous(t, f.db, KindFile, &target.ID)

	_, err = f.hierarchy.UpdateFile(ctx, second.ID, FileUpdate{FolderID: strPtr("missing")})
	require.ErrorIs(t, err, apperrors.ErrInvalidParent)
}

type recordingTracker struct {
	purged []string
	err    error
}

func (r *recordingTracker) Flags(context.Context, string) (map[string]FileFlags, error) {
	return map[string]FileFlags{}, nil
}

func (r *recordingTracker) PurgeFile(_ context.Context, fileID string) error {
	r.purged = append(r.purged, fileID)
	return r.err
}

func TestDeleteFilePurgesProgressFirst(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	tracker := &recordingTracker{err: errors.New("progress store offline")}
	svc, err := NewHierarchyService(db, nil, tracker, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	file, err := svc.CreateFile(ctx, FileInput{Name: "Notes", FileType: "PDF", ContentURL: driveURL})
	require.NoError(t, err)

	require.Error(t, svc.DeleteFile(ctx, file.ID))
	require.Equal(t, []string{file.ID}, tracker.purged)
	_, err = svc.GetFile(ctx, file.ID)
	require.NoError(t, err, "file must survive a failed purge")

	tracker.err = nil
	require.NoError(t, svc.DeleteFile(ctx, file.ID))
	_, err = svc.GetFile(ctx, file.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.ErrorIs(t, svc.DeleteFile(ctx, file.ID), apperrors.ErrNotFound)
}

func TestDeleteFileRemovesProgressRows(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	file := f.file(t, "Notes", nil)
	other := f.file(t, "Other", nil)
	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", file.ID, true))
	_, err := f.progress.MarkCompleted(ctx, "user-1", file.ID, true)
	require.NoError(t, err)
	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", other.ID, true))

	require.NoError(t, f.hierarchy.DeleteFile(ctx, file.ID))

	var bookmarks, progress int64
	require.NoError(t, f.db.Model(&models.Bookmark{}).Where("file_id = ?", file.ID).Count(&bookmarks).Error)
	require.NoError(t, f.db.Model(&models.FileProgress{}).Where("file_id = ?", file.ID).Count(&progress).Error)
	require.Zero(t, bookmarks)
	require.Zero(t, progress)

	reloaded, err := f.hierarchy.GetFile(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.Order)
}

func TestTreeDecoratesFilesForUsers(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	folder := f.folder(t, "Physics", nil)
	nested := f.file(t, "Waves.pdf", &folder.ID)
	root := f.file(t, "Welcome.pdf", nil)
	section := f.section(t, "Mechanics", nil)
	_, err := f.syllabus.Link(ctx, section.ID, &folder.ID)
	require.NoError(t, err)

	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", nested.ID, true))
	_, err = f.progress.MarkCompleted(ctx, "user-1", root.ID, true)
	require.NoError(t, err)

	content, err := f.hierarchy.Tree(ctx, Viewer{UserID: "user-1", Scope: ScopeUser})
	require.NoError(t, err)

	require.Len(t, content.Folders, 1)
	node := content.Folders[0]
	require.Equal(t, []SectionRef{{ID: section.ID, Title: "Mechanics"}}, node.Sections)
	require.Len(t, node.Files, 1)
	require.True(t, *node.Files[0].Bookmarked)
	require.False(t, *node.Files[0].Completed)
	require.Nil(t, node.Files[0].LastOpenedAt)

	require.Len(t, content.RootFiles, 1)
	require.False(t, *content.RootFiles[0].Bookmarked)
	require.True(t, *content.RootFiles[0].Completed)
	require.NotNil(t, content.RootFiles[0].LastOpenedAt)

	admin, err := f.hierarchy.Tree(ctx, Viewer{UserID: "user-1", Scope: ScopeAdmin})
	require.NoError(t, err)
	require.Nil(t, admin.RootFiles[0].Bookmarked)
}

func TestTreeEmptyStore(t *testing.T) {
	f := newHierarchyFixture(t)

	content, err := f.hierarchy.Tree(context.Background(), Viewer{Scope: ScopeAdmin})
	require.NoError(t, err)
	require.NotNil(t, content.Folders)
	require.NotNil(t, content.RootFiles)
	require.Empty(t, content.Folders)
}

func TestTreePromotesDanglingFoldersAndWarns(t *testing.T) {
	f := newHierarchyFixture(t, testutil.WithMaxConnections(1))
	ctx := context.Background()

	core, recorded := observer.New(zap.WarnLevel)
	f.hierarchy.log = zap.New(core)

	f.folder(t, "Kept", nil)
	require.NoError(t, f.db.Exec("PRAGMA foreign_keys = OFF").Error)
	stray := models.Folder{Name: "Stray", ParentID: strPtr("deleted-parent")}
	require.NoError(t, f.db.Create(&stray).Error)

	content, err := f.hierarchy.Tree(ctx, Viewer{Scope: ScopeAdmin})
	require.NoError(t, err)
	require.Len(t, content.Folders, 2)

	entries := recorded.FilterMessage("dangling parent reference, node shown at root").All()
	require.Len(t, entries, 1)
	require.Equal(t, "folder", entries[0].ContextMap()["kind"])
}

func TestListFilesPaginates(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	folder := f.folder(t, "Chemistry", nil)
	for _, name := range []string{"Acids", "Bases", "Salts"} {
		f.file(t, name, &folder.ID)
	}
	f.file(t, "Loose", nil)

	files, total, err := f.hierarchy.ListFiles(ctx, ListFilesOptions{PerPage: 2})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, files, 2)

	files, total, err = f.hierarchy.ListFiles(ctx, ListFilesOptions{FolderID: &folder.ID, Search: "sal"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Salts", files[0].Name)
}
