package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/studyhub/studyhub/pkg/errors"
)

func TestSyllabusTreeOrdersByOrderThenTitle(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	unit := f.section(t, "Unit 1", nil)
	f.section(t, "Unit 2", nil)
	b := f.section(t, "Kinematics", &unit.ID)
	a := f.section(t, "Dynamics", &unit.ID)

	require.NoError(t, f.orders.Reorder(ctx, KindSection, &unit.ID, []string{a.ID, b.ID}))

	outline, err := f.syllabus.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, outline, 2)
	require.Equal(t, "Unit 1", outline[0].Title)
	require.Len(t, outline[0].Children, 2)
	require.Equal(t, "Dynamics", outline[0].Children[0].Title)
	require.Equal(t, "Kinematics", outline[0].Children[1].Title)
	require.NotNil(t, outline[1].Children)
}

func TestSyllabusCreateSanitisesAndPlaces(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	first := f.section(t, "First", nil)
	second := f.section(t, "Second", nil)

	position := 0
	inserted, err := f.syllabus.Create(ctx, SectionInput{
		Title:   "Preface",
		Content: `<p onclick="steal()">Read me</p><script>alert(1)</script>`,
		Order:   &position,
	})
	require.NoError(t, err)
	require.Equal(t, 0, inserted.Order)
	require.Equal(t, "<p>Read me</p>", inserted.Content)

	reloadedFirst, err := f.syllabus.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloadedFirst.Order)
	reloadedSecond, err := f.syllabus.Get(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, 2, reloadedSecond.Order)
	requireContiguous(t, f.db, KindSection, nil)

	_, err = f.syllabus.Create(ctx, SectionInput{Title: "Empty", Content: "<script></script>"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.syllabus.Create(ctx, SectionInput{Title: "Lost", Content: "x", ParentID: strPtr("missing")})
	require.ErrorIs(t, err, apperrors.ErrInvalidParent)

	_, err = f.syllabus.Create(ctx, SectionInput{Title: "Lost", Content: "x", FolderID: strPtr("missing")})
	require.ErrorIs(t, err, apperrors.ErrInvalidParent)
}

func TestSyllabusUpdateMovesAndRejectsCycles(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	parent := f.section(t, "Parent", nil)
	child := f.section(t, "Child", &parent.ID)
	sibling := f.section(t, "Sibling", nil)

	_, err := f.syllabus.Update(ctx, parent.ID, SectionUpdate{ParentID: &child.ID})
	require.ErrorIs(t, err, apperrors.ErrCycle)
	_, err = f.syllabus.Update(ctx, parent.ID, SectionUpdate{ParentID: &parent.ID})
	require.ErrorIs(t, err, apperrors.ErrCycle)

	moved, err := f.syllabus.Update(ctx, sibling.ID, SectionUpdate{ParentID: &parent.ID})
	require.NoError(t, err)
	require.Equal(t, parent.ID, *moved.ParentID)
	require.Equal(t, 1, moved.Order)
	requireContiguous(t, f.db, KindSection, nil)

	top := 0
	title := "Renamed"
	placed, err := f.syllabus.Update(ctx, sibling.ID, SectionUpdate{Title: &title, Order: &top})
	require.NoError(t, err)
	require.Equal(t, "Renamed", placed.Title)
	require.Equal(t, 0, placed.Order)
	requireContiguous(t, f.db, KindSection, &parent.ID)

	_, err = f.syllabus.Update(ctx, "missing", SectionUpdate{Title: &title})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSyllabusDeleteGuardsChildren(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	parent := f.section(t, "Parent", nil)
	child := f.section(t, "Child", &parent.ID)
	last := f.section(t, "Last", nil)

	require.ErrorIs(t, f.syllabus.Delete(ctx, parent.ID), apperrors.ErrNotEmpty)
	require.NoError(t, f.syllabus.Delete(ctx, child.ID))
	require.NoError(t, f.syllabus.Delete(ctx, parent.ID))

	reloaded, err := f.syllabus.Get(ctx, last.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.Order)
}

func TestSyllabusLinkAndUnlink(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()

	folder := f.folder(t, "Physics", nil)
	first := f.section(t, "Optics", nil)
	second := f.section(t, "Waves", nil)

	linked, err := f.syllabus.Link(ctx, second.ID, &folder.ID)
	require.NoError(t, err)
	require.Equal(t, folder.ID, *linked.FolderID)
	require.Equal(t, 1, linked.Order)
	_, err = f.syllabus.Link(ctx, first.ID, &folder.ID)
	require.NoError(t, err)

	refs, err := f.syllabus.SectionsByFolder(ctx)
	require.NoError(t, err)
	require.Equal(t, []SectionRef{{ID: first.ID, Title: "Optics"}, {ID: second.ID, Title: "Waves"}}, refs[folder.ID])

	unlinked, err := f.syllabus.Link(ctx, second.ID, nil)
	require.NoError(t, err)
	require.Nil(t, unlinked.FolderID)

	_, err = f.syllabus.Link(ctx, first.ID, strPtr("missing"))
	require.ErrorIs(t, err, apperrors.ErrInvalidParent)
	_, err = f.syllabus.Link(ctx, "missing", &folder.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	outline, err := f.syllabus.Tree(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Optics", "Waves"}, []string{outline[0].Title, outline[1].Title})
}
