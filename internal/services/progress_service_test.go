package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub/internal/models"
	apperrors "github.com/studyhub/studyhub/pkg/errors"
)

func TestProgressBookmarksAreIdempotent(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()
	file := f.file(t, "Notes", nil)

	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", file.ID, true))
	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", file.ID, true))

	var count int64
	require.NoError(t, f.db.Model(&models.Bookmark{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", file.ID, false))
	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", file.ID, false))
	require.NoError(t, f.db.Model(&models.Bookmark{}).Count(&count).Error)
	require.Zero(t, count)

	require.ErrorIs(t, f.progress.SetBookmark(ctx, "user-1", "missing", true), apperrors.ErrNotFound)
}

func TestProgressCompletionLifecycle(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()
	file := f.file(t, "Lecture", nil)

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.progress.now = func() time.Time { return clock }

	opened, err := f.progress.MarkOpened(ctx, "user-1", file.ID)
	require.NoError(t, err)
	require.False(t, opened.Completed)
	require.NotNil(t, opened.LastOpenedAt)

	clock = clock.Add(time.Hour)
	done, err := f.progress.MarkCompleted(ctx, "user-1", file.ID, true)
	require.NoError(t, err)
	require.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	require.Equal(t, opened.ID, done.ID)

	undone, err := f.progress.MarkCompleted(ctx, "user-1", file.ID, false)
	require.NoError(t, err)
	require.False(t, undone.Completed)
	require.Nil(t, undone.CompletedAt)

	flags, err := f.progress.Flags(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, flags[file.ID].Completed)
	require.True(t, flags[file.ID].LastOpenedAt.Equal(clock))

	empty, err := f.progress.Flags(ctx, "user-2")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestProgressPurgeUser(t *testing.T) {
	f := newHierarchyFixture(t)
	ctx := context.Background()
	file := f.file(t, "Lecture", nil)

	require.NoError(t, f.progress.SetBookmark(ctx, "user-1", file.ID, true))
	require.NoError(t, f.progress.SetBookmark(ctx, "user-2", file.ID, true))
	_, err := f.progress.MarkOpened(ctx, "user-1", file.ID)
	require.NoError(t, err)

	require.NoError(t, f.progress.PurgeUser(ctx, "user-1"))

	flags, err := f.progress.Flags(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, flags)
	flags, err = f.progress.Flags(ctx, "user-2")
	require.NoError(t, err)
	require.True(t, flags[file.ID].Bookmarked)
}
