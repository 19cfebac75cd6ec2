package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhub/studyhub/internal/models"
	apperrors "github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/logger"
)

// FileFlags carries the per-user state shown next to a file in the user tree.
type FileFlags struct {
	Bookmarked   bool
	Completed    bool
	LastOpenedAt *time.Time
}

// ProgressTracker is what the hierarchy needs from the progress store.
type ProgressTracker interface {
	// Flags returns state for every file the user has touched, keyed by file id.
	Flags(ctx context.Context, userID string) (map[string]FileFlags, error)
	// PurgeFile removes all bookmarks and progress rows referencing fileID.
	PurgeFile(ctx context.Context, fileID string) error
}

// ProgressService owns bookmark and progress rows.
type ProgressService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

var _ ProgressTracker = (*ProgressService)(nil)

// NewProgressService constructs a ProgressService.
func NewProgressService(db *gorm.DB) (*ProgressService, error) {
	if db == nil {
		return nil, errors.New("progress service: db is required")
	}
	return &ProgressService{
		db:  db,
		log: logger.WithModule("progress"),
		now: time.Now,
	}, nil
}

// Flags implements ProgressTracker.
func (s *ProgressService) Flags(ctx context.Context, userID string) (map[string]FileFlags, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	flags := make(map[string]FileFlags)
	if userID == "" {
		return flags, nil
	}

	var bookmarks []models.Bookmark
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&bookmarks).Error; err != nil {
		return nil, fmt.Errorf("progress service: load bookmarks: %w", err)
	}
	for _, bookmark := range bookmarks {
		entry := flags[bookmark.FileID]
		entry.Bookmarked = true
		flags[bookmark.FileID] = entry
	}

	var progress []models.FileProgress
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("progress service: load progress: %w", err)
	}
	for _, row := range progress {
		entry := flags[row.FileID]
		entry.Completed = row.Completed
		entry.LastOpenedAt = row.LastOpenedAt
		flags[row.FileID] = entry
	}

	return flags, nil
}

// PurgeFile implements ProgressTracker.
func (s *ProgressService) PurgeFile(ctx context.Context, fileID string) error {
	ctx = ensureContext(ctx)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookmarks := tx.Where("file_id = ?", fileID).Delete(&models.Bookmark{})
		if bookmarks.Error != nil {
			return fmt.Errorf("progress service: purge bookmarks: %w", bookmarks.Error)
		}
		progress := tx.Where("file_id = ?", fileID).Delete(&models.FileProgress{})
		if progress.Error != nil {
			return fmt.Errorf("progress service: purge progress: %w", progress.Error)
		}
		if bookmarks.RowsAffected+progress.RowsAffected > 0 {
			s.log.Debug("purged file progress",
				zap.String("file_id", fileID),
				zap.Int64("bookmarks", bookmarks.RowsAffected),
				zap.Int64("progress", progress.RowsAffected),
			)
		}
		return nil
	})
}

// PurgeUser removes everything recorded for userID.
func (s *ProgressService) PurgeUser(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Bookmark{}).Error; err != nil {
			return fmt.Errorf("progress service: purge user bookmarks: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.FileProgress{}).Error; err != nil {
			return fmt.Errorf("progress service: purge user progress: %w", err)
		}
		return nil
	})
}

// SetBookmark adds or removes a bookmark. Both directions are idempotent.
func (s *ProgressService) SetBookmark(ctx context.Context, userID, fileID string, bookmarked bool) error {
	ctx = ensureContext(ctx)
	if err := s.ensureFile(ctx, fileID); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	if !bookmarked {
		if err := db.Where("user_id = ? AND file_id = ?", userID, fileID).Delete(&models.Bookmark{}).Error; err != nil {
			return fmt.Errorf("progress service: remove bookmark: %w", err)
		}
		return nil
	}

	bookmark := models.Bookmark{UserID: userID, FileID: fileID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "file_id"}},
		DoNothing: true,
	}).Create(&bookmark).Error
	if err != nil {
		return fmt.Errorf("progress service: add bookmark: %w", err)
	}
	return nil
}

// MarkOpened records that the user opened the file now.
func (s *ProgressService) MarkOpened(ctx context.Context, userID, fileID string) (*models.FileProgress, error) {
	now := s.now().UTC()
	return s.upsert(ctx, userID, fileID, map[string]any{"last_opened_at": now}, models.FileProgress{
		LastOpenedAt: &now,
	})
}

// MarkCompleted sets or clears the completed flag, also counting as an open.
func (s *ProgressService) MarkCompleted(ctx context.Context, userID, fileID string, completed bool) (*models.FileProgress, error) {
	now := s.now().UTC()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}
	return s.upsert(ctx, userID, fileID, map[string]any{
		"completed":      completed,
		"completed_at":   completedAt,
		"last_opened_at": now,
	}, models.FileProgress{
		Completed:    completed,
		CompletedAt:  completedAt,
		LastOpenedAt: &now,
	})
}

func (s *ProgressService) upsert(ctx context.Context, userID, fileID string, updates map[string]any, row models.FileProgress) (*models.FileProgress, error) {
	ctx = ensureContext(ctx)
	if err := s.ensureFile(ctx, fileID); err != nil {
		return nil, err
	}

	row.UserID = userID
	row.FileID = fileID
	updates["updated_at"] = s.now()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "file_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("progress service: save progress: %w", err)
	}

	var stored models.FileProgress
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("progress service: reload progress: %w", err)
	}
	return &stored, nil
}

func (s *ProgressService) ensureFile(ctx context.Context, fileID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.File{}).Where("id = ?", fileID).Count(&count).Error; err != nil {
		return fmt.Errorf("progress service: load file: %w", err)
	}
	if count == 0 {
		return apperrors.ErrNotFound.WithMessage("file %s not found", fileID)
	}
	return nil
}
