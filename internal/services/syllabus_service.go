package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhub/studyhub/internal/database"
	"github.com/studyhub/studyhub/internal/models"
	"github.com/studyhub/studyhub/internal/tree"
	apperrors "github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/logger"
	"github.com/studyhub/studyhub/pkg/metrics"
)

// SectionDTO is the API representation of a syllabus section.
type SectionDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ParentID  *string   `json:"parentId"`
	FolderID  *string   `json:"folderId"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SectionNode is a section placed in the syllabus tree.
type SectionNode struct {
	SectionDTO
	Children []SectionNode `json:"children"`
}

// SectionInput describes a section to create. Order, when set, places the
// section at that position instead of appending it.
type SectionInput struct {
	Title    string
	Content  string
	ParentID *string
	FolderID *string
	Order    *int
}

// SectionUpdate patches a section. ParentID/MoveToRoot move it within the
// syllabus; FolderID/Unlink change its folder link.
type SectionUpdate struct {
	Title      *string
	Content    *string
	ParentID   *string
	MoveToRoot bool
	FolderID   *string
	Unlink     bool
	Order      *int
}

func (u SectionUpdate) moves() bool {
	return u.MoveToRoot || normaliseID(u.ParentID) != nil
}

// SyllabusService manages the syllabus outline and its links into the folder hierarchy.
type SyllabusService struct {
	db        *gorm.DB
	orders    *OrderManager
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

var _ SectionIndex = (*SyllabusService)(nil)

// NewSyllabusService constructs a SyllabusService.
func NewSyllabusService(db *gorm.DB, orders *OrderManager) (*SyllabusService, error) {
	if db == nil {
		return nil, errors.New("syllabus service: db is required")
	}
	if orders == nil {
		var err error
		if orders, err = NewOrderManager(db); err != nil {
			return nil, err
		}
	}
	return &SyllabusService{
		db:        db,
		orders:    orders,
		sanitizer: bluemonday.UGCPolicy(),
		log:       logger.WithModule("syllabus"),
	}, nil
}

// Tree returns the syllabus outline.
func (s *SyllabusService) Tree(ctx context.Context) ([]SectionNode, error) {
	ctx = ensureContext(ctx)
	started := time.Now()
	defer func() {
		metrics.TreeBuildDuration.WithLabelValues("syllabus").Observe(time.Since(started).Seconds())
	}()

	sections, err := s.loadSections(ctx)
	if err != nil {
		return nil, err
	}
	reportOrphans(s.log, "section", tree.Orphans(sections))
	return buildSectionNodes(tree.Build(sections)), nil
}

// SectionsByFolder lists, per folder id, the sections linked to it in outline order.
func (s *SyllabusService) SectionsByFolder(ctx context.Context) (map[string][]SectionRef, error) {
	sections, err := s.loadSections(ensureContext(ctx))
	if err != nil {
		return nil, err
	}

	out := make(map[string][]SectionRef)
	for _, section := range tree.Flatten(tree.Build(sections)) {
		if section.FolderID == nil {
			continue
		}
		out[*section.FolderID] = append(out[*section.FolderID], SectionRef{ID: section.ID, Title: section.Title})
	}
	return out, nil
}

// Get returns a single section.
func (s *SyllabusService) Get(ctx context.Context, id string) (*SectionDTO, error) {
	ctx = ensureContext(ctx)
	var section models.SyllabusSection
	if err := s.db.WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "syllabus section", id)
	}
	out := sectionToDTO(section)
	return &out, nil
}

// Create adds a section under its parent.
func (s *SyllabusService) Create(ctx context.Context, input SectionInput) (dto *SectionDTO, err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("section", "create", err) }()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("section title is required")
	}
	content, err := s.sanitize(input.Content)
	if err != nil {
		return nil, err
	}

	section := models.SyllabusSection{
		Title:    title,
		Content:  content,
		ParentID: normaliseID(input.ParentID),
		FolderID: normaliseID(input.FolderID),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSection(tx, section.ParentID); err != nil {
			return err
		}
		if err := requireFolder(tx, section.FolderID); err != nil {
			return err
		}
		ordering, err := s.orders.nextOrdering(tx, KindSection, section.ParentID)
		if err != nil {
			return err
		}
		section.Ordering = ordering
		if err := tx.Create(&section).Error; err != nil {
			return fmt.Errorf("syllabus service: create section: %w", err)
		}
		if input.Order != nil && *input.Order < ordering {
			if err := s.orders.place(tx, KindSection, section.ParentID, section.ID, *input.Order); err != nil {
				return err
			}
		}
		return tx.First(&section, "id = ?", section.ID).Error
	})
	if err != nil {
		return nil, err
	}

	out := sectionToDTO(section)
	return &out, nil
}

// Update patches a section. Moving it appends it to the new parent unless an
// explicit Order is given as well.
func (s *SyllabusService) Update(ctx context.Context, id string, update SectionUpdate) (dto *SectionDTO, err error) {
	ctx = ensureContext(ctx)
	operation := "update"
	if update.moves() {
		operation = "move"
	}
	defer func() { recordMutation("section", operation, err) }()

	var section models.SyllabusSection
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadForUpdate(tx, &section, id); err != nil {
			return err
		}

		if update.Title != nil {
			title := strings.TrimSpace(*update.Title)
			if title == "" {
				return apperrors.NewBadRequest("section title cannot be empty")
			}
			section.Title = title
		}
		if update.Content != nil {
			content, err := s.sanitize(*update.Content)
			if err != nil {
				return err
			}
			section.Content = content
		}
		switch {
		case update.Unlink:
			section.FolderID = nil
		case normaliseID(update.FolderID) != nil:
			folderID := normaliseID(update.FolderID)
			if err := requireFolder(tx, folderID); err != nil {
				return err
			}
			section.FolderID = folderID
		}

		var target *string
		if !update.MoveToRoot {
			target = normaliseID(update.ParentID)
		}
		previous := section.ParentID
		relocating := update.moves() && !sameID(target, previous)
		if relocating {
			if err := s.checkSectionMove(tx, section.ID, target); err != nil {
				return err
			}
			ordering, err := s.orders.nextOrdering(tx, KindSection, target)
			if err != nil {
				return err
			}
			section.ParentID = target
			section.Ordering = ordering
		}

		if err := tx.Omit(clause.Associations).Save(&section).Error; err != nil {
			return fmt.Errorf("syllabus service: save section: %w", err)
		}
		if relocating {
			if err := s.orders.compact(tx, KindSection, previous); err != nil {
				return err
			}
		}
		if update.Order != nil {
			if err := s.orders.place(tx, KindSection, section.ParentID, section.ID, *update.Order); err != nil {
				return err
			}
		}
		return tx.First(&section, "id = ?", section.ID).Error
	})
	if err != nil {
		return nil, err
	}

	out := sectionToDTO(section)
	return &out, nil
}

// Delete removes a section without sub-sections.
func (s *SyllabusService) Delete(ctx context.Context, id string) (err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("section", "delete", err) }()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var section models.SyllabusSection
		if err := loadForUpdate(tx, &section, id); err != nil {
			return err
		}

		var children int64
		if err := tx.Model(&models.SyllabusSection{}).Where("parent_id = ?", section.ID).Count(&children).Error; err != nil {
			return fmt.Errorf("syllabus service: count sub-sections: %w", err)
		}
		if children > 0 {
			return apperrors.ErrNotEmpty.WithMessage("section %q still holds %d sub-sections", section.Title, children)
		}

		if err := tx.Delete(&models.SyllabusSection{}, "id = ?", section.ID).Error; err != nil {
			return fmt.Errorf("syllabus service: delete section: %w", err)
		}
		return s.orders.compact(tx, KindSection, section.ParentID)
	})
}

// Link points a section at a folder, or clears the link when folderID is nil.
// The section's place in the syllabus is not affected.
func (s *SyllabusService) Link(ctx context.Context, sectionID string, folderID *string) (dto *SectionDTO, err error) {
	ctx = ensureContext(ctx)
	folderID = normaliseID(folderID)
	operation := "link"
	if folderID == nil {
		operation = "unlink"
	}
	defer func() { recordMutation("section", operation, err) }()

	var section models.SyllabusSection
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadForUpdate(tx, &section, sectionID); err != nil {
			return err
		}
		if err := requireFolder(tx, folderID); err != nil {
			return err
		}
		if sameID(section.FolderID, folderID) {
			return nil
		}
		section.FolderID = folderID
		if err := tx.Model(&section).Update("folder_id", folderID).Error; err != nil {
			return fmt.Errorf("syllabus service: link section: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("section link changed", zap.String("section_id", sectionID), zap.Stringp("folder_id", folderID))
	out := sectionToDTO(section)
	return &out, nil
}

func (s *SyllabusService) checkSectionMove(tx *gorm.DB, sectionID string, target *string) error {
	if target == nil {
		return nil
	}
	if *target == sectionID {
		return apperrors.ErrCycle.WithMessage("section cannot be its own parent")
	}
	if err := requireSection(tx, target); err != nil {
		return err
	}

	query := tx.Model(&models.SyllabusSection{}).Select("id", "parent_id", "ordering", "title")
	if database.SupportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var sections []models.SyllabusSection
	if err := query.Find(&sections).Error; err != nil {
		return fmt.Errorf("syllabus service: load sections: %w", err)
	}
	if _, inside := tree.Descendants(sections, sectionID)[*target]; inside {
		return apperrors.ErrCycle.WithMessage("section %s is a descendant of %s", *target, sectionID)
	}
	return nil
}

func (s *SyllabusService) loadSections(ctx context.Context) ([]models.SyllabusSection, error) {
	var sections []models.SyllabusSection
	if err := s.db.WithContext(ctx).Order("ordering ASC").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("syllabus service: load sections: %w", err)
	}
	return sections, nil
}

func (s *SyllabusService) sanitize(raw string) (string, error) {
	content := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if content == "" {
		return "", apperrors.NewBadRequest("section content is required")
	}
	return content, nil
}

func requireSection(tx *gorm.DB, sectionID *string) error {
	found, err := lockScope(tx, "syllabus_sections", sectionID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.ErrInvalidParent.WithMessage("syllabus section %s not found", *sectionID)
	}
	return nil
}

func buildSectionNodes(nodes []*tree.Node[models.SyllabusSection]) []SectionNode {
	out := make([]SectionNode, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, SectionNode{
			SectionDTO: sectionToDTO(node.Item),
			Children:   buildSectionNodes(node.Children),
		})
	}
	return out
}

func sectionToDTO(section models.SyllabusSection) SectionDTO {
	return SectionDTO{
		ID:        section.ID,
		Title:     section.Title,
		Content:   section.Content,
		ParentID:  section.ParentID,
		FolderID:  section.FolderID,
		Order:     section.Ordering,
		CreatedAt: section.CreatedAt,
		UpdatedAt: section.UpdatedAt,
	}
}
