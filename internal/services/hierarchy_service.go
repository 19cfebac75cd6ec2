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

	"github.com/studyhub/studyhub/internal/database"
	"github.com/studyhub/studyhub/internal/models"
	"github.com/studyhub/studyhub/internal/tree"
	apperrors "github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/logger"
	"github.com/studyhub/studyhub/pkg/metrics"
)

// ViewerScope selects how the content tree is decorated.
type ViewerScope string

const (
	ScopeAdmin ViewerScope = "admin"
	ScopeUser  ViewerScope = "user"
)

// Viewer identifies who a tree is built for.
type Viewer struct {
	UserID string
	Scope  ViewerScope
}

// FolderDTO is the API representation of a folder.
type FolderDTO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	ParentID    *string        `json:"parentId"`
	Order       int            `json:"order"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// FileDTO is the API representation of a file.
type FileDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	FileType    models.FileType `json:"fileType"`
	ContentURL  string          `json:"contentUrl"`
	FolderID    *string         `json:"folderId"`
	Order       int             `json:"order"`
	OwnerID     *string         `json:"ownerId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FileNode is a file placed in the content tree. The progress fields are only
// set for user-scoped trees.
type FileNode struct {
	FileDTO
	Bookmarked   *bool      `json:"bookmarked,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
	LastOpenedAt *time.Time `json:"lastOpenedAt,omitempty"`
}

// SectionRef points at a syllabus section linked to a folder.
type SectionRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FolderNode is a folder placed in the content tree.
type FolderNode struct {
	FolderDTO
	Children []FolderNode `json:"children"`
	Files    []FileNode   `json:"files"`
	Sections []SectionRef `json:"sections"`
}

// ContentTree is the full folder hierarchy plus files that live at the root.
type ContentTree struct {
	Folders   []FolderNode `json:"folders"`
	RootFiles []FileNode   `json:"rootFiles"`
}

// FolderInput describes a folder to create.
type FolderInput struct {
	Name        string
	Description string
	ParentID    *string
	Metadata    map[string]any
}

// FolderUpdate patches a folder. Nil fields are left alone; ParentID moves the
// folder under another folder and MoveToRoot moves it to the root.
type FolderUpdate struct {
	Name        *string
	Description *string
	Metadata    map[string]any
	ParentID    *string
	MoveToRoot  bool
}

func (u FolderUpdate) moves() bool {
	return u.MoveToRoot || normaliseID(u.ParentID) != nil
}

// FileInput describes a file to create.
type FileInput struct {
	Name        string
	Description string
	FileType    string
	ContentURL  string
	FolderID    *string
	OwnerID     *string
}

// FileUpdate patches a file, following the same move rules as FolderUpdate.
type FileUpdate struct {
	Name        *string
	Description *string
	FileType    *string
	ContentURL  *string
	FolderID    *string
	MoveToRoot  bool
}

func (u FileUpdate) moves() bool {
	return u.MoveToRoot || normaliseID(u.FolderID) != nil
}

// ListFilesOptions filters and paginates the flat file listing.
type ListFilesOptions struct {
	FolderID *string
	Search   string
	Page     int
	PerPage  int
}

// SectionIndex resolves syllabus sections linked to folders.
type SectionIndex interface {
	SectionsByFolder(ctx context.Context) (map[string][]SectionRef, error)
}

// HierarchyService manages the folder and file hierarchy.
type HierarchyService struct {
	db       *gorm.DB
	orders   *OrderManager
	progress ProgressTracker
	urls     *ContentURLPolicy
	sections SectionIndex
	log      *zap.Logger
}

// NewHierarchyService constructs a HierarchyService. Nil collaborators are
// replaced with database-backed defaults.
func NewHierarchyService(db *gorm.DB, orders *OrderManager, progress ProgressTracker, urls *ContentURLPolicy, sections SectionIndex) (*HierarchyService, error) {
	if db == nil {
		return nil, errors.New("hierarchy service: db is required")
	}
	var err error
	if orders == nil {
		if orders, err = NewOrderManager(db); err != nil {
			return nil, err
		}
	}
	if progress == nil {
		if progress, err = NewProgressService(db); err != nil {
			return nil, err
		}
	}
	if urls == nil {
		urls = NewContentURLPolicy(nil)
	}
	if sections == nil {
		if sections, err = NewSyllabusService(db, orders); err != nil {
			return nil, err
		}
	}
	return &HierarchyService{
		db:       db,
		orders:   orders,
		progress: progress,
		urls:     urls,
		sections: sections,
		log:      logger.WithModule("hierarchy"),
	}, nil
}

// ContentURLs exposes the policy used to validate file links.
func (s *HierarchyService) ContentURLs() *ContentURLPolicy {
	return s.urls
}

// CreateFolder appends a new folder to the end of its parent scope.
func (s *HierarchyService) CreateFolder(ctx context.Context, input FolderInput) (dto *FolderDTO, err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("folder", "create", err) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("folder name is required")
	}
	metadata, err := encodeMetadata(input.Metadata)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid folder metadata")
	}

	folder := models.Folder{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ParentID:    normaliseID(input.ParentID),
		Metadata:    metadata,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireFolder(tx, folder.ParentID); err != nil {
			return err
		}
		ordering, err := s.orders.nextOrdering(tx, KindFolder, folder.ParentID)
		if err != nil {
			return err
		}
		folder.Ordering = ordering
		if err := tx.Create(&folder).Error; err != nil {
			return fmt.Errorf("hierarchy service: create folder: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := folderToDTO(folder)
	return &out, nil
}

// UpdateFolder patches a folder. Moving it appends it to the new scope and
// closes the gap it leaves behind; otherwise its order is untouched.
func (s *HierarchyService) UpdateFolder(ctx context.Context, id string, update FolderUpdate) (dto *FolderDTO, err error) {
	ctx = ensureContext(ctx)
	operation := "update"
	if update.moves() {
		operation = "move"
	}
	defer func() { recordMutation("folder", operation, err) }()

	var folder models.Folder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadForUpdate(tx, &folder, id); err != nil {
			return err
		}

		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return apperrors.NewBadRequest("folder name cannot be empty")
			}
			folder.Name = name
		}
		if update.Description != nil {
			folder.Description = strings.TrimSpace(*update.Description)
		}
		if update.Metadata != nil {
			metadata, err := encodeMetadata(update.Metadata)
			if err != nil {
				return apperrors.NewBadRequest("invalid folder metadata")
			}
			folder.Metadata = metadata
		}

		var target *string
		if !update.MoveToRoot {
			target = normaliseID(update.ParentID)
		}
		previous := folder.ParentID
		relocating := update.moves() && !sameID(target, previous)
		if relocating {
			if err := s.checkFolderMove(tx, folder.ID, target); err != nil {
				return err
			}
			ordering, err := s.orders.nextOrdering(tx, KindFolder, target)
			if err != nil {
				return err
			}
			folder.ParentID = target
			folder.Ordering = ordering
		}

		if err := tx.Omit(clause.Associations).Save(&folder).Error; err != nil {
			return fmt.Errorf("hierarchy service: save folder: %w", err)
		}
		if relocating {
			if err := s.orders.compact(tx, KindFolder, previous); err != nil {
				return err
			}
			s.log.Info("folder moved",
				zap.String("folder_id", folder.ID),
				zap.Stringp("from", previous),
				zap.Stringp("to", target),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := folderToDTO(folder)
	return &out, nil
}

// checkFolderMove rejects targets that are missing, the folder itself, or one of its descendants.
func (s *HierarchyService) checkFolderMove(tx *gorm.DB, folderID string, target *string) error {
	if target == nil {
		return nil
	}
	if *target == folderID {
		return apperrors.ErrCycle.WithMessage("folder cannot be its own parent")
	}
	if err := requireFolder(tx, target); err != nil {
		return err
	}

	// Every parent pointer stays locked until commit so a concurrent move
	// cannot close a loop through rows we already walked.
	query := tx.Model(&models.Folder{}).Select("id", "parent_id", "ordering", "name")
	if database.SupportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var folders []models.Folder
	if err := query.Find(&folders).Error; err != nil {
		return fmt.Errorf("hierarchy service: load folders: %w", err)
	}

	if _, inside := tree.Descendants(folders, folderID)[*target]; inside {
		return apperrors.ErrCycle.WithMessage("folder %s is a descendant of %s", *target, folderID)
	}
	return nil
}

// DeleteFolder removes an empty folder, unlinking any syllabus sections that pointed at it.
func (s *HierarchyService) DeleteFolder(ctx context.Context, id string) (err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("folder", "delete", err) }()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folder models.Folder
		if err := loadForUpdate(tx, &folder, id); err != nil {
			return err
		}

		var childFolders, childFiles int64
		if err := tx.Model(&models.Folder{}).Where("parent_id = ?", folder.ID).Count(&childFolders).Error; err != nil {
			return fmt.Errorf("hierarchy service: count sub-folders: %w", err)
		}
		if err := tx.Model(&models.File{}).Where("folder_id = ?", folder.ID).Count(&childFiles).Error; err != nil {
			return fmt.Errorf("hierarchy service: count files: %w", err)
		}
		if childFolders > 0 || childFiles > 0 {
			return apperrors.ErrNotEmpty.WithMessage(
				"folder %q still holds %d sub-folders and %d files", folder.Name, childFolders, childFiles,
			)
		}

		unlinked := tx.Model(&models.SyllabusSection{}).
			Where("folder_id = ?", folder.ID).
			Update("folder_id", nil)
		if unlinked.Error != nil {
			return fmt.Errorf("hierarchy service: unlink sections: %w", unlinked.Error)
		}
		if err := tx.Delete(&models.Folder{}, "id = ?", folder.ID).Error; err != nil {
			return fmt.Errorf("hierarchy service: delete folder: %w", err)
		}
		if err := s.orders.compact(tx, KindFolder, folder.ParentID); err != nil {
			return err
		}

		s.log.Info("folder deleted",
			zap.String("folder_id", folder.ID),
			zap.Int64("unlinked_sections", unlinked.RowsAffected),
		)
		return nil
	})
}

// CreateFile appends a new file to the end of its folder, or of the root files.
func (s *HierarchyService) CreateFile(ctx context.Context, input FileInput) (dto *FileDTO, err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("file", "create", err) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("file name is required")
	}
	fileType, ok := models.ParseFileType(input.FileType)
	if !ok {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unsupported file type %q", input.FileType))
	}
	contentURL := strings.TrimSpace(input.ContentURL)
	if err := s.urls.Validate(contentURL); err != nil {
		return nil, err
	}

	file := models.File{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		FileType:    fileType,
		ContentURL:  contentURL,
		FolderID:    normaliseID(input.FolderID),
		OwnerID:     normaliseID(input.OwnerID),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireFolder(tx, file.FolderID); err != nil {
			return err
		}
		ordering, err := s.orders.nextOrdering(tx, KindFile, file.FolderID)
		if err != nil {
			return err
		}
		file.Ordering = ordering
		if err := tx.Create(&file).Error; err != nil {
			return fmt.Errorf("hierarchy service: create file: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := fileToDTO(file)
	return &out, nil
}

// UpdateFile patches a file, appending it to its new folder when moved.
func (s *HierarchyService) UpdateFile(ctx context.Context, id string, update FileUpdate) (dto *FileDTO, err error) {
	ctx = ensureContext(ctx)
	operation := "update"
	if update.moves() {
		operation = "move"
	}
	defer func() { recordMutation("file", operation, err) }()

	var file models.File
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadForUpdate(tx, &file, id); err != nil {
			return err
		}

		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return apperrors.NewBadRequest("file name cannot be empty")
			}
			file.Name = name
		}
		if update.Description != nil {
			file.Description = strings.TrimSpace(*update.Description)
		}
		if update.FileType != nil {
			fileType, ok := models.ParseFileType(*update.FileType)
			if !ok {
				return apperrors.NewBadRequest(fmt.Sprintf("unsupported file type %q", *update.FileType))
			}
			file.FileType = fileType
		}
		if update.ContentURL != nil {
			contentURL := strings.TrimSpace(*update.ContentURL)
			if err := s.urls.Validate(contentURL); err != nil {
				return err
			}
			file.ContentURL = contentURL
		}

		var target *string
		if !update.MoveToRoot {
			target = normaliseID(update.FolderID)
		}
		previous := file.FolderID
		relocating := update.moves() && !sameID(target, previous)
		if relocating {
			if err := requireFolder(tx, target); err != nil {
				return err
			}
			ordering, err := s.orders.nextOrdering(tx, KindFile, target)
			if err != nil {
				return err
			}
			file.FolderID = target
			file.Ordering = ordering
		}

		if err := tx.Save(&file).Error; err != nil {
			return fmt.Errorf("hierarchy service: save file: %w", err)
		}
		if relocating {
			return s.orders.compact(tx, KindFile, previous)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := fileToDTO(file)
	return &out, nil
}

// DeleteFile removes a file after purging every bookmark and progress row that references it.
func (s *HierarchyService) DeleteFile(ctx context.Context, id string) (err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("file", "delete", err) }()

	if _, err := s.GetFile(ctx, id); err != nil {
		return err
	}
	if err := s.progress.PurgeFile(ctx, id); err != nil {
		return fmt.Errorf("hierarchy service: purge progress: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.File
		if err := loadForUpdate(tx, &file, id); err != nil {
			return err
		}
		if err := tx.Delete(&models.File{}, "id = ?", file.ID).Error; err != nil {
			return fmt.Errorf("hierarchy service: delete file: %w", err)
		}
		return s.orders.compact(tx, KindFile, file.FolderID)
	})
}

// GetFolder returns a single folder.
func (s *HierarchyService) GetFolder(ctx context.Context, id string) (*FolderDTO, error) {
	ctx = ensureContext(ctx)
	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "folder", id)
	}
	out := folderToDTO(folder)
	return &out, nil
}

// GetFile returns a single file.
func (s *HierarchyService) GetFile(ctx context.Context, id string) (*FileDTO, error) {
	ctx = ensureContext(ctx)
	var file models.File
	if err := s.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "file", id)
	}
	out := fileToDTO(file)
	return &out, nil
}

// ListFiles returns files newest first together with the total match count.
func (s *HierarchyService) ListFiles(ctx context.Context, opts ListFilesOptions) ([]FileDTO, int64, error) {
	ctx = ensureContext(ctx)
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 || opts.PerPage > 200 {
		opts.PerPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.File{})
	if folderID := normaliseID(opts.FolderID); folderID != nil {
		query = query.Where("folder_id = ?", *folderID)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("hierarchy service: count files: %w", err)
	}

	var files []models.File
	if err := query.
		Order("created_at DESC").
		Order("id ASC").
		Offset((opts.Page - 1) * opts.PerPage).
		Limit(opts.PerPage).
		Find(&files).Error; err != nil {
		return nil, 0, fmt.Errorf("hierarchy service: list files: %w", err)
	}

	out := make([]FileDTO, 0, len(files))
	for _, file := range files {
		out = append(out, fileToDTO(file))
	}
	return out, total, nil
}

// Tree loads the whole hierarchy and assembles it for viewer. User viewers get
// their progress flags attached to every file once the tree is built.
func (s *HierarchyService) Tree(ctx context.Context, viewer Viewer) (*ContentTree, error) {
	ctx = ensureContext(ctx)
	started := time.Now()
	defer func() {
		metrics.TreeBuildDuration.WithLabelValues("content").Observe(time.Since(started).Seconds())
	}()

	var folders []models.Folder
	if err := s.db.WithContext(ctx).Order("ordering ASC").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("hierarchy service: load folders: %w", err)
	}
	var files []models.File
	if err := s.db.WithContext(ctx).Order("ordering ASC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("hierarchy service: load files: %w", err)
	}
	linked, err := s.sections.SectionsByFolder(ctx)
	if err != nil {
		return nil, err
	}

	reportOrphans(s.log, "folder", tree.Orphans(folders))
	roots := tree.Build(folders)

	known := make(map[string]struct{}, len(folders))
	for _, folder := range folders {
		known[folder.ID] = struct{}{}
	}
	filesByFolder := make(map[string][]models.File)
	var rootFiles []models.File
	var strayFiles []string
	for _, file := range files {
		if file.FolderID == nil {
			rootFiles = append(rootFiles, file)
			continue
		}
		if _, ok := known[*file.FolderID]; !ok {
			strayFiles = append(strayFiles, file.ID)
			rootFiles = append(rootFiles, file)
			continue
		}
		filesByFolder[*file.FolderID] = append(filesByFolder[*file.FolderID], file)
	}
	reportOrphans(s.log, "file", strayFiles)

	result := &ContentTree{
		Folders:   buildFolderNodes(roots, filesByFolder, linked),
		RootFiles: buildFileNodes(rootFiles),
	}

	if viewer.Scope == ScopeUser {
		flags, err := s.progress.Flags(ctx, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("hierarchy service: load progress: %w", err)
		}
		decorateTree(result, flags)
	}
	return result, nil
}

// Reorder rewrites the order of one sibling scope.
func (s *HierarchyService) Reorder(ctx context.Context, kind SiblingKind, scopeID *string, orderedIDs []string) (err error) {
	defer func() { recordMutation(string(kind), "reorder", err) }()
	return s.orders.Reorder(ctx, kind, scopeID, orderedIDs)
}

func buildFolderNodes(nodes []*tree.Node[models.Folder], files map[string][]models.File, sections map[string][]SectionRef) []FolderNode {
	out := make([]FolderNode, 0, len(nodes))
	for _, node := range nodes {
		folder := node.Item
		refs := sections[folder.ID]
		if refs == nil {
			refs = []SectionRef{}
		}
		out = append(out, FolderNode{
			FolderDTO: folderToDTO(folder),
			Children:  buildFolderNodes(node.Children, files, sections),
			Files:     buildFileNodes(files[folder.ID]),
			Sections:  refs,
		})
	}
	return out
}

func buildFileNodes(files []models.File) []FileNode {
	tree.Sort(files)
	out := make([]FileNode, 0, len(files))
	for _, file := range files {
		out = append(out, FileNode{FileDTO: fileToDTO(file)})
	}
	return out
}

func decorateTree(result *ContentTree, flags map[string]FileFlags) {
	decorate := func(files []FileNode) {
		for i := range files {
			state := flags[files[i].ID]
			bookmarked, completed := state.Bookmarked, state.Completed
			files[i].Bookmarked = &bookmarked
			files[i].Completed = &completed
			files[i].LastOpenedAt = state.LastOpenedAt
		}
	}

	var walk func(nodes []FolderNode)
	walk = func(nodes []FolderNode) {
		for i := range nodes {
			decorate(nodes[i].Files)
			walk(nodes[i].Children)
		}
	}
	walk(result.Folders)
	decorate(result.RootFiles)
}

// reportOrphans surfaces rows the tree builder had to promote to the root.
func reportOrphans(log *zap.Logger, kind string, ids []string) {
	if len(ids) == 0 {
		return
	}
	metrics.DanglingNodes.WithLabelValues(kind).Add(float64(len(ids)))
	log.Warn("dangling parent reference, node shown at root",
		zap.String("kind", kind),
		zap.Strings("ids", ids),
	)
}

// requireFolder checks that folderID, when set, names an existing folder and
// locks it for the rest of the transaction.
func requireFolder(tx *gorm.DB, folderID *string) error {
	found, err := lockScope(tx, "folders", folderID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.ErrInvalidParent.WithMessage("folder %s not found", *folderID)
	}
	return nil
}

func loadForUpdate[T any](tx *gorm.DB, dest *T, id string) error {
	query := tx
	if database.SupportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(dest, "id = ?", id).Error; err != nil {
		var entity string
		switch any(dest).(type) {
		case *models.Folder:
			entity = "folder"
		case *models.File:
			entity = "file"
		case *models.SyllabusSection:
			entity = "syllabus section"
		default:
			entity = "record"
		}
		return notFound(err, entity, id)
	}
	return nil
}

func notFound(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound.WithMessage("%s %s not found", entity, id)
	}
	return fmt.Errorf("load %s: %w", entity, err)
}

func folderToDTO(folder models.Folder) FolderDTO {
	return FolderDTO{
		ID:          folder.ID,
		Name:        folder.Name,
		Description: folder.Description,
		ParentID:    folder.ParentID,
		Order:       folder.Ordering,
		Metadata:    decodeMetadata(folder.Metadata),
		CreatedAt:   folder.CreatedAt,
		UpdatedAt:   folder.UpdatedAt,
	}
}

func fileToDTO(file models.File) FileDTO {
	return FileDTO{
		ID:          file.ID,
		Name:        file.Name,
		Description: file.Description,
		FileType:    file.FileType,
		ContentURL:  file.ContentURL,
		FolderID:    file.FolderID,
		Order:       file.Ordering,
		OwnerID:     file.OwnerID,
		CreatedAt:   file.CreatedAt,
		UpdatedAt:   file.UpdatedAt,
	}
}
