package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/studyhub/studyhub/internal/middleware"
	"github.com/studyhub/studyhub/internal/services"
	"github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/response"
	appValidator "github.com/studyhub/studyhub/pkg/validator"
)

// ContentHandler exposes the folder and file hierarchy.
type ContentHandler struct {
	svc *services.HierarchyService
}

// NewContentHandler constructs a content handler and registers the content_url
// validation rule against the service's host policy.
func NewContentHandler(svc *services.HierarchyService) (*ContentHandler, error) {
	if svc == nil {
		return nil, errors.ErrInternalServer.WithMessage("hierarchy service is required")
	}
	policy := svc.ContentURLs()
	err := appValidator.RegisterValidation(contentURLTag, func(fl validator.FieldLevel) bool {
		return policy.Allowed(fl.Field().String())
	})
	if err != nil {
		return nil, err
	}
	return &ContentHandler{svc: svc}, nil
}

// Tree returns the folder hierarchy with root-level files. scope=admin is
// reserved for administrators; the default user scope adds the caller's
// bookmark and progress flags.
func (h *ContentHandler) Tree(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	scope := services.ViewerScope(strings.ToLower(strings.TrimSpace(c.DefaultQuery("scope", string(services.ScopeUser)))))
	switch scope {
	case services.ScopeAdmin:
		if !caller.IsAdmin() {
			response.Error(c, errors.ErrForbidden)
			return
		}
	case services.ScopeUser:
	default:
		response.Error(c, errors.NewBadRequest("scope must be one of: admin, user"))
		return
	}

	tree, err := h.svc.Tree(requestContext(c), services.Viewer{UserID: caller.UserID, Scope: scope})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tree)
}

// GetFolder returns a single folder.
func (h *ContentHandler) GetFolder(c *gin.Context) {
	dto, err := h.svc.GetFolder(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// CreateFolder appends a folder to its parent.
func (h *ContentHandler) CreateFolder(c *gin.Context) {
	var payload createFolderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	dto, err := h.svc.CreateFolder(requestContext(c), services.FolderInput{
		Name:        payload.Name,
		Description: payload.Description,
		ParentID:    payload.ParentID,
		Metadata:    payload.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// UpdateFolder renames, annotates or moves a folder.
func (h *ContentHandler) UpdateFolder(c *gin.Context) {
	var payload updateFolderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	dto, err := h.svc.UpdateFolder(requestContext(c), c.Param("id"), services.FolderUpdate{
		Name:        payload.Name,
		Description: payload.Description,
		Metadata:    payload.Metadata,
		ParentID:    payload.ParentID.Value,
		MoveToRoot:  payload.ParentID.toRoot(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// DeleteFolder removes an empty folder.
func (h *ContentHandler) DeleteFolder(c *gin.Context) {
	if err := h.svc.DeleteFolder(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListFiles returns a flat, paginated file listing.
func (h *ContentHandler) ListFiles(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "perPage", 50)

	files, total, err := h.svc.ListFiles(requestContext(c), services.ListFilesOptions{
		FolderID: optionalQuery(c, "folderId"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	response.SuccessWithMeta(c, http.StatusOK, files, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// GetFile returns a single file.
func (h *ContentHandler) GetFile(c *gin.Context) {
	dto, err := h.svc.GetFile(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// CreateFile appends a file to a folder or the root.
func (h *ContentHandler) CreateFile(c *gin.Context) {
	var payload createFilePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.FileInput{
		Name:        payload.Name,
		Description: payload.Description,
		FileType:    payload.FileType,
		ContentURL:  payload.ContentURL,
		FolderID:    payload.FolderID,
	}
	if userID := c.GetString(middleware.CtxUserIDKey); userID != "" {
		input.OwnerID = &userID
	}

	dto, err := h.svc.CreateFile(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// UpdateFile patches or moves a file.
func (h *ContentHandler) UpdateFile(c *gin.Context) {
	var payload updateFilePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	dto, err := h.svc.UpdateFile(requestContext(c), c.Param("id"), services.FileUpdate{
		Name:        payload.Name,
		Description: payload.Description,
		FileType:    payload.FileType,
		ContentURL:  payload.ContentURL,
		FolderID:    payload.FolderID.Value,
		MoveToRoot:  payload.FolderID.toRoot(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// DeleteFile removes a file together with its bookmarks and progress.
func (h *ContentHandler) DeleteFile(c *gin.Context) {
	if err := h.svc.DeleteFile(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Reorder applies a full sibling ordering for one scope. Besides scopeId and
// orderedIds the body names the sibling kind (folder, file or section), since
// folders and files under the same parent are ordered independently and one
// endpoint serves all three.
func (h *ContentHandler) Reorder(c *gin.Context) {
	var payload reorderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	kind, ok := services.ParseSiblingKind(payload.Kind)
	if !ok {
		response.Error(c, errors.NewBadRequest("kind must be one of: folder, file, section"))
		return
	}

	if err := h.svc.Reorder(requestContext(c), kind, payload.ScopeID, payload.OrderedIDs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"kind":       kind,
		"scopeId":    payload.ScopeID,
		"orderedIds": payload.OrderedIDs,
	})
}

type createFolderPayload struct {
	Name        string         `json:"name" validate:"required,notblank,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	ParentID    *string        `json:"parentId"`
	Metadata    map[string]any `json:"metadata"`
}

type updateFolderPayload struct {
	Name        *string        `json:"name" validate:"omitempty,notblank,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=2000"`
	Metadata    map[string]any `json:"metadata"`
	ParentID    nullableID     `json:"parentId"`
}

type createFilePayload struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	FileType    string  `json:"fileType" validate:"required,notblank"`
	ContentURL  string  `json:"contentUrl" validate:"required,content_url"`
	FolderID    *string `json:"folderId"`
}

type updateFilePayload struct {
	Name        *string    `json:"name" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	FileType    *string    `json:"fileType" validate:"omitempty,notblank"`
	ContentURL  *string    `json:"contentUrl" validate:"omitempty,content_url"`
	FolderID    nullableID `json:"folderId"`
}

type reorderPayload struct {
	Kind       string   `json:"kind" validate:"required,oneof=folder file section"`
	ScopeID    *string  `json:"scopeId"`
	OrderedIDs []string `json:"orderedIds" validate:"required,dive,required"`
}
