package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub/internal/services"
	"github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/response"
)

// SyllabusHandler exposes the syllabus outline.
type SyllabusHandler struct {
	svc *services.SyllabusService
}

// NewSyllabusHandler constructs a syllabus handler.
func NewSyllabusHandler(svc *services.SyllabusService) *SyllabusHandler {
	return &SyllabusHandler{svc: svc}
}

// Tree returns the full outline.
func (h *SyllabusHandler) Tree(c *gin.Context) {
	outline, err := h.svc.Tree(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, outline)
}

// Get returns one section.
func (h *SyllabusHandler) Get(c *gin.Context) {
	dto, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// Create adds a section.
func (h *SyllabusHandler) Create(c *gin.Context) {
	var payload createSectionPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	dto, err := h.svc.Create(requestContext(c), services.SectionInput{
		Title:    payload.Title,
		Content:  payload.Content,
		ParentID: payload.ParentID,
		FolderID: payload.FolderID,
		Order:    payload.Order,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// Update edits, moves or repositions a section.
func (h *SyllabusHandler) Update(c *gin.Context) {
	var payload updateSectionPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	dto, err := h.svc.Update(requestContext(c), c.Param("id"), services.SectionUpdate{
		Title:      payload.Title,
		Content:    payload.Content,
		ParentID:   payload.ParentID.Value,
		MoveToRoot: payload.ParentID.toRoot(),
		FolderID:   payload.FolderID.Value,
		Unlink:     payload.FolderID.toRoot(),
		Order:      payload.Order,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// Delete removes a section without children.
func (h *SyllabusHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Link attaches a section to a folder; a null folderId unlinks it.
func (h *SyllabusHandler) Link(c *gin.Context) {
	var payload linkSectionPayload
	if !bindAndValidate(c, &payload) {
		return
	}
	if !payload.FolderID.Set {
		response.Error(c, errors.NewBadRequest("folderId is required; send null to unlink"))
		return
	}

	dto, err := h.svc.Link(requestContext(c), c.Param("id"), payload.FolderID.Value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

type createSectionPayload struct {
	Title    string  `json:"title" validate:"required,notblank,max=200"`
	Content  string  `json:"content" validate:"required,notblank"`
	ParentID *string `json:"parentId"`
	FolderID *string `json:"folderId"`
	Order    *int    `json:"order" validate:"omitempty,min=0"`
}

type updateSectionPayload struct {
	Title    *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Content  *string    `json:"content" validate:"omitempty,notblank"`
	ParentID nullableID `json:"parentId"`
	FolderID nullableID `json:"folderId"`
	Order    *int       `json:"order" validate:"omitempty,min=0"`
}

type linkSectionPayload struct {
	FolderID nullableID `json:"folderId"`
}
