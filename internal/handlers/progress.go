package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub/internal/middleware"
	"github.com/studyhub/studyhub/internal/models"
	"github.com/studyhub/studyhub/internal/services"
	"github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/response"
)

// ProgressHandler records per-user bookmarks and completion.
type ProgressHandler struct {
	svc *services.ProgressService
}

// NewProgressHandler constructs a progress handler.
func NewProgressHandler(svc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// SetBookmark adds or removes the caller's bookmark on a file.
func (h *ProgressHandler) SetBookmark(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload bookmarkPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	fileID := c.Param("id")
	if err := h.svc.SetBookmark(requestContext(c), userID, fileID, *payload.Bookmarked); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"fileId": fileID, "bookmarked": *payload.Bookmarked})
}

// Record marks a file as opened, and as completed or not when the payload says so.
func (h *ProgressHandler) Record(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload progressPayload
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &payload) {
		return
	}

	ctx := requestContext(c)
	fileID := c.Param("id")
	var (
		progress *models.FileProgress
		err      error
	)
	if payload.Completed == nil {
		progress, err = h.svc.MarkOpened(ctx, userID, fileID)
	} else {
		progress, err = h.svc.MarkCompleted(ctx, userID, fileID, *payload.Completed)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, progress)
}

// PurgeUser drops every bookmark and progress row of a user. The identity
// service calls it when an account is deleted.
func (h *ProgressHandler) PurgeUser(c *gin.Context) {
	userID := c.Param("id")
	if err := h.svc.PurgeUser(requestContext(c), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"userId": userID, "purged": true})
}

type bookmarkPayload struct {
	Bookmarked *bool `json:"bookmarked" validate:"required"`
}

type progressPayload struct {
	Completed *bool `json:"completed"`
}
