package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub/studyhub/internal/services"
	"github.com/studyhub/studyhub/pkg/response"
)

// MCQHandler serves practice questions.
type MCQHandler struct {
	svc *services.MCQService
}

// NewMCQHandler constructs an MCQ handler.
func NewMCQHandler(svc *services.MCQService) *MCQHandler {
	return &MCQHandler{svc: svc}
}

// List returns questions without their answers.
func (h *MCQHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListWithAnswers returns questions including the correct option and explanation.
func (h *MCQHandler) ListWithAnswers(c *gin.Context) {
	h.list(c, true)
}

func (h *MCQHandler) list(c *gin.Context, withAnswers bool) {
	questions, err := h.svc.List(requestContext(c), withAnswers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// Create adds a question.
func (h *MCQHandler) Create(c *gin.Context) {
	var payload createQuestionPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	dto, err := h.svc.Create(requestContext(c), services.MCQInput{
		Question:      payload.Question,
		OptionA:       payload.OptionA,
		OptionB:       payload.OptionB,
		OptionC:       payload.OptionC,
		OptionD:       payload.OptionD,
		CorrectOption: payload.CorrectOption,
		Explanation:   payload.Explanation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// Answer grades the caller's choice.
func (h *MCQHandler) Answer(c *gin.Context) {
	var payload answerQuestionPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.svc.Answer(requestContext(c), c.Param("id"), payload.Choice)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Delete removes a question.
func (h *MCQHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type createQuestionPayload struct {
	Question      string  `json:"question" validate:"required,notblank"`
	OptionA       string  `json:"optionA" validate:"required,notblank"`
	OptionB       string  `json:"optionB" validate:"required,notblank"`
	OptionC       string  `json:"optionC" validate:"required,notblank"`
	OptionD       string  `json:"optionD" validate:"required,notblank"`
	CorrectOption string  `json:"correctOption" validate:"required,oneof=A B C D"`
	Explanation   *string `json:"explanation"`
}

type answerQuestionPayload struct {
	Choice string `json:"choice" validate:"required,oneof=A B C D"`
}
