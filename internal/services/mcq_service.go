package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/models"
	apperrors "github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/logger"
	"github.com/studyhub/studyhub/pkg/metrics"
)

// MCQQuestionDTO is the API representation of a practice question. The answer
// fields are left empty when the caller is practising.
type MCQQuestionDTO struct {
	ID            string           `json:"id"`
	Question      string           `json:"question"`
	OptionA       string           `json:"optionA"`
	OptionB       string           `json:"optionB"`
	OptionC       string           `json:"optionC"`
	OptionD       string           `json:"optionD"`
	CorrectOption models.MCQOption `json:"correctOption,omitempty"`
	Explanation   *string          `json:"explanation,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// MCQInput describes a question to create.
type MCQInput struct {
	Question      string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
	Explanation   *string
}

// MCQResult is the verdict on a submitted answer.
type MCQResult struct {
	Correct       bool             `json:"correct"`
	CorrectOption models.MCQOption `json:"correctOption"`
	Explanation   *string          `json:"explanation"`
}

// MCQService manages practice questions.
type MCQService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewMCQService constructs an MCQService.
func NewMCQService(db *gorm.DB) (*MCQService, error) {
	if db == nil {
		return nil, errors.New("mcq service: db is required")
	}
	return &MCQService{db: db, log: logger.WithModule("mcq")}, nil
}

// List returns every question, newest first. Answers are included only when
// withAnswers is set.
func (s *MCQService) List(ctx context.Context, withAnswers bool) ([]MCQQuestionDTO, error) {
	ctx = ensureContext(ctx)
	var questions []models.MCQQuestion
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("mcq service: list questions: %w", err)
	}

	out := make([]MCQQuestionDTO, 0, len(questions))
	for _, question := range questions {
		dto := mcqToDTO(question)
		if !withAnswers {
			dto.CorrectOption = ""
			dto.Explanation = nil
		}
		out = append(out, dto)
	}
	return out, nil
}

// Create stores a new question.
func (s *MCQService) Create(ctx context.Context, input MCQInput) (dto *MCQQuestionDTO, err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("mcq", "create", err) }()

	question := models.MCQQuestion{
		Question: strings.TrimSpace(input.Question),
		OptionA:  strings.TrimSpace(input.OptionA),
		OptionB:  strings.TrimSpace(input.OptionB),
		OptionC:  strings.TrimSpace(input.OptionC),
		OptionD:  strings.TrimSpace(input.OptionD),
	}
	for label, value := range map[string]string{
		"question": question.Question,
		"optionA":  question.OptionA,
		"optionB":  question.OptionB,
		"optionC":  question.OptionC,
		"optionD":  question.OptionD,
	} {
		if value == "" {
			return nil, apperrors.NewBadRequest(label + " is required")
		}
	}

	correct, ok := models.ParseMCQOption(input.CorrectOption)
	if !ok {
		return nil, apperrors.NewBadRequest("correctOption must be one of A, B, C, D")
	}
	question.CorrectOption = correct
	if input.Explanation != nil {
		if explanation := strings.TrimSpace(*input.Explanation); explanation != "" {
			question.Explanation = &explanation
		}
	}

	if err := s.db.WithContext(ctx).Create(&question).Error; err != nil {
		return nil, fmt.Errorf("mcq service: create question: %w", err)
	}
	out := mcqToDTO(question)
	return &out, nil
}

// Answer checks choice against the stored answer.
func (s *MCQService) Answer(ctx context.Context, id, choice string) (*MCQResult, error) {
	ctx = ensureContext(ctx)
	option, ok := models.ParseMCQOption(choice)
	if !ok {
		return nil, apperrors.NewBadRequest("choice must be one of A, B, C, D")
	}

	var question models.MCQQuestion
	if err := s.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "question", id)
	}

	result := &MCQResult{
		Correct:       question.CorrectOption == option,
		CorrectOption: question.CorrectOption,
		Explanation:   question.Explanation,
	}
	if result.Correct {
		metrics.MCQAnswers.WithLabelValues("correct").Inc()
	} else {
		metrics.MCQAnswers.WithLabelValues("incorrect").Inc()
	}
	return result, nil
}

// Delete removes a question.
func (s *MCQService) Delete(ctx context.Context, id string) (err error) {
	ctx = ensureContext(ctx)
	defer func() { recordMutation("mcq", "delete", err) }()

	res := s.db.WithContext(ctx).Delete(&models.MCQQuestion{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("mcq service: delete question: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("question %s not found", id)
	}
	s.log.Debug("question deleted", zap.String("question_id", id))
	return nil
}

func mcqToDTO(question models.MCQQuestion) MCQQuestionDTO {
	return MCQQuestionDTO{
		ID:            question.ID,
		Question:      question.Question,
		OptionA:       question.OptionA,
		OptionB:       question.OptionB,
		OptionC:       question.OptionC,
		OptionD:       question.OptionD,
		CorrectOption: question.CorrectOption,
		Explanation:   question.Explanation,
		CreatedAt:     question.CreatedAt,
	}
}
