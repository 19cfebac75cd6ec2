package models

import "strings"

// MCQOption names one of the four answer slots of a practice question.
type MCQOption string

const (
	MCQOptionA MCQOption = "A"
	MCQOptionB MCQOption = "B"
	MCQOptionC MCQOption = "C"
	MCQOptionD MCQOption = "D"
)

// ParseMCQOption accepts A-D in any case.
func ParseMCQOption(value string) (MCQOption, bool) {
	switch option := MCQOption(strings.ToUpper(strings.TrimSpace(value))); option {
	case MCQOptionA, MCQOptionB, MCQOptionC, MCQOptionD:
		return option, true
	default:
		return "", false
	}
}

// MCQQuestion is a multiple choice practice question.
type MCQQuestion struct {
	BaseModel

	Question      string    `gorm:"type:text;not null" json:"question"`
	OptionA       string    `gorm:"type:text;not null" json:"optionA"`
	OptionB       string    `gorm:"type:text;not null" json:"optionB"`
	OptionC       string    `gorm:"type:text;not null" json:"optionC"`
	OptionD       string    `gorm:"type:text;not null" json:"optionD"`
	CorrectOption MCQOption `gorm:"size:1;not null" json:"correctOption"`
	Explanation   *string   `gorm:"type:text" json:"explanation"`
}

// TableName keeps the question table name stable.
func (MCQQuestion) TableName() string {
	return "mcq_questions"
}
