package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/response"
	appValidator "github.com/studyhub/studyhub/pkg/validator"
)

const contentURLTag = "content_url"

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, validationFailure(err))
		return false
	}

	return true
}

// validationFailure maps validator output onto an AppError. Content URL
// failures keep their own error kind so clients can tell them apart.
func validationFailure(err error) *appErrors.AppError {
	if ve, ok := err.(appValidator.ValidationErrors); ok {
		for _, failure := range ve {
			if failure.Tag == contentURLTag {
				return appErrors.ErrInvalidContentURL.WithMessage("%s must link to an allowed content host", prettifyFieldName(failure.Field))
			}
		}
	}
	return appErrors.NewBadRequest(formatValidationError(err))
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	if ve, ok := err.(appValidator.ValidationErrors); ok {
		if len(ve) == 0 {
			return "invalid request payload"
		}

		messages := make([]string, 0, len(ve))
		for _, failure := range ve {
			field := prettifyFieldName(failure.Field)
			switch failure.Tag {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", field))
			case "notblank":
				messages = append(messages, fmt.Sprintf("%s must not be blank", field))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, failure.Param))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", field, failure.Param))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(failure.Param, " ", ", ")))
			default:
				if failure.Param != "" {
					messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param))
				} else {
					messages = append(messages, fmt.Sprintf("%s failed validation: %s", field, failure.Tag))
				}
			}
		}
		return strings.Join(messages, "; ")
	}

	return "invalid request payload"
}

// prettifyFieldName turns validator field paths such as "orderedIds[2]" into
// readable names.
func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	return name
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func optionalQuery(c *gin.Context, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

// nullableID distinguishes an absent id field from an explicit null, which
// moves a node to the root.
type nullableID struct {
	Set   bool
	Value *string
}

func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		n.Value = nil
		return nil
	}
	n.Value = &id
	return nil
}

// toRoot reports whether the payload explicitly asked for the root.
func (n nullableID) toRoot() bool {
	return n.Set && n.Value == nil
}
