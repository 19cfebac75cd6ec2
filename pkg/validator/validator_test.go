package validator

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type folderPayload struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *string `json:"parentId" validate:"omitempty,uuid"`
}

type patchPayload struct {
	Name *string `json:"name" validate:"omitempty,notblank"`
}

func TestValidateStructSuccess(t *testing.T) {
	parent := "3b241101-e2bb-4255-8caf-4136c566a962"
	payload := folderPayload{
		Name:     "Physics",
		ParentID: &parent,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	parent := "not-a-uuid"
	payload := folderPayload{
		Name:     "   ",
		ParentID: &parent,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(vErrs))
	}

	foundParent := false
	for _, v := range vErrs {
		if v.Field == "parentId" {
			foundParent = true
		}
	}

	if !foundParent {
		t.Fatal("expected parentId field to be present in validation errors")
	}
	if !strings.Contains(err.Error(), "name failed on notblank") {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestNotBlankIgnoresNilPointers(t *testing.T) {
	if err := ValidateStruct(patchPayload{}); err != nil {
		t.Fatalf("expected nil pointer to pass, got %v", err)
	}

	blank := "  "
	if err := ValidateStruct(patchPayload{Name: &blank}); err == nil {
		t.Fatal("expected blank value to fail")
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("file_kind", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "PDF"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"file_kind"`
	}

	if err := ValidateStruct(custom{Value: "PDF"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "DOCX"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}
