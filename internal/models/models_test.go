package models

import "testing"

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestBeforeCreateKeepsExplicitID(t *testing.T) {
	base := BaseModel{ID: "fixed"}
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID != "fixed" {
		t.Fatalf("expected explicit id to be kept, got %s", base.ID)
	}
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"folder", func() *BaseModel {
			f := &Folder{}
			return &f.BaseModel
		}},
		{"file", func() *BaseModel {
			f := &File{}
			return &f.BaseModel
		}},
		{"syllabus_section", func() *BaseModel {
			s := &SyllabusSection{}
			return &s.BaseModel
		}},
		{"bookmark", func() *BaseModel {
			b := &Bookmark{}
			return &b.BaseModel
		}},
		{"file_progress", func() *BaseModel {
			p := &FileProgress{}
			return &p.BaseModel
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := tc.model()
			if err := base.BeforeCreate(nil); err != nil {
				t.Fatalf("before create: %v", err)
			}
			if base.ID == "" {
				t.Fatal("expected ID to be generated")
			}
		})
	}
}

func TestParseFileType(t *testing.T) {
	cases := map[string]struct {
		want FileType
		ok   bool
	}{
		"VIDEO": {FileTypeVideo, true},
		" pdf ": {FileTypePDF, true},
		"docx":  {"", false},
		"":      {"", false},
	}

	for input, tc := range cases {
		got, ok := ParseFileType(input)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseFileType(%q) = %q, %v; want %q, %v", input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseMCQOption(t *testing.T) {
	for input, want := range map[string]MCQOption{"a": MCQOptionA, " D ": MCQOptionD, "B": MCQOptionB} {
		got, ok := ParseMCQOption(input)
		if !ok || got != want {
			t.Fatalf("ParseMCQOption(%q) = %q, %v", input, got, ok)
		}
	}
	if _, ok := ParseMCQOption("E"); ok {
		t.Fatal("expected E to be rejected")
	}
}
