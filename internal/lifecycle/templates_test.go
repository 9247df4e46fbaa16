package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pooldesk/internal/apperr"
)

func TestDefaultTemplateHas25OrderedSteps(t *testing.T) {
	items := DefaultTemplate()
	if len(items) != 25 {
		t.Fatalf("expected 25 default steps, got %d", len(items))
	}
	if items[0].Title != "Contract signed and deposit collected" {
		t.Fatalf("unexpected first step %q", items[0].Title)
	}
	if items[24].Title != "Final payment and project closeout" {
		t.Fatalf("unexpected last step %q", items[24].Title)
	}

	p := NewTemplateProvider(nil, nil)
	todos := p.Build(9)
	for i, td := range todos {
		if td.ProjectID != 9 || td.Order != i+1 || td.Completed || td.CompletedAt != nil {
			t.Fatalf("unexpected todo %d: %+v", i, td)
		}
	}
}

func TestParseTemplateRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":       "todos: []\n",
		"blank title": "todos:\n  - title: '  '\n",
		"not yaml":    "todos: [\n",
	}
	for name, data := range cases {
		if _, err := ParseTemplate([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadTemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.yaml")
	data := "todos:\n  - title: ' Dig '\n    description: hole\n  - title: Fill\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	items, err := LoadTemplateFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 2 || items[0].Title != "Dig" || items[0].Description != "hole" {
		t.Fatalf("unexpected items %+v", items)
	}
	if _, err := LoadTemplateFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSeedDefaultTodos(t *testing.T) {
	store := newMemStore()
	p := NewTemplateProvider(store, []TodoTemplate{{Title: "Dig"}, {Title: "Fill"}})

	todos, err := p.SeedDefaultTodos(context.Background(), 4)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(todos) != 2 || todos[0].ID == 0 || todos[1].Order != 2 {
		t.Fatalf("unexpected seeded todos %+v", todos)
	}
	if _, err := p.SeedDefaultTodos(context.Background(), 0); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for project 0, got %v", err)
	}

	store.failCreateTodos = errBoom
	if _, err := p.SeedDefaultTodos(context.Background(), 4); err == nil {
		t.Fatalf("expected persistence failure to surface")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	p := NewTemplateProvider(nil, []TodoTemplate{{Title: "Dig"}})
	items := p.Items()
	items[0].Title = "changed"
	if p.Items()[0].Title != "Dig" || p.Len() != 1 {
		t.Fatalf("provider items must not be mutable from outside")
	}
}
