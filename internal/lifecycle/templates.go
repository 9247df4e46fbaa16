package lifecycle

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"pooldesk/internal/apperr"
	"pooldesk/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed default_todos.yaml
var defaultTodosYAML []byte

type TodoTemplate struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type templateFile struct {
	Todos []TodoTemplate `yaml:"todos"`
}

// ParseTemplate читает чек-лист из YAML. Пустой список и пустые заголовки считаются ошибкой.
func ParseTemplate(data []byte) ([]TodoTemplate, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse todo template: %w", err)
	}
	if len(f.Todos) == 0 {
		return nil, fmt.Errorf("todo template is empty")
	}
	for i := range f.Todos {
		f.Todos[i].Title = strings.TrimSpace(f.Todos[i].Title)
		f.Todos[i].Description = strings.TrimSpace(f.Todos[i].Description)
		if f.Todos[i].Title == "" {
			return nil, fmt.Errorf("todo template entry %d has no title", i+1)
		}
	}
	return f.Todos, nil
}

func LoadTemplateFile(path string) ([]TodoTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read todo template %s: %w", path, err)
	}
	return ParseTemplate(data)
}

// DefaultTemplate: встроенный чек-лист из 25 шагов.
func DefaultTemplate() []TodoTemplate {
	items, err := ParseTemplate(defaultTodosYAML)
	if err != nil {
		panic(err)
	}
	return items
}

// TemplateProvider раздаёт новые проекты по шаблону чек-листа.
// Повторный вызов SeedDefaultTodos для того же проекта создаст дубли: следить за этим должен вызывающий.
type TemplateProvider struct {
	store TodoStore
	items []TodoTemplate
}

func NewTemplateProvider(store TodoStore, items []TodoTemplate) *TemplateProvider {
	if len(items) == 0 {
		items = DefaultTemplate()
	}
	return &TemplateProvider{store: store, items: items}
}

func (p *TemplateProvider) Len() int { return len(p.items) }

func (p *TemplateProvider) Items() []TodoTemplate {
	out := make([]TodoTemplate, len(p.items))
	copy(out, p.items)
	return out
}

// Build: задачи проекта без записи в БД; order = позиция в шаблоне, начиная с 1.
func (p *TemplateProvider) Build(projectID uint) []models.ProjectTodo {
	todos := make([]models.ProjectTodo, 0, len(p.items))
	for i, it := range p.items {
		todos = append(todos, models.ProjectTodo{
			ProjectID:   projectID,
			Title:       it.Title,
			Description: it.Description,
			Order:       i + 1,
		})
	}
	return todos
}

// SeedDefaultTodos пишет чек-лист пачкой. Частично вставленная пачка не откатывается.
func (p *TemplateProvider) SeedDefaultTodos(ctx context.Context, projectID uint) ([]models.ProjectTodo, error) {
	if projectID == 0 {
		return nil, apperr.Invalid("projectId", "is required")
	}
	todos := p.Build(projectID)
	if err := p.store.CreateProjectTodos(ctx, todos); err != nil {
		return nil, err
	}
	return todos, nil
}
