package lifecycle

import (
	"context"

	"pooldesk/internal/models"
)

// CustomerStore: запись статуса клиента. UpdateCustomer обязан прочитать прежний статус
// и записать изменения атомарно, иначе фронт перехода в sold может сработать дважды.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, upd models.CustomerUpdate) (models.CustomerStatus, *models.Customer, error)
	ListCustomerProjects(ctx context.Context, customerID uint) ([]models.Project, error)
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id uint) (*models.Project, error)
}

type TodoStore interface {
	CreateProjectTodos(ctx context.Context, todos []models.ProjectTodo) error
	GetProjectTodos(ctx context.Context, projectID uint) ([]models.ProjectTodo, error)
	GetProjectTodo(ctx context.Context, id uint) (*models.ProjectTodo, error)
	UpdateProjectTodo(ctx context.Context, todo *models.ProjectTodo) error
}

type ActivityStore interface {
	CreateActivity(ctx context.Context, a *models.Activity) error
}

// Store: всё, что нужно оркестратору.
type Store interface {
	CustomerStore
	ProjectStore
	TodoStore
	ActivityStore
}

// TrackerStore: всё, что нужно трекеру чек-листа.
type TrackerStore interface {
	ProjectStore
	TodoStore
	ActivityStore
}
