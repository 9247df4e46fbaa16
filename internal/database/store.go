package database

import (
	"context"
	"errors"
	"strings"

	"pooldesk/internal/apperr"
	"pooldesk/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// Store: gorm-реализация хранилища. Реализует lifecycle.Store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate переводит ошибки gorm/драйвера в ошибки домена.
func translate(op, entity string, id uint, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict(pgErr.Detail)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return apperr.Conflict(err.Error())
	}
	return apperr.Persistence(op, err)
}

// ---------- клиенты ----------

type CustomerFilter struct {
	Status models.CustomerStatus
	Query  string // по имени/фамилии/email
}

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return translate("create customer", "customer", 0, s.db.WithContext(ctx).Create(c).Error)
}

func (s *Store) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate("get customer", "customer", id, err)
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, f CustomerFilter) ([]models.Customer, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var customers []models.Customer
	if err := q.Order("created_at desc").Order("id desc").Find(&customers).Error; err != nil {
		return nil, translate("list customers", "customer", 0, err)
	}
	return customers, nil
}

// UpdateCustomer читает прежний статус и пишет изменения в одной транзакции.
// На postgres строка клиента блокируется (SELECT ... FOR UPDATE).
func (s *Store) UpdateCustomer(ctx context.Context, id uint, upd models.CustomerUpdate) (models.CustomerStatus, *models.Customer, error) {
	var (
		prev    models.CustomerStatus
		updated models.Customer
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var current models.Customer
		if err := q.First(&current, id).Error; err != nil {
			return err
		}
		prev = current.Status

		if cols := upd.Columns(); len(cols) > 0 {
			if err := tx.Model(&models.Customer{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}
		return tx.First(&updated, id).Error
	})
	if err != nil {
		return "", nil, translate("update customer", "customer", id, err)
	}
	return prev, &updated, nil
}

func (s *Store) ListCustomerProjects(ctx context.Context, customerID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at asc").Order("id asc").
		Find(&projects).Error
	if err != nil {
		return nil, translate("list customer projects", "project", 0, err)
	}
	return projects, nil
}

// ---------- проекты ----------

type ProjectFilter struct {
	CustomerID uint
	Status     models.ProjectStatus
	Type       models.ProjectType
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// проект без клиента не создаём
		var n int64
		if err := tx.Model(&models.Customer{}).Where("id = ?", p.CustomerID).Count(&n).Error; err != nil {
			return translate("create project", "customer", p.CustomerID, err)
		}
		if n == 0 {
			return apperr.NotFound("customer", p.CustomerID)
		}
		return translate("create project", "project", 0, tx.Omit(clause.Associations).Create(p).Error)
	})
}

func (s *Store) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).Preload("Customer").First(&p, id).Error; err != nil {
		return nil, translate("get project", "project", id, err)
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	q := s.db.WithContext(ctx).Preload("Customer")
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var projects []models.Project
	if err := q.Order("created_at desc").Order("id desc").Find(&projects).Error; err != nil {
		return nil, translate("list projects", "project", 0, err)
	}
	return projects, nil
}

// UpdateProjectStatus меняет фазу стройки. CompletedAt пишется вместе со статусом.
func (s *Store) UpdateProjectStatus(ctx context.Context, p *models.Project) error {
	res := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{"status": p.Status, "completed_at": p.CompletedAt})
	if res.Error != nil {
		return translate("update project status", "project", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("project", p.ID)
	}
	return nil
}

// ---------- чек-лист ----------

func (s *Store) CreateProjectTodos(ctx context.Context, todos []models.ProjectTodo) error {
	if len(todos) == 0 {
		return nil
	}
	return translate("create project todos", "project_todo", 0,
		s.db.WithContext(ctx).CreateInBatches(&todos, 100).Error)
}

func (s *Store) GetProjectTodos(ctx context.Context, projectID uint) ([]models.ProjectTodo, error) {
	var todos []models.ProjectTodo
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sort_order asc").Order("id asc").
		Find(&todos).Error
	if err != nil {
		return nil, translate("get project todos", "project_todo", 0, err)
	}
	return todos, nil
}

func (s *Store) GetProjectTodo(ctx context.Context, id uint) (*models.ProjectTodo, error) {
	var t models.ProjectTodo
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate("get project todo", "project_todo", id, err)
	}
	return &t, nil
}

// UpdateProjectTodo пишет только флаг выполнения и дату: инвариант completed <=> completedAt держим вместе.
func (s *Store) UpdateProjectTodo(ctx context.Context, todo *models.ProjectTodo) error {
	res := s.db.WithContext(ctx).Model(&models.ProjectTodo{}).
		Where("id = ?", todo.ID).
		Updates(map[string]any{"completed": todo.Completed, "completed_at": todo.CompletedAt})
	if res.Error != nil {
		return translate("update project todo", "project_todo", todo.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("project_todo", todo.ID)
	}
	return nil
}

// ---------- пользователи ----------

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", "user", id, err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate("get user by username", "user", 0, err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate("create user", "user", 0, s.db.WithContext(ctx).Create(u).Error)
}
