package lifecycle

import (
	"context"
	"errors"
	"sync"

	"pooldesk/internal/apperr"
	"pooldesk/internal/models"
)

// memStore: хранилище в памяти с инъекцией сбоев.
type memStore struct {
	mu         sync.Mutex
	nextID     uint
	customers  map[uint]*models.Customer
	projects   map[uint]*models.Project
	todos      map[uint]*models.ProjectTodo
	activities []models.Activity

	failCreateProject  error
	failCreateTodos    error
	failCreateActivity error
	failUpdateCustomer error
	failUpdateTodo     error
	failListProjects   error
}

func newMemStore() *memStore {
	return &memStore{
		customers: map[uint]*models.Customer{},
		projects:  map[uint]*models.Project{},
		todos:     map[uint]*models.ProjectTodo{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) addCustomer(c models.Customer) *models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	} else if c.ID > s.nextID {
		s.nextID = c.ID
	}
	s.customers[c.ID] = &c
	return &c
}

func (s *memStore) GetCustomer(_ context.Context, id uint) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, apperr.NotFound("customer", id)
	}
	out := *c
	return &out, nil
}

func (s *memStore) UpdateCustomer(_ context.Context, id uint, upd models.CustomerUpdate) (models.CustomerStatus, *models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdateCustomer != nil {
		return "", nil, s.failUpdateCustomer
	}
	c, ok := s.customers[id]
	if !ok {
		return "", nil, apperr.NotFound("customer", id)
	}
	prev := c.Status
	upd.Apply(c)
	out := *c
	return prev, &out, nil
}

func (s *memStore) ListCustomerProjects(_ context.Context, customerID uint) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failListProjects != nil {
		return nil, s.failListProjects
	}
	var out []models.Project
	for _, p := range s.projects {
		if p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) CreateProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateProject != nil {
		return s.failCreateProject
	}
	if _, ok := s.customers[p.CustomerID]; !ok {
		return apperr.NotFound("customer", p.CustomerID)
	}
	p.ID = s.id()
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *memStore) GetProject(_ context.Context, id uint) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, apperr.NotFound("project", id)
	}
	out := *p
	return &out, nil
}

func (s *memStore) CreateProjectTodos(_ context.Context, todos []models.ProjectTodo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateTodos != nil {
		return s.failCreateTodos
	}
	for i := range todos {
		todos[i].ID = s.id()
		t := todos[i]
		s.todos[t.ID] = &t
	}
	return nil
}

func (s *memStore) GetProjectTodos(_ context.Context, projectID uint) ([]models.ProjectTodo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProjectTodo
	for _, t := range s.todos {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) GetProjectTodo(_ context.Context, id uint) (*models.ProjectTodo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok {
		return nil, apperr.NotFound("todo", id)
	}
	out := *t
	return &out, nil
}

func (s *memStore) UpdateProjectTodo(_ context.Context, todo *models.ProjectTodo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdateTodo != nil {
		return s.failUpdateTodo
	}
	if _, ok := s.todos[todo.ID]; !ok {
		return apperr.NotFound("todo", todo.ID)
	}
	t := *todo
	s.todos[todo.ID] = &t
	return nil
}

func (s *memStore) CreateActivity(_ context.Context, a *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateActivity != nil {
		return s.failCreateActivity
	}
	a.ID = s.id()
	s.activities = append(s.activities, *a)
	return nil
}

func (s *memStore) projectsFor(customerID uint) []models.Project {
	ps, _ := s.ListCustomerProjects(context.Background(), customerID)
	return ps
}

func (s *memStore) activitiesOfType(t models.ActivityType) []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Activity
	for _, a := range s.activities {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// recordingPublisher запоминает события.
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.events = append(p.events, payload)
	return nil
}

var errBoom = errors.New("boom")
