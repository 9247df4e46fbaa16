package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pooldesk/internal/apperr"
	"pooldesk/internal/models"
)

func statusPtr(s models.CustomerStatus) *models.CustomerStatus { return &s }

func newTestOrchestrator(store *memStore, pub Publisher) *Orchestrator {
	return NewOrchestrator(store, NewTemplateProvider(store, nil), nil, pub, nil)
}

func soldUpdate() models.CustomerUpdate {
	return models.CustomerUpdate{Status: statusPtr(models.CustomerSold)}
}

func TestPromoteCustomerEndToEnd(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid,
		Address: "12 Palm Way", City: "Tampa", State: "FL", ZipCode: "33601"})
	pub := &recordingPublisher{}
	o := newTestOrchestrator(store, pub)

	ctx := WithActor(context.Background(), 5)
	got, err := o.PromoteCustomer(ctx, 1, soldUpdate())
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got.Status != models.CustomerSold {
		t.Fatalf("expected sold, got %s", got.Status)
	}

	projects := store.projectsFor(1)
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	p := projects[0]
	if p.Name != "Jane Doe Pool Project" || p.CustomerID != 1 || p.Status != models.StatusPlanning {
		t.Fatalf("unexpected project %+v", p)
	}
	if p.Type != models.ProjectPool || p.City != "Tampa" || p.Address != "12 Palm Way" {
		t.Fatalf("project did not inherit defaults/address: %+v", p)
	}

	todos, _ := store.GetProjectTodos(context.Background(), p.ID)
	SortTodos(todos)
	if len(todos) != 25 {
		t.Fatalf("expected 25 todos, got %d", len(todos))
	}
	for i, td := range todos {
		if td.Order != i+1 || td.Completed || td.CompletedAt != nil {
			t.Fatalf("todo %d unexpected: %+v", i, td)
		}
	}

	created := store.activitiesOfType(models.ActivityProjectCreated)
	if len(created) != 1 || created[0].ProjectID == nil || *created[0].ProjectID != p.ID {
		t.Fatalf("expected one project_created activity for the project, got %+v", created)
	}
	if created[0].UserID != 5 {
		t.Fatalf("expected actor 5 on activity, got %d", created[0].UserID)
	}

	if len(pub.keys) != 1 || pub.keys[0] != RouteProjectCreated {
		t.Fatalf("expected project.created event, got %v", pub.keys)
	}
	ev := pub.events[0].(ProjectCreatedEvent)
	if ev.ProjectID != p.ID || ev.TodoCount != 25 || ev.EventID == "" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestPromoteCustomerAlreadySoldIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	o := newTestOrchestrator(store, nil)

	for i := 0; i < 3; i++ {
		if _, err := o.PromoteCustomer(context.Background(), 1, soldUpdate()); err != nil {
			t.Fatalf("promote #%d: %v", i, err)
		}
	}
	if n := len(store.projectsFor(1)); n != 1 {
		t.Fatalf("expected exactly 1 project after repeated sold updates, got %d", n)
	}
	if n := len(store.activitiesOfType(models.ActivityProjectCreated)); n != 1 {
		t.Fatalf("expected 1 project_created activity, got %d", n)
	}
}

func TestPromoteCustomerResaleReusesProject(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	o := newTestOrchestrator(store, nil)
	ctx := context.Background()

	for _, s := range []models.CustomerStatus{models.CustomerSold, models.CustomerOnHold, models.CustomerSold} {
		if _, err := o.PromoteCustomer(ctx, 1, models.CustomerUpdate{Status: statusPtr(s)}); err != nil {
			t.Fatalf("promote to %s: %v", s, err)
		}
	}
	projects := store.projectsFor(1)
	if len(projects) != 1 {
		t.Fatalf("sold -> on_hold -> sold must not create a second project, got %d", len(projects))
	}
	changes := store.activitiesOfType(models.ActivityStatusChange)
	if len(changes) != 2 {
		t.Fatalf("expected 2 status_change activities (on_hold, resale), got %d", len(changes))
	}
	last := changes[len(changes)-1]
	if last.ProjectID == nil || *last.ProjectID != projects[0].ID {
		t.Fatalf("resale activity should reference the existing project: %+v", last)
	}
}

func TestPromoteCustomerNonSaleChange(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Al", LastName: "Ray", Status: models.CustomerNew})
	o := newTestOrchestrator(store, nil)

	notes := "wants a spa"
	got, err := o.PromoteCustomer(context.Background(), 1, models.CustomerUpdate{
		Status: statusPtr(models.CustomerBid),
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got.Status != models.CustomerBid || got.Notes != notes {
		t.Fatalf("unexpected customer %+v", got)
	}
	if n := len(store.projectsFor(1)); n != 0 {
		t.Fatalf("non-sale update must not create projects, got %d", n)
	}
	changes := store.activitiesOfType(models.ActivityStatusChange)
	if len(changes) != 1 || changes[0].Metadata["from"] != "new" || changes[0].Metadata["to"] != "bid" {
		t.Fatalf("unexpected status change activity %+v", changes)
	}

	// без смены статуса журнал не пишется
	if _, err := o.PromoteCustomer(context.Background(), 1, models.CustomerUpdate{Notes: &notes}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if n := len(store.activitiesOfType(models.ActivityStatusChange)); n != 1 {
		t.Fatalf("expected no extra activity, got %d", n)
	}
}

func TestPromoteCustomerNotFound(t *testing.T) {
	o := newTestOrchestrator(newMemStore(), nil)
	_, err := o.PromoteCustomer(context.Background(), 99, soldUpdate())
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPromoteCustomerRejectsInvalidStatus(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	o := newTestOrchestrator(store, nil)

	_, err := o.PromoteCustomer(context.Background(), 1, models.CustomerUpdate{Status: statusPtr("closed")})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	blank := "  "
	_, err = o.PromoteCustomer(context.Background(), 1, models.CustomerUpdate{LastName: &blank})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for blank last name, got %v", err)
	}
	c, _ := store.GetCustomer(context.Background(), 1)
	if c.Status != models.CustomerBid || c.LastName != "Doe" {
		t.Fatalf("customer must be unchanged, got %+v", c)
	}
}

func TestPromoteCustomerPrimaryWriteFailure(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	store.failUpdateCustomer = apperr.Persistence("update customer", errBoom)
	o := newTestOrchestrator(store, nil)

	_, err := o.PromoteCustomer(context.Background(), 1, soldUpdate())
	if !apperr.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if n := len(store.projectsFor(1)); n != 0 {
		t.Fatalf("no project may be created when the customer write fails")
	}
}

func TestPromoteCustomerProjectFailureStillReturnsCustomer(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	store.failCreateProject = errBoom
	pub := &recordingPublisher{}
	o := newTestOrchestrator(store, pub)

	got, err := o.PromoteCustomer(context.Background(), 1, soldUpdate())
	if err != nil {
		t.Fatalf("project failure must not fail the customer update: %v", err)
	}
	if got.Status != models.CustomerSold {
		t.Fatalf("expected sold, got %s", got.Status)
	}
	if len(store.todos) != 0 || len(store.activitiesOfType(models.ActivityProjectCreated)) != 0 {
		t.Fatalf("no todos or activity expected without a project")
	}
	if len(pub.keys) != 0 {
		t.Fatalf("no event expected without a project")
	}
}

func TestPromoteCustomerSeedAndActivityFailuresKeepProject(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	store.failCreateTodos = errBoom
	store.failCreateActivity = errBoom
	o := newTestOrchestrator(store, &recordingPublisher{err: errBoom})

	got, err := o.PromoteCustomer(context.Background(), 1, soldUpdate())
	if err != nil {
		t.Fatalf("side-effect failures must not surface: %v", err)
	}
	if got.Status != models.CustomerSold {
		t.Fatalf("expected sold, got %s", got.Status)
	}
	if n := len(store.projectsFor(1)); n != 1 {
		t.Fatalf("project must survive seeding failure, got %d projects", n)
	}
	c, _ := store.GetCustomer(context.Background(), 1)
	if c.Status != models.CustomerSold {
		t.Fatalf("customer update must not be rolled back")
	}
}

func TestPromoteCustomerLookupFailureStillCreatesProject(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	store.failListProjects = errBoom
	o := newTestOrchestrator(store, nil)

	if _, err := o.PromoteCustomer(context.Background(), 1, soldUpdate()); err != nil {
		t.Fatalf("promote: %v", err)
	}
	store.failListProjects = nil
	if n := len(store.projectsFor(1)); n != 1 {
		t.Fatalf("expected project despite lookup failure, got %d", n)
	}
}

func TestPromoteCustomerConcurrentSalesCreateOneProject(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	o := newTestOrchestrator(store, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.PromoteCustomer(context.Background(), 1, soldUpdate()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("promote: %v", err)
	}
	if n := len(store.projectsFor(1)); n != 1 {
		t.Fatalf("expected exactly one project under concurrent sales, got %d", n)
	}
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("lock unavailable")
}

func TestPromoteCustomerLockFailure(t *testing.T) {
	store := newMemStore()
	store.addCustomer(models.Customer{ID: 1, FirstName: "Jane", LastName: "Doe", Status: models.CustomerBid})
	o := NewOrchestrator(store, nil, failingLocker{}, nil, nil)

	if _, err := o.PromoteCustomer(context.Background(), 1, soldUpdate()); err == nil {
		t.Fatalf("expected lock error")
	}
	c, _ := store.GetCustomer(context.Background(), 1)
	if c.Status != models.CustomerBid {
		t.Fatalf("customer must not change without the lock")
	}
}

func TestNewProjectForCustomer(t *testing.T) {
	p := NewProjectForCustomer(&models.Customer{ID: 3, FirstName: "Ana", LastName: "Lopez", State: "AZ"})
	if p.Name != "Ana Lopez Pool Project" || p.CustomerID != 3 || p.State != "AZ" {
		t.Fatalf("unexpected project %+v", p)
	}
	if p.Description != "Pool construction project for Ana Lopez" {
		t.Fatalf("unexpected description %q", p.Description)
	}
}
