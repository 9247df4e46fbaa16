package models

import (
	"testing"
	"time"
)

func TestIsSaleTransition(t *testing.T) {
	cases := []struct {
		prev, next CustomerStatus
		want       bool
	}{
		{CustomerBid, CustomerSold, true},
		{CustomerNew, CustomerSold, true},
		{CustomerLost, CustomerSold, true},
		{CustomerSold, CustomerSold, false},
		{CustomerBid, CustomerQualified, false},
		{CustomerSold, CustomerOnHold, false},
	}
	for _, tc := range cases {
		if got := IsSaleTransition(tc.prev, tc.next); got != tc.want {
			t.Errorf("IsSaleTransition(%s, %s) = %v, want %v", tc.prev, tc.next, got, tc.want)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	if !CustomerSold.Valid() || CustomerStatus("closed").Valid() {
		t.Fatalf("customer status validity is wrong")
	}
	if !PriorityHigh.Valid() || CustomerPriority("urgent").Valid() {
		t.Fatalf("priority validity is wrong")
	}
	if !StatusPlanning.Valid() || ProjectStatus("planned").Valid() {
		t.Fatalf("project status validity is wrong")
	}
	if !ProjectPool.Valid() || ProjectType("").Valid() {
		t.Fatalf("project type validity is wrong")
	}
	if !ActivityProjectCreated.Valid() || ActivityType("deleted").Valid() {
		t.Fatalf("activity type validity is wrong")
	}
}

func TestNextPhaseWalksToCompleted(t *testing.T) {
	s := StatusPlanning
	steps := 0
	for {
		next, ok := s.NextPhase()
		if !ok {
			break
		}
		s = next
		steps++
	}
	if s != StatusCompleted || steps != 5 {
		t.Fatalf("expected to reach completed in 5 steps, got %s after %d", s, steps)
	}
	if _, ok := StatusOnHold.NextPhase(); ok {
		t.Fatalf("on_hold has no next phase")
	}
}

func TestCustomerUpdateColumnsAndApply(t *testing.T) {
	first := "  Jane "
	status := CustomerSold
	u := CustomerUpdate{FirstName: &first, Status: &status}

	cols := u.Columns()
	if len(cols) != 2 || cols["first_name"] != "Jane" || cols["status"] != CustomerSold {
		t.Fatalf("unexpected columns: %#v", cols)
	}

	c := Customer{FirstName: "J", LastName: "Doe", Status: CustomerBid}
	u.Apply(&c)
	if c.FirstName != "Jane" || c.LastName != "Doe" || c.Status != CustomerSold {
		t.Fatalf("unexpected customer after apply: %+v", c)
	}
	if c.FullName() != "Jane Doe" {
		t.Fatalf("full name = %q", c.FullName())
	}
}

func TestTodoMarkKeepsCompletedAtInSync(t *testing.T) {
	var todo ProjectTodo
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	todo.MarkCompleted(at)
	if !todo.Completed || todo.CompletedAt == nil || !todo.CompletedAt.Equal(at) {
		t.Fatalf("expected completed todo, got %+v", todo)
	}
	todo.MarkPending()
	if todo.Completed || todo.CompletedAt != nil {
		t.Fatalf("expected pending todo, got %+v", todo)
	}
}
