package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"pooldesk/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	u := &models.User{ID: 5, Username: "pm@pooldesk.local", Role: models.RoleManager}

	token, exp, err := iss.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 5 || claims.Role != models.RoleManager || claims.Subject != u.Username {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewIssuer("one", time.Hour).Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewIssuer("two", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	base := time.Now()
	iss.now = func() time.Time { return base.Add(-time.Hour) }
	token, _, err := iss.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	iss.now = func() time.Time { return base }
	if _, err := iss.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := NewIssuer("secret", 0).Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"bearer xyz":     "xyz",
		"Basic dXNlcg==": "",
		"Bearer a b":     "",
		"Bearer":         "",
	}
	for header, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := ExtractToken(r); got != want {
			t.Errorf("ExtractToken(%q) = %q, want %q", header, got, want)
		}
	}
}
