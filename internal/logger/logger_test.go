package logger

import "testing"

func TestNew(t *testing.T) {
	l, err := New("debug", true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !l.Core().Enabled(-1) {
		t.Fatalf("debug level should be enabled")
	}

	l, err = New("warn", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if l.Core().Enabled(0) {
		t.Fatalf("info must be disabled at warn level")
	}

	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
