package beacon

import (
	"errors"
	"strings"
	"testing"
)

func TestHandlerError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	err := &HandlerError{ListenerID: "abc123", Err: base}

	if !errors.Is(err, base) {
		t.Error("HandlerError should unwrap to the base error")
	}
	if !strings.Contains(err.Error(), "abc123") {
		t.Errorf("expected listener ID in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected base error in message, got %q", err.Error())
	}
}

func TestPanicError_Is(t *testing.T) {
	err := &PanicError{ListenerID: "abc123", Value: "bad"}

	if !errors.Is(err, ErrHandlerPanic) {
		t.Error("PanicError should match ErrHandlerPanic")
	}
	if !strings.Contains(err.Error(), "abc123") {
		t.Errorf("expected listener ID in message, got %q", err.Error())
	}
}

func TestDeliveryMode_String(t *testing.T) {
	tests := []struct {
		mode DeliveryMode
		want string
	}{
		{DeliverySync, "sync"},
		{DeliveryAsync, "async"},
		{DeliveryMode(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("DeliveryMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateID()
		if id == "" {
			t.Fatal("generateID() returned empty string")
		}
		if seen[id] {
			t.Fatalf("generateID() returned duplicate: %s", id)
		}
		seen[id] = true
	}
}
