package validator

import "testing"

func TestCheckKeepsFirstMessage(t *testing.T) {
	v := New()
	v.Check(false, "amount", "must be provided")
	v.Check(false, "amount", "must be positive")
	v.Check(true, "message", "too long")

	if v.Valid() {
		t.Fatal("expected invalid validator")
	}
	if got := v.Errors["amount"]; got != "must be provided" {
		t.Fatalf("expected first message, got %q", got)
	}
	if _, ok := v.Errors["message"]; ok {
		t.Fatal("passing check must not add an error")
	}
}

func TestPermittedValue(t *testing.T) {
	if !PermittedValue("DRIVER", "RIDER", "DRIVER") {
		t.Fatal("expected DRIVER to be permitted")
	}
	if PermittedValue(3, 1, 2) {
		t.Fatal("expected 3 to be rejected")
	}
}
