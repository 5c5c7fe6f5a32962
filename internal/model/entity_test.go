package model

import (
	"log/slog"
	"testing"
)

func TestNewEntityRef(t *testing.T) {
	ref := NewEntityRef(12345, "Flag Carrier")

	if ref.ObjectID != 12345 {
		t.Errorf("ObjectID = %d, want 12345", ref.ObjectID)
	}
	if ref.Name != "Flag Carrier" {
		t.Errorf("Name = %q, want %q", ref.Name, "Flag Carrier")
	}
	if ref.IsZero() {
		t.Error("IsZero() = true for non-zero ref")
	}
}

func TestEntityRef_IsZero(t *testing.T) {
	var ref EntityRef
	if !ref.IsZero() {
		t.Error("zero value ref should report IsZero")
	}

	// Имя без ID всё равно считается пустой ссылкой
	if !NewEntityRef(0, "ghost").IsZero() {
		t.Error("ObjectID 0 is reserved and must be zero")
	}
}

func TestEntityRef_String(t *testing.T) {
	ref := NewEntityRef(7, "Turret")
	if got := ref.String(); got != "Turret#7" {
		t.Errorf("String() = %q, want %q", got, "Turret#7")
	}
}

func TestEntityRef_LogValue(t *testing.T) {
	v := NewEntityRef(42, "Runner").LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("LogValue kind = %v, want group", v.Kind())
	}

	attrs := v.Group()
	if len(attrs) != 2 {
		t.Fatalf("len(attrs) = %d, want 2", len(attrs))
	}
	if attrs[0].Key != "id" || attrs[0].Value.Uint64() != 42 {
		t.Errorf("attrs[0] = %v, want id=42", attrs[0])
	}
	if attrs[1].Key != "name" || attrs[1].Value.String() != "Runner" {
		t.Errorf("attrs[1] = %v, want name=Runner", attrs[1])
	}
}
