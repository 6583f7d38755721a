package interview

import (
	"testing"

	"github.com/Djalilu/interview-app/internal/storage/memory"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	m, err := NewMachine(conversationParams(), &fakeModel{}, memory.New(), nil, testLogger())
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}

	r.Add(m)
	if r.Len() != 1 {
		t.Fatalf("expected 1 machine, got %d", r.Len())
	}

	got, ok := r.Get(m.ID())
	if !ok || got != m {
		t.Errorf("Get(%s) returned %v, %v", m.ID(), got, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("unexpected hit for unknown id")
	}

	r.Remove(m.ID())
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}
