package services

import (
	"context"
	"testing"
)

func TestSelectionToggleKeepsOrder(t *testing.T) {
	selection := NewSelectionService(nil)
	ctx := context.Background()

	urls := []string{
		"https://res.example.com/upload/a.jpg",
		"https://res.example.com/upload/b.mp4",
		"https://res.example.com/upload/c.pdf",
	}
	for _, u := range urls {
		selected, err := selection.Toggle(ctx, "sess", u)
		if err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if !selected {
			t.Fatalf("%s should be selected after first toggle", u)
		}
	}

	got, err := selection.List(ctx, "sess")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := range urls {
		if got[i] != urls[i] {
			t.Fatalf("selection order lost: %v", got)
		}
	}

	// Toggling an entry off removes just that entry
	if selected, _ := selection.Toggle(ctx, "sess", urls[1]); selected {
		t.Fatal("second toggle should deselect")
	}
	got, _ = selection.List(ctx, "sess")
	if len(got) != 2 || got[0] != urls[0] || got[1] != urls[2] {
		t.Fatalf("unexpected selection after deselect: %v", got)
	}
}

func TestSelectionSessionsAreIsolated(t *testing.T) {
	selection := NewSelectionService(nil)
	ctx := context.Background()

	selection.Toggle(ctx, "one", "https://res.example.com/upload/a.jpg")
	selection.Toggle(ctx, "two", "https://res.example.com/upload/b.jpg")

	one, _ := selection.List(ctx, "one")
	two, _ := selection.List(ctx, "two")
	if len(one) != 1 || len(two) != 1 || one[0] == two[0] {
		t.Fatalf("sessions bled into each other: %v / %v", one, two)
	}
}

func TestSelectionClear(t *testing.T) {
	selection := NewSelectionService(nil)
	ctx := context.Background()

	selection.Toggle(ctx, "sess", "https://res.example.com/upload/a.jpg")
	if err := selection.Clear(ctx, "sess"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, _ := selection.List(ctx, "sess")
	if len(got) != 0 {
		t.Fatalf("selection not empty after clear: %v", got)
	}
}
