package schema_test

import (
	"testing"

	"copy2insert/internal/schema"
)

func TestSortByDependencies_ComplexCircular(t *testing.T) {
	// A -> B -> C -> D -> E -> A, F -> E, G on its own.
	tables := []*schema.Table{
		{Name: "A", Dependencies: []string{"B"}},
		{Name: "B", Dependencies: []string{"C"}},
		{Name: "C", Dependencies: []string{"D"}},
		{Name: "D", Dependencies: []string{"E"}},
		{Name: "E", Dependencies: []string{"A"}},
		{Name: "F", Dependencies: []string{"E"}},
		{Name: "G", Dependencies: []string{}},
	}

	sorted := schema.SortByDependencies(tables)

	if len(sorted) != len(tables) {
		t.Fatalf("Expected %d tables, got %d", len(tables), len(sorted))
	}

	visited := make(map[string]bool)
	for _, tbl := range sorted {
		visited[tbl.Name] = true
	}
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		if !visited[name] {
			t.Errorf("Table %s missing from sorted list", name)
		}
	}

	if sorted[0].Name != "G" {
		t.Errorf("Expected independent table G first, got %s", sorted[0].Name)
	}

	want := []string{"G", "F", "E", "D", "C", "B", "A"}
	got := schema.Names(sorted)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestSortByDependencies_Simple(t *testing.T) {
	// Users -> Orders -> OrderItems
	tables := []*schema.Table{
		{Name: "OrderItems", Dependencies: []string{"Orders"}},
		{Name: "Orders", Dependencies: []string{"Users"}},
		{Name: "Users", Dependencies: []string{}},
	}

	sorted := schema.SortByDependencies(tables)

	if sorted[0].Name != "Users" {
		t.Errorf("Expected Users first, got %s", sorted[0].Name)
	}
	if sorted[1].Name != "Orders" {
		t.Errorf("Expected Orders second, got %s", sorted[1].Name)
	}
	if sorted[2].Name != "OrderItems" {
		t.Errorf("Expected OrderItems third, got %s", sorted[2].Name)
	}
}

func TestSortByDependencies_TwoTableCycle(t *testing.T) {
	tables := []*schema.Table{
		{Name: "X", Dependencies: []string{"Y"}},
		{Name: "Y", Dependencies: []string{"X"}},
		{Name: "Z", Dependencies: []string{"X"}},
	}

	got := schema.Names(schema.SortByDependencies(tables))

	want := []string{"Y", "X", "Z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestSortByDependencies_UnknownReferenceDoesNotBlock(t *testing.T) {
	tables := []*schema.Table{
		{Name: "logs", Dependencies: []string{"archived_users"}},
		{Name: "users"},
	}

	got := schema.Names(schema.SortByDependencies(tables))

	if len(got) != 2 || got[0] != "logs" || got[1] != "users" {
		t.Errorf("Expected [logs users], got %v", got)
	}
}
