package topicgraph

import (
	"os"
	"path/filepath"
	"testing"
)

func defaultGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Default()
	if err != nil {
		t.Fatalf("Default(): %v", err)
	}
	return g
}

func TestDefault_Count(t *testing.T) {
	g := defaultGraph(t)
	if g.Len() != 12 {
		t.Errorf("got %d topics, want 12", g.Len())
	}
}

func TestIsValid(t *testing.T) {
	g := defaultGraph(t)
	tests := []struct {
		id   string
		want bool
	}{
		{"Breadth-First Search", true},
		{"A* Search", true},
		{"breadth-first search", false},
		{"", false},
		{"Quantum Search", false},
	}
	for _, tt := range tests {
		if got := g.IsValid(tt.id); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestRelated_OnlyCatalogMembers(t *testing.T) {
	g := defaultGraph(t)
	for _, id := range g.IDs() {
		for _, rel := range g.Related(id) {
			if !g.IsValid(rel) {
				t.Errorf("Related(%q) contains non-catalog topic %q", id, rel)
			}
		}
	}
}

func TestRelated_DeclaredOrder(t *testing.T) {
	g := defaultGraph(t)
	got := g.Related("Depth-First Search")
	want := []string{"Breadth-First Search", "Depth-Limited Search", "Iterative Deepening Search"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Related[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRelated_UnknownIsEmpty(t *testing.T) {
	g := defaultGraph(t)
	got := g.Related("nonexistent")
	if got == nil || len(got) != 0 {
		t.Errorf("Related(unknown) = %#v, want empty non-nil slice", got)
	}
}

func TestRelated_ReturnsCopy(t *testing.T) {
	g := defaultGraph(t)
	rel := g.Related("Minimax")
	rel[0] = "mutated"
	if g.Related("Minimax")[0] == "mutated" {
		t.Error("Related must not expose internal state")
	}
}

func TestRelated_Directed(t *testing.T) {
	g := defaultGraph(t)
	// Minimax points at DFS; DFS does not point back.
	found := false
	for _, r := range g.Related("Depth-First Search") {
		if r == "Minimax" {
			found = true
		}
	}
	if found {
		t.Error("edges should be directed, DFS must not list Minimax")
	}
}

func TestGet(t *testing.T) {
	g := defaultGraph(t)
	topic, err := g.Get("A* Search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if topic.Category != CategoryInformed {
		t.Errorf("category = %q, want informed", topic.Category)
	}
	if got := topic.Classification(); got != "informed heuristic search" {
		t.Errorf("Classification() = %q", got)
	}

	if _, err := g.Get("nope"); err == nil {
		t.Error("expected error for unknown topic")
	}
}

func TestOrdered_CatalogOrderDropsUnknown(t *testing.T) {
	g := defaultGraph(t)
	set := map[string]bool{
		"Minimax":              true,
		"Breadth-First Search": true,
		"Bogus":                true,
		"A* Search":            false,
	}
	got := g.Ordered(set)
	want := []string{"Breadth-First Search", "Minimax"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ordered[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		topic Topic
		want  string
	}{
		{Topic{Category: CategoryUninformed, Family: "graph search"}, "uninformed graph search"},
		{Topic{Family: "local search"}, "local search"},
		{Topic{Category: CategoryInformed}, "informed"},
		{Topic{}, ""},
	}
	for _, tt := range tests {
		if got := tt.topic.Classification(); got != tt.want {
			t.Errorf("Classification(%+v) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.yaml")
	data := `topics:
  - id: Alpha
    category: uninformed
  - id: Beta
relations:
  Alpha: [Beta]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !g.IsValid("Alpha") || !g.IsValid("Beta") {
		t.Fatalf("expected both topics, got %v", g.IDs())
	}
	if rel := g.Related("Alpha"); len(rel) != 1 || rel[0] != "Beta" {
		t.Errorf("Related(Alpha) = %v", rel)
	}
	if rel := g.Related("Beta"); len(rel) != 0 {
		t.Errorf("Related(Beta) = %v, want empty", rel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMarshalCatalog_RoundTrip(t *testing.T) {
	g := defaultGraph(t)
	data, err := g.MarshalCatalog()
	if err != nil {
		t.Fatalf("MarshalCatalog: %v", err)
	}
	g2, err := Parse(data, FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g2.Len() != g.Len() {
		t.Errorf("round trip lost topics: %d vs %d", g2.Len(), g.Len())
	}
}
