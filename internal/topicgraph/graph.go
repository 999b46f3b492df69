package topicgraph

import (
	"fmt"
	"sort"
)

// Graph is the read-only topic catalog with precomputed indices. It is
// built once at startup and safe for concurrent use.
type Graph struct {
	topics []Topic
	byID   map[string]*Topic
	order  map[string]int
}

// buildGraph constructs the graph from an already validated topic list.
func buildGraph(topics []Topic) *Graph {
	g := &Graph{
		topics: topics,
		byID:   make(map[string]*Topic, len(topics)),
		order:  make(map[string]int, len(topics)),
	}
	for i := range g.topics {
		g.byID[g.topics[i].ID] = &g.topics[i]
		g.order[g.topics[i].ID] = i
	}
	return g
}

// IsValid reports whether id names a catalogued topic.
func (g *Graph) IsValid(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Get returns a topic by ID.
func (g *Graph) Get(id string) (Topic, error) {
	t, ok := g.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("topic not found: %q", id)
	}
	return *t, nil
}

// Related returns the topics id points at, in declared order. Unknown IDs
// and topics without edges yield an empty slice.
func (g *Graph) Related(id string) []string {
	t, ok := g.byID[id]
	if !ok {
		return []string{}
	}
	out := make([]string, len(t.Related))
	copy(out, t.Related)
	return out
}

// Topics returns every topic in catalog order.
func (g *Graph) Topics() []Topic {
	out := make([]Topic, len(g.topics))
	copy(out, g.topics)
	return out
}

// IDs returns every topic ID in catalog order.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.topics))
	for i, t := range g.topics {
		out[i] = t.ID
	}
	return out
}

// Ordered returns the members of set in catalog order. IDs not in the
// catalog are dropped.
func (g *Graph) Ordered(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id, ok := range set {
		if ok && g.IsValid(id) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return g.order[out[i]] < g.order[out[j]]
	})
	return out
}

// Len returns the number of catalogued topics.
func (g *Graph) Len() int { return len(g.topics) }
