package topicgraph

// Category distinguishes search algorithms by whether they use
// problem-specific knowledge beyond the problem definition.
type Category string

const (
	CategoryUninformed Category = "uninformed"
	CategoryInformed   Category = "informed"
)

// Topic is a single curriculum entry.
type Topic struct {
	// ID is the stable identifier, also the display name sent over the wire,
	// e.g. "Breadth-First Search".
	ID string

	// Category is "uninformed" or "informed". Optional.
	Category Category

	// Family is the algorithm class, e.g. "graph search", "heuristic search".
	Family string

	Description string

	// Related lists directed "related" edges in declared order.
	Related []string
}

// Classification returns a short human-readable classification such as
// "uninformed graph search", or "" when the catalog carries none.
func (t Topic) Classification() string {
	switch {
	case t.Category != "" && t.Family != "":
		return string(t.Category) + " " + t.Family
	case t.Family != "":
		return t.Family
	default:
		return string(t.Category)
	}
}
