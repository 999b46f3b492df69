package topicgraph

import (
	"fmt"
	"sort"
	"strings"
)

// validateCatalog performs all structural checks on a decoded catalog.
// Returns a combined error describing every problem found, or nil if valid.
func validateCatalog(cf catalogFile) error {
	var errs []string

	if len(cf.Topics) == 0 {
		errs = append(errs, "catalog declares no topics")
	}

	ids := make(map[string]bool, len(cf.Topics))
	for i, t := range cf.Topics {
		id := strings.TrimSpace(t.ID)
		switch {
		case id == "":
			errs = append(errs, fmt.Sprintf("topic #%d has an empty ID", i))
			continue
		case id != t.ID:
			errs = append(errs, fmt.Sprintf("topic %q has leading or trailing whitespace", t.ID))
		case ids[id]:
			errs = append(errs, fmt.Sprintf("duplicate topic ID: %q", id))
		}
		ids[t.ID] = true

		switch Category(t.Category) {
		case "", CategoryUninformed, CategoryInformed:
		default:
			errs = append(errs, fmt.Sprintf("topic %q has unknown category %q", t.ID, t.Category))
		}
	}

	// Map iteration is random; sort sources so the error text is stable.
	sources := make([]string, 0, len(cf.Relations))
	for src := range cf.Relations {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		if !ids[src] {
			errs = append(errs, fmt.Sprintf("relations reference unknown topic %q", src))
			continue
		}
		seen := make(map[string]bool)
		for _, dst := range cf.Relations[src] {
			switch {
			case dst == src:
				errs = append(errs, fmt.Sprintf("topic %q is related to itself", src))
			case !ids[dst]:
				errs = append(errs, fmt.Sprintf("topic %q is related to unknown topic %q", src, dst))
			case seen[dst]:
				errs = append(errs, fmt.Sprintf("topic %q lists related topic %q twice", src, dst))
			}
			seen[dst] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("topic catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
