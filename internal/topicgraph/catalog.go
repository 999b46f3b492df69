package topicgraph

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed topics.json
var defaultCatalog []byte

// catalogFile is the on-disk catalog shape. It matches the topics.json
// served to browser clients: a topic list plus a relation map keyed by
// topic ID.
type catalogFile struct {
	Topics    []topicEntry        `json:"topics" yaml:"topics"`
	Relations map[string][]string `json:"relations" yaml:"relations"`
}

type topicEntry struct {
	ID          string `json:"id" yaml:"id"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Family      string `json:"family,omitempty" yaml:"family,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Default builds the graph from the embedded catalog.
func Default() (*Graph, error) {
	return Parse(defaultCatalog, FormatJSON)
}

// Format selects the catalog encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Load reads a catalog file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	g, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes and validates a catalog.
func Parse(data []byte, format Format) (*Graph, error) {
	var cf catalogFile
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &cf)
	default:
		err = json.Unmarshal(data, &cf)
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := validateCatalog(cf); err != nil {
		return nil, err
	}

	topics := make([]Topic, 0, len(cf.Topics))
	for _, e := range cf.Topics {
		topics = append(topics, Topic{
			ID:          e.ID,
			Category:    Category(e.Category),
			Family:      e.Family,
			Description: e.Description,
			Related:     append([]string(nil), cf.Relations[e.ID]...),
		})
	}
	return buildGraph(topics), nil
}

// MarshalCatalog renders the graph back into the catalog JSON shape.
func (g *Graph) MarshalCatalog() ([]byte, error) {
	cf := catalogFile{Relations: make(map[string][]string)}
	for _, t := range g.topics {
		cf.Topics = append(cf.Topics, topicEntry{
			ID:          t.ID,
			Category:    string(t.Category),
			Family:      t.Family,
			Description: t.Description,
		})
		if len(t.Related) > 0 {
			cf.Relations[t.ID] = t.Related
		}
	}
	return json.Marshal(cf)
}
