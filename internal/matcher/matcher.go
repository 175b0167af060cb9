// Package matcher turns loosely structured release names into descriptors.
package matcher

import (
	"path/filepath"
	"strings"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

// Matcher extracts descriptors for a single promotion. It is safe for
// concurrent use.
type Matcher struct {
	promotion string
	events    []eventPattern
	root      string
	maxDepth  int
}

// New creates a matcher for promotion. root is the destination library
// searched for fighter names during strict extraction; it may be empty.
func New(promotion, root string) (*Matcher, error) {
	if promotion == "" {
		promotion = DefaultPromotion
	}
	events, err := compileEventPatterns(promotion)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		promotion: promotion,
		events:    events,
		root:      root,
		maxDepth:  1,
	}, nil
}

// Promotion returns the promotion token this matcher recognizes
func (m *Matcher) Promotion() string {
	return m.promotion
}

// EventNumber returns the canonical event identifier in a normalized name.
// The numbered form wins over fight night, which wins over broadcast events.
func (m *Matcher) EventNumber(normalized string) string {
	for _, p := range m.events {
		if sub := p.regex.FindStringSubmatch(normalized); sub != nil {
			return p.format(sub)
		}
	}
	return ""
}

// Parse applies every rule to a single name without any fallback
func (m *Matcher) Parse(name string) types.Descriptor {
	n := Normalize(name)
	return types.Descriptor{
		EventNumber:  m.EventNumber(n),
		FighterNames: FighterNames(n),
		Edition:      EditionOf(n),
		Resolution:   Resolution(n),
	}
}

// Extract builds the descriptor of the file at path.
//
// When the file name has no event number the parent folder name is parsed
// instead, and every field then comes from the folder. Strict extraction
// fails with types.ErrNoEventNumber when neither name has an event number,
// and searches the library for fighter names the name itself lacks. A file
// already inside the library takes missing names from its event folder.
// Non-strict extraction never fails.
func (m *Matcher) Extract(path string, strict bool) (types.Descriptor, error) {
	base := filepath.Base(path)
	desc := m.Parse(strings.TrimSuffix(base, filepath.Ext(base)))

	if desc.EventNumber == "" {
		if parent := filepath.Base(filepath.Dir(path)); parent != "." && parent != string(filepath.Separator) {
			if fromParent := m.Parse(parent); fromParent.EventNumber != "" {
				desc = fromParent
			}
		}
	}
	desc.SourcePath = path

	if desc.EventNumber == "" {
		if strict {
			return desc, types.ErrNoEventNumber{Name: base}
		}
		return desc, nil
	}

	if desc.FighterNames == "" {
		desc.FighterNames = m.namesFromLibrary(path, desc.EventNumber)
	}
	if desc.FighterNames == "" && strict {
		desc.FighterNames = m.FindNames(desc.EventNumber)
	}

	return desc, nil
}

// namesFromLibrary returns the fighter names of the nearest folder between
// path and the library root that describes the same event
func (m *Matcher) namesFromLibrary(path, eventNumber string) string {
	if m.root == "" {
		return ""
	}
	root, err := filepath.Abs(m.root)
	if err != nil {
		return ""
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return ""
	}
	if rel, err := filepath.Rel(root, dir); err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}

	for dir != root {
		if d := m.Parse(filepath.Base(dir)); d.EventNumber == eventNumber && d.FighterNames != "" {
			return d.FighterNames
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
