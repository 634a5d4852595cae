package overlay

import (
	"fmt"
	"slices"

	"github.com/opmodel/apimpub/internal/artifact"
)

// Table holds the overlay bodies of one kind, keyed by resource names.
type Table struct {
	kind  artifact.Kind
	byKey map[string]map[string]any
	names []artifact.Names
}

// ForKind collects every overlay entry addressing the descriptor's kind.
// Bodies have their name and the listed child properties removed. Entries
// sharing names resolve to the last one. ForKind panics when the kind takes no
// overlay: asking for one is a programming error.
func ForKind(doc map[string]any, d artifact.Descriptor, children ...string) *Table {
	if !d.HasOverlay() {
		panic(fmt.Sprintf("overlay: kind %s does not support configuration overrides", d.Kind))
	}

	t := &Table{
		kind:  d.Kind,
		byKey: make(map[string]map[string]any),
	}
	t.collect(doc, d.OverlayPath, nil, children)
	return t
}

func (t *Table) collect(doc map[string]any, path []string, scope artifact.Names, children []string) {
	entries := Resolve(doc, path[0])

	if len(path) > 1 {
		// A scope repeated at a parent level only contributes through its
		// last occurrence.
		lastIndex := make(map[string]int, len(entries))
		for i, e := range entries {
			lastIndex[e.Name] = i
		}
		for i, e := range entries {
			if lastIndex[e.Name] != i {
				continue
			}
			t.collect(e.Document, path[1:], append(slices.Clone(scope), e.Name), children)
		}
		return
	}

	for _, e := range entries {
		names := append(slices.Clone(scope), e.Name)
		key := names.Key()
		if _, ok := t.byKey[key]; !ok {
			t.names = append(t.names, names)
		}
		t.byKey[key] = e.Body(children...)
	}
}

// Kind returns the kind the table was built for.
func (t *Table) Kind() artifact.Kind {
	return t.kind
}

// Get returns the overlay body for the given names.
func (t *Table) Get(names artifact.Names) (map[string]any, bool) {
	body, ok := t.byKey[names.Key()]
	return body, ok
}

// Names lists the distinct names with an overlay entry, in first-seen order.
func (t *Table) Names() []artifact.Names {
	return t.names
}

// Len returns the number of distinct entries.
func (t *Table) Len() int {
	return len(t.names)
}
