// Package overlay resolves configuration overlay entries for resource kinds.
//
// An overlay is a JSON object whose top-level array properties are named after
// resource kind plurals. Each element is an object carrying a string "name";
// every other property is opaque and merged verbatim into the matching
// artifact. Nested kinds are addressed by a chain of array properties, e.g.
// apis[name=echo].diagnostics[name=appinsights].
package overlay

import (
	"fmt"

	"github.com/opmodel/apimpub/internal/artifact"
)

// NameProperty is the property identifying an overlay entry.
const NameProperty = "name"

// Entry is one named overlay element.
type Entry struct {
	// Name is the entry's "name" property.
	Name string

	// Document is the element as found in the overlay, "name" included.
	Document map[string]any
}

// Resolve returns the named entries of the array property of doc. A missing
// property yields no entries. Elements that are not objects, or objects without
// a string name, are dropped. Duplicates are kept in document order.
func Resolve(doc map[string]any, property string) []Entry {
	items, ok := doc[property].([]any)
	if !ok {
		return nil
	}

	var entries []Entry
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, ok := obj[NameProperty].(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Name: name, Document: obj})
	}
	return entries
}

// Lookup follows path level by level, picking the entry named after the
// matching element of names. When several entries share a name the last one
// wins. It reports false when any level has no match.
func Lookup(doc map[string]any, path []string, names artifact.Names) (Entry, bool) {
	if len(path) != len(names) {
		panic(fmt.Sprintf("overlay: path %v does not address names %v", path, names))
	}

	var (
		found Entry
		ok    bool
	)
	current := doc
	for i, property := range path {
		found, ok = last(Resolve(current, property), names[i])
		if !ok {
			return Entry{}, false
		}
		current = found.Document
	}
	return found, ok
}

func last(entries []Entry, name string) (Entry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Name == name {
			return entries[i], true
		}
	}
	return Entry{}, false
}

// Body returns a copy of the entry's document without its name and without
// the given child properties (arrays addressing nested kinds).
func (e Entry) Body(children ...string) map[string]any {
	body := make(map[string]any, len(e.Document))
	for k, v := range e.Document {
		body[k] = v
	}
	delete(body, NameProperty)
	for _, c := range children {
		delete(body, c)
	}
	return body
}
