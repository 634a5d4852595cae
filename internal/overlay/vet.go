package overlay

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/ohler55/ojg/jp"
)

//go:embed schema.cue
var schemaSource []byte

// Severity of a vet finding.
type Severity string

const (
	// SeverityError marks entries the publisher drops.
	SeverityError Severity = "error"

	// SeverityWarning marks properties the publisher ignores.
	SeverityWarning Severity = "warning"
)

// Finding is one problem found in an overlay document.
type Finding struct {
	// Path is the JSONPath of the offending value, e.g. $.backends[2].
	Path string

	Severity Severity
	Message  string
}

// String renders the finding on one line.
func (f Finding) String() string {
	return fmt.Sprintf("%s %s: %s", f.Severity, f.Path, f.Message)
}

// Vetter checks overlay documents against the entry schema.
type Vetter struct {
	ctx   *cue.Context
	entry cue.Value
}

// NewVetter compiles the embedded entry schema.
func NewVetter() (*Vetter, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling overlay schema: %w", schema.Err())
	}

	entry := schema.LookupPath(cue.ParsePath("#Entry"))
	if !entry.Exists() {
		return nil, fmt.Errorf("overlay schema has no #Entry definition")
	}

	return &Vetter{ctx: ctx, entry: entry}, nil
}

// Vet reports every element the resolver would drop along the given overlay
// paths, plus top-level properties no path uses. Findings are sorted by path.
func (v *Vetter) Vet(doc map[string]any, paths [][]string) []Finding {
	var findings []Finding

	known := make(map[string]bool)
	tree := make(map[string][][]string)
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		known[p[0]] = true
		tree[p[0]] = append(tree[p[0]], p[1:])
	}

	for prop := range doc {
		if !known[prop] {
			findings = append(findings, Finding{
				Path:     jp.R().C(prop).String(),
				Severity: SeverityWarning,
				Message:  "property is not used by any resource kind",
			})
		}
	}

	for prop, rest := range tree {
		findings = append(findings, v.vetArray(doc, jp.R(), prop, rest)...)
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Path < findings[j].Path
	})
	return findings
}

func (v *Vetter) vetArray(doc map[string]any, parent jp.Expr, prop string, rest [][]string) []Finding {
	raw, ok := doc[prop]
	if !ok {
		return nil
	}

	at := append(append(jp.Expr{}, parent...), jp.Child(prop))
	items, ok := raw.([]any)
	if !ok {
		return []Finding{{
			Path:     at.String(),
			Severity: SeverityError,
			Message:  fmt.Sprintf("must be an array of named entries, got %s", typeName(raw)),
		}}
	}

	var findings []Finding
	for i, item := range items {
		elem := append(append(jp.Expr{}, at...), jp.Nth(i))

		if msg := v.checkEntry(item); msg != "" {
			findings = append(findings, Finding{
				Path:     elem.String(),
				Severity: SeverityError,
				Message:  msg,
			})
			continue
		}

		obj := item.(map[string]any)
		children := make(map[string][][]string)
		for _, r := range rest {
			if len(r) > 0 {
				children[r[0]] = append(children[r[0]], r[1:])
			}
		}
		for child, childRest := range children {
			findings = append(findings, v.vetArray(obj, elem, child, childRest)...)
		}
	}
	return findings
}

// checkEntry returns a message when item does not satisfy #Entry.
func (v *Vetter) checkEntry(item any) string {
	if _, ok := item.(map[string]any); !ok {
		return fmt.Sprintf("entry must be an object, got %s", typeName(item))
	}

	value := v.entry.Unify(v.ctx.Encode(item))
	err := value.Validate(cue.Concrete(true))
	if err == nil {
		return ""
	}

	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
