package artifact

import (
	"context"
	"net/url"
	"strings"
)

// Wildcard marks a layout segment captured as a resource or scope name.
const Wildcard = "*"

// Shape describes how an information file turns into put requests.
type Shape int

const (
	// ShapeDocument: the information file is the JSON resource document.
	ShapeDocument Shape = iota

	// ShapePolicy: the information file is a policy XML document wrapped into
	// a rawxml policy resource.
	ShapePolicy

	// ShapeLink: the information file is a JSON array of {"name": ...}
	// entries, each of which becomes a link resource under the scope.
	ShapeLink
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeDocument:
		return "document"
	case ShapePolicy:
		return "policy"
	case ShapeLink:
		return "link"
	default:
		return "unknown"
	}
}

// Descriptor describes one resource kind: where its files live, how they map
// onto the remote API and which overlay entries apply.
type Descriptor struct {
	// Kind is the resource kind.
	Kind Kind

	// Layout lists the directories between the artifact root and the
	// information file. Fixed entries must match the directory name exactly;
	// Wildcard entries capture a name. An empty layout puts the information
	// file directly under the root.
	Layout []string

	// InformationFile is the fixed name of the file describing one resource.
	InformationFile string

	// AuxiliaryFiles are other files in the resource directory whose change
	// requires the resource to be put again.
	AuxiliaryFiles []string

	// Shape selects how the information file is interpreted.
	Shape Shape

	// OverlayPath is the chain of overlay array properties addressing this
	// kind, one per captured name (e.g. apis -> diagnostics). Nil when the
	// kind takes no overlay.
	OverlayPath []string

	// AllowOverlayOnly lets overlay entries without a file produce a put
	// during a full publish.
	AllowOverlayOnly bool

	// Prunable marks kinds whose remote collection can be listed and
	// compared against the tree during a full publish with pruning.
	Prunable bool

	// URI builds the resource path relative to the service for the given
	// names. For link kinds the names end with the linked resource name.
	URI func(names Names) string

	// Collection builds the collection path for the given scope. Nil when
	// the kind is not listable.
	Collection func(scope Names) string

	// LinkBody is the document put for every link of a link kind.
	LinkBody map[string]any

	// Decorate adjusts the file document before the overlay is applied,
	// e.g. to attach auxiliary file contents. Optional.
	Decorate func(ctx context.Context, r Reader, loc Located, doc map[string]any) (map[string]any, error)

	// Guard returns a non-empty reason when a merged artifact must not be
	// put. Optional.
	Guard func(a Artifact) string

	// Stage splits one kind's puts into sequential waves; artifacts with a
	// lower stage are put first. Optional.
	Stage func(names Names) int
}

// Depth returns the number of names a resource of this kind carries.
func (d Descriptor) Depth() int {
	n := 0
	for _, seg := range d.Layout {
		if seg == Wildcard {
			n++
		}
	}
	return n
}

// HasOverlay reports whether the kind takes configuration overlay entries.
func (d Descriptor) HasOverlay() bool {
	return len(d.OverlayPath) > 0
}

// ResourcePath joins collection names and escaped resource names into a
// resource path: ResourcePath("apis", "echo", "diagnostics", "x") returns
// "/apis/echo/diagnostics/x". Even positions are literal segments, odd
// positions are names.
func ResourcePath(parts ...string) string {
	var b strings.Builder
	for i, p := range parts {
		b.WriteByte('/')
		if i%2 == 1 {
			b.WriteString(url.PathEscape(p))
			continue
		}
		b.WriteString(p)
	}
	return b.String()
}
