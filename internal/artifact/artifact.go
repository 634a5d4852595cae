// Package artifact discovers publishable resources in an artifact directory.
//
// Every resource kind follows the same convention: a fixed container
// directory directly under the artifact root, one sub-directory per resource
// named after the resource, and a fixed information file inside it. Nested
// kinds repeat the container/name pair once per scope. The Locator maps a flat
// list of file paths onto resource identities by walking parent directories;
// files that do not match are silently ignored.
package artifact

import (
	"context"
	"strings"
)

// Kind identifies a resource category.
type Kind string

// Resource kinds.
const (
	KindNamedValue         Kind = "NamedValue"
	KindTag                Kind = "Tag"
	KindVersionSet         Kind = "VersionSet"
	KindGateway            Kind = "Gateway"
	KindBackend            Kind = "Backend"
	KindLogger             Kind = "Logger"
	KindDiagnostic         Kind = "Diagnostic"
	KindPolicyFragment     Kind = "PolicyFragment"
	KindServicePolicy      Kind = "ServicePolicy"
	KindProduct            Kind = "Product"
	KindProductPolicy      Kind = "ProductPolicy"
	KindProductGroup       Kind = "ProductGroup"
	KindProductTag         Kind = "ProductTag"
	KindAPI                Kind = "API"
	KindAPIPolicy          Kind = "APIPolicy"
	KindAPIDiagnostic      Kind = "APIDiagnostic"
	KindAPITag             Kind = "APITag"
	KindAPIOperationPolicy Kind = "APIOperationPolicy"
	KindProductAPI         Kind = "ProductAPI"
	KindGatewayAPI         Kind = "GatewayAPI"
)

// Names identifies a resource within its kind: the captured directory names
// from the outermost scope to the resource itself.
type Names []string

// String joins the names with "/". A kind without name segments (the service
// policy) renders as "service".
func (n Names) String() string {
	if len(n) == 0 {
		return "service"
	}
	return strings.Join(n, "/")
}

// Key returns a comparable join key for the names.
func (n Names) Key() string {
	return strings.Join(n, "\x00")
}

// Scope returns all names but the last.
func (n Names) Scope() Names {
	if len(n) == 0 {
		return nil
	}
	return n[:len(n)-1]
}

// Last returns the last name, or "" when there is none.
func (n Names) Last() string {
	if len(n) == 0 {
		return ""
	}
	return n[len(n)-1]
}

// Artifact is a named JSON document about to be put.
type Artifact struct {
	// Kind is the resource kind.
	Kind Kind

	// Names identifies the resource within its kind.
	Names Names

	// Document is the JSON body sent to the remote API. Never nil.
	Document map[string]any

	// FileDocument is the document as read from disk, before the overlay was
	// applied. Nil for overlay-only artifacts.
	FileDocument map[string]any

	// Overlaid is true when a configuration overlay entry was merged in.
	Overlaid bool

	// Path is the information file the artifact was read from, if any.
	Path string
}

// Reader reads artifact file contents. The working tree and a single git
// commit are the two implementations.
type Reader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}
