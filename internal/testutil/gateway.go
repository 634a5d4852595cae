package testutil

import (
	"context"
	"iter"
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

// Call is one request recorded by a FakeGateway.
type Call struct {
	Method string
	URI    string
	Body   map[string]any
}

// FakeGateway is an in-memory gateway that records every call. Resources put
// through it show up in later listings of their collection.
type FakeGateway struct {
	mu        sync.Mutex
	calls     []Call
	resources map[string]map[string]any
	errs      map[string]error
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		resources: make(map[string]map[string]any),
		errs:      make(map[string]error),
	}
}

// Seed stores remote resources without recording calls.
func (g *FakeGateway) Seed(uris ...string) *FakeGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, uri := range uris {
		g.resources[uri] = map[string]any{}
	}
	return g
}

// FailOn makes every call to uri return err.
func (g *FakeGateway) FailOn(uri string, err error) *FakeGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[uri] = err
	return g
}

// Calls returns the recorded calls in the order they were made.
func (g *FakeGateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.calls)
}

// CallsOf returns the URIs called with method, in call order.
func (g *FakeGateway) CallsOf(method string) []string {
	var uris []string
	for _, c := range g.Calls() {
		if c.Method == method {
			uris = append(uris, c.URI)
		}
	}
	return uris
}

// Body returns the last body put to uri.
func (g *FakeGateway) Body(uri string) (map[string]any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.calls) - 1; i >= 0; i-- {
		if c := g.calls[i]; c.Method == "PUT" && c.URI == uri {
			return c.Body, true
		}
	}
	return nil, false
}

// Has reports whether uri currently exists.
func (g *FakeGateway) Has(uri string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.resources[uri]
	return ok
}

func (g *FakeGateway) record(method, uri string, body map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Method: method, URI: uri, Body: body})
	return g.errs[uri]
}

// List yields {"name": ...} for every direct child of uri, with the name
// unescaped the way the service reports it.
func (g *FakeGateway) List(ctx context.Context, uri string) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		if err := g.record("GET", uri, nil); err != nil {
			yield(nil, err)
			return
		}

		g.mu.Lock()
		var names []string
		for _, key := range slices.Sorted(maps.Keys(g.resources)) {
			rest, ok := strings.CutPrefix(key, uri+"/")
			if !ok || rest == "" || strings.Contains(rest, "/") {
				continue
			}
			if name, err := url.PathUnescape(rest); err == nil {
				names = append(names, name)
			}
		}
		g.mu.Unlock()

		for _, name := range names {
			if !yield(map[string]any{"name": name}, nil) {
				return
			}
		}
	}
}

// Put stores doc at uri.
func (g *FakeGateway) Put(ctx context.Context, uri string, doc map[string]any) error {
	if err := g.record("PUT", uri, doc); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resources[uri] = doc
	return nil
}

// Delete removes uri. A missing resource yields errors.ErrNotFound.
func (g *FakeGateway) Delete(ctx context.Context, uri string) error {
	if err := g.record("DELETE", uri, nil); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.resources[uri]; !ok {
		return oerrors.ErrNotFound
	}
	delete(g.resources, uri)
	return nil
}
