package artifact

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	backends = Descriptor{
		Kind:            KindBackend,
		Layout:          []string{"backends", Wildcard},
		InformationFile: "backendInformation.json",
	}
	apiDiagnostics = Descriptor{
		Kind:            KindAPIDiagnostic,
		Layout:          []string{"apis", Wildcard, "diagnostics", Wildcard},
		InformationFile: "diagnosticInformation.json",
	}
	servicePolicy = Descriptor{
		Kind:            KindServicePolicy,
		InformationFile: "policy.xml",
	}
	apis = Descriptor{
		Kind:            KindAPI,
		Layout:          []string{"apis", Wildcard},
		InformationFile: "apiInformation.json",
		AuxiliaryFiles:  []string{"specification.yaml"},
	}
)

func p(parts ...string) string {
	return filepath.Join(append([]string{string(filepath.Separator), "repo", "artifacts"}, parts...)...)
}

func TestLocate_TopLevel(t *testing.T) {
	root := p()
	files := []string{
		p("backends", "b1", "backendInformation.json"),
		p("backends", "b2", "backendInformation.json"),
		p("backends", "b3", "other.json"),                        // wrong file name
		p("loggers", "l1", "backendInformation.json"),            // wrong container
		p("nested", "backends", "b4", "backendInformation.json"), // container not under root
		p("backends", "backendInformation.json"),                 // missing name level
		p("backends", "b5", "extra", "backendInformation.json"),  // one level too deep
		filepath.Join(string(filepath.Separator), "elsewhere", "backends", "b6", "backendInformation.json"),
	}

	found := Locate(files, root, backends, false)

	require.Len(t, found, 2)
	assert.Equal(t, Names{"b1"}, found[0].Names)
	assert.Equal(t, p("backends", "b1"), found[0].Dir)
	assert.Equal(t, Names{"b2"}, found[1].Names)
}

func TestLocate_RootWithTrailingSeparator(t *testing.T) {
	root := p() + string(filepath.Separator)
	files := []string{p("backends", "b1", "backendInformation.json")}

	found := Locate(files, root, backends, false)

	require.Len(t, found, 1)
	assert.Equal(t, "b1", found[0].Names.Last())
}

func TestLocate_Nested(t *testing.T) {
	files := []string{
		p("apis", "echo", "diagnostics", "applicationinsights", "diagnosticInformation.json"),
		p("diagnostics", "azuremonitor", "diagnosticInformation.json"),
		p("apis", "echo", "diag", "x", "diagnosticInformation.json"),
	}

	found := Locate(files, p(), apiDiagnostics, false)

	require.Len(t, found, 1)
	assert.Equal(t, Names{"echo", "applicationinsights"}, found[0].Names)
	assert.Equal(t, "echo/applicationinsights", found[0].Names.String())
	assert.Equal(t, Names{"echo"}, found[0].Names.Scope())
}

func TestLocate_NoLayout(t *testing.T) {
	files := []string{
		p("policy.xml"),
		p("apis", "echo", "policy.xml"),
	}

	found := Locate(files, p(), servicePolicy, false)

	require.Len(t, found, 1)
	assert.Empty(t, found[0].Names)
	assert.Equal(t, "service", found[0].Names.String())
}

func TestLocate_AuxiliaryFiles(t *testing.T) {
	files := []string{
		p("apis", "echo", "specification.yaml"),
		p("apis", "echo", "apiInformation.json"),
		p("apis", "petstore", "specification.yaml"),
	}

	t.Run("information files only", func(t *testing.T) {
		found := Locate(files, p(), apis, false)
		require.Len(t, found, 1)
		assert.Equal(t, Names{"echo"}, found[0].Names)
	})

	t.Run("with auxiliary files, unique by names", func(t *testing.T) {
		found := Locate(files, p(), apis, true)
		require.Len(t, found, 2)
		assert.Equal(t, Names{"echo"}, found[0].Names)
		assert.Equal(t, Names{"petstore"}, found[1].Names)
		assert.Equal(t, p("apis", "echo", "apiInformation.json"), found[0].InformationFile(apis))
	})
}

func TestLocate_RecoveredNameEqualsDirectoryName(t *testing.T) {
	for _, name := range []string{"b1", "my backend", "backend;rev=2", "UPPER"} {
		found := Locate([]string{p("backends", name, "backendInformation.json")}, p(), backends, false)
		require.Len(t, found, 1, name)
		assert.Equal(t, name, found[0].Names.Last())
	}
}

func TestSamePath(t *testing.T) {
	assert.True(t, SamePath("/a/b", "/a/b/"))
	assert.True(t, SamePath("/a/./b", "/a/b"))
	assert.False(t, SamePath("/a/b", "/a/c"))
}

func TestResourcePath(t *testing.T) {
	assert.Equal(t, "/backends/b1", ResourcePath("backends", "b1"))
	assert.Equal(t, "/apis/echo%20api/diagnostics/x", ResourcePath("apis", "echo api", "diagnostics", "x"))
	assert.Equal(t, "/apis/echo/policies/policy", ResourcePath("apis", "echo", "policies", "policy"))
}

func TestTree_FilesAndReadFile(t *testing.T) {
	mem := memfs.New()
	require.NoError(t, mem.MkdirAll("/backends/b1", 0o755))
	require.NoError(t, util.WriteFile(mem, "/backends/b1/backendInformation.json", []byte(`{}`), 0o644))
	require.NoError(t, util.WriteFile(mem, "/policy.xml", []byte(`<policies/>`), 0o644))

	tree := Tree{Root: p(), FS: mem}

	files, err := tree.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		p("backends", "b1", "backendInformation.json"),
		p("policy.xml"),
	}, files)

	data, err := tree.ReadFile(context.Background(), p("policy.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<policies/>", string(data))

	_, err = tree.ReadFile(context.Background(), p("missing.json"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = tree.ReadFile(context.Background(), filepath.Join(p(), "..", "outside.json"))
	assert.Error(t, err)
}
