package cmdutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/apimpub/internal/artifact"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/publish"
)

func descriptor(t *testing.T, kind artifact.Kind) artifact.Descriptor {
	t.Helper()
	for _, d := range publish.Kinds() {
		if d.Kind == kind {
			return d
		}
	}
	t.Fatalf("unknown kind %s", kind)
	return artifact.Descriptor{}
}

func samplePlan(t *testing.T) *publish.Plan {
	t.Helper()
	return &publish.Plan{
		Mode: publish.ModeFull,
		Deletes: []publish.KindPlan{
			{Descriptor: descriptor(t, artifact.KindAPI), Deletes: []artifact.Names{{"old"}}},
			{Descriptor: descriptor(t, artifact.KindBackend)},
		},
		Puts: []publish.KindPlan{
			{Descriptor: descriptor(t, artifact.KindNamedValue), Skipped: []publish.Skipped{{Names: artifact.Names{"secret"}, Reason: "secret without value"}}},
			{
				Descriptor: descriptor(t, artifact.KindBackend),
				Puts: []artifact.Artifact{
					{
						Kind:         artifact.KindBackend,
						Names:        artifact.Names{"b1"},
						Document:     map[string]any{"properties": map[string]any{"url": "https://prod"}},
						FileDocument: map[string]any{"properties": map[string]any{"url": "https://dev"}},
						Overlaid:     true,
						Path:         "/artifacts/backends/b1/backendInformation.json",
					},
					{
						Kind:         artifact.KindBackend,
						Names:        artifact.Names{"b2"},
						Document:     map[string]any{"properties": map[string]any{}},
						FileDocument: map[string]any{"properties": map[string]any{}},
					},
				},
			},
			{Descriptor: descriptor(t, artifact.KindTag)},
		},
	}
}

func TestNewPlanView(t *testing.T) {
	view := NewPlanView(samplePlan(t))

	assert.Equal(t, "full", view.Mode)
	assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, view.Digest)
	require.Len(t, view.Deletes, 1)
	assert.Equal(t, KindView{Kind: "API", Names: []string{"old"}}, view.Deletes[0])

	require.Len(t, view.Puts, 2, "empty kinds are left out")
	assert.Equal(t, "NamedValue", view.Puts[0].Kind)
	assert.Equal(t, []SkipView{{Name: "secret", Reason: "secret without value"}}, view.Puts[0].Skipped)
	assert.Equal(t, []string{"b1", "b2"}, view.Puts[1].Names)
	assert.Equal(t, []string{"b1"}, view.Puts[1].Overlaid)

	assert.Equal(t, 4, view.Len())
}

func TestRenderPlan_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPlan(&buf, samplePlan(t), output.FormatJSON))

	var decoded PlanView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, NewPlanView(samplePlan(t)), decoded)
}

func TestRenderPlan_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPlan(&buf, samplePlan(t), output.FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "mode: full\n")
	assert.Contains(t, out, "kind: Backend")
	assert.Contains(t, out, "overlaid:\n")
	assert.NotContains(t, out, "commit:")
}

func TestRenderPlan_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPlan(&buf, samplePlan(t), output.FormatTable))

	out := buf.String()
	for _, want := range []string{"PHASE", "old", "planned delete", "b1", "b2", "skipped: secret without value"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderPlan_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	plan := &publish.Plan{Mode: publish.ModeCommit, Commit: "abc"}
	require.NoError(t, RenderPlan(&buf, plan, output.FormatTable))
	assert.Equal(t, "No changes.\n", buf.String())
}

func TestRenderOverlayDiffs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderOverlayDiffs(&buf, samplePlan(t)))

	out := buf.String()
	assert.Contains(t, out, "Backend/b1")
	assert.Contains(t, out, "https://prod")
	assert.NotContains(t, out, "Backend/b2", "artifacts without overlay are not diffed")
}
