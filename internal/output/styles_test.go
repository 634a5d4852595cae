package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.Color
		wantDim  bool
	}{
		{
			name:   "applied returns green",
			status: StatusApplied,
			wantFG: ColorGreen,
		},
		{
			name:   "planned returns yellow",
			status: StatusPlanned,
			wantFG: ColorYellow,
		},
		{
			name:   "planned delete returns yellow",
			status: StatusPlannedDelete,
			wantFG: ColorYellow,
		},
		{
			name:    "absent returns faint",
			status:  StatusAbsent,
			wantDim: true,
		},
		{
			name:    "skipped returns faint",
			status:  StatusSkipped,
			wantDim: true,
		},
		{
			name:   "deleted returns red",
			status: StatusDeleted,
			wantFG: ColorRed,
		},
		{
			name:     "failed returns bold red",
			status:   StatusFailed,
			wantBold: true,
			wantFG:   ColorBoldRed,
		},
		{
			name:   "unknown returns default unstyled",
			status: "unknown-value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := StatusStyle(tt.status)
			if tt.wantBold {
				assert.True(t, style.GetBold(), "expected bold")
			}
			if tt.wantFG != "" {
				assert.Equal(t, tt.wantFG, style.GetForeground(), "foreground color mismatch")
			}
			if tt.wantDim {
				assert.True(t, style.GetFaint(), "expected faint")
			}
		})
	}
}

func TestFormatResourceLine(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		resName  string
		status   string
		wantPath string
	}{
		{
			name:     "top-level resource",
			kind:     "Backend",
			resName:  "b1",
			status:   StatusApplied,
			wantPath: "Backend/b1",
		},
		{
			name:     "nested resource",
			kind:     "ApiOperation",
			resName:  "echo/get",
			status:   StatusDeleted,
			wantPath: "ApiOperation/echo/get",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatResourceLine(tt.kind, tt.resName, tt.status)

			stripped := stripAnsi(result)
			assert.Contains(t, stripped, tt.wantPath, "should contain resource path")
			assert.Contains(t, stripped, tt.status, "should contain status text")
			assert.True(t, strings.HasPrefix(stripped, "r:"), "should start with r: prefix")
		})
	}

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := FormatResourceLine("Tag", "t", StatusApplied)
		line2 := FormatResourceLine("NamedValue", "backend-url", StatusApplied)

		idx1 := strings.Index(stripAnsi(line1), StatusApplied)
		idx2 := strings.Index(stripAnsi(line2), StatusApplied)

		assert.Equal(t, idx1, idx2, "status words should align to same column")
	})

	t.Run("long path keeps a gap", func(t *testing.T) {
		long := strings.Repeat("x", 60)
		stripped := stripAnsi(FormatResourceLine("Api", long, StatusApplied))
		assert.Contains(t, stripped, long+"  "+StatusApplied)
	})
}

func TestFormatCheckmark(t *testing.T) {
	result := FormatCheckmark("Publish complete")
	assert.Contains(t, result, "✔", "should contain checkmark")
	assert.Contains(t, result, "Publish complete", "should contain message")
}

func TestFormatCross(t *testing.T) {
	result := stripAnsi(FormatCross("Publish failed"))
	assert.Equal(t, "✘ Publish failed", result)
}

func TestFormatVetCheck(t *testing.T) {
	t.Run("without detail", func(t *testing.T) {
		stripped := stripAnsi(FormatVetCheck("Overlay parsed", ""))
		assert.Equal(t, "✔ Overlay parsed", stripped)
	})

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := stripAnsi(FormatVetCheck("Config file found", "~/.apimpub/config.yaml"))
		line2 := stripAnsi(FormatVetCheck("Service identity set", "contoso/apim"))

		idx1 := strings.Index(line1, "~/.apimpub/config.yaml")
		idx2 := strings.Index(line2, "contoso/apim")

		assert.Equal(t, idx1, idx2, "detail text should align to same column")
	})
}

// stripAnsi removes ANSI escape sequences for content assertions.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
