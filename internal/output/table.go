package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// Table collects rows and renders them with a lipgloss border. One column
// may be marked as the status column; its cells are colored by status.
type Table struct {
	headers   []string
	rows      [][]string
	statusCol int
}

// NewTable creates a table with the given headers and no status column.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, statusCol: -1}
}

// WithStatusColumn colors the cells of column col with StatusStyle. Text
// after a colon ("skipped: reason") does not affect the color.
func (t *Table) WithStatusColumn(col int) *Table {
	t.statusCol = col
	return t
}

// Row appends a row.
func (t *Table) Row(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

func (t *Table) String() string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorDimGray)).
		Headers(t.headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == t.statusCol && row >= 0 && row < len(t.rows) && col < len(t.rows[row]):
				status, _, _ := strings.Cut(t.rows[row][col], ":")
				return StatusStyle(status)
			default:
				return lipgloss.NewStyle()
			}
		})

	for _, row := range t.rows {
		tbl.Row(row...)
	}
	return tbl.String()
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}
