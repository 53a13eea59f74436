package report

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")

	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle    = lipgloss.NewStyle().PaddingRight(1)
	numberStyle  = cellStyle.Foreground(colorCyan).Align(lipgloss.Right)
	dimStyle     = cellStyle.Foreground(colorDim)
	addedStyle   = cellStyle.Foreground(colorGreen)
	removedStyle = cellStyle.Foreground(colorRed)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

func ownerTable(o *github.Owner) string {
	name := o.Name
	if name == "" {
		name = "-"
	}
	return newTable("Login", "Type", "Name", "URL").
		Row(o.Login, o.Type, name, o.HTMLURL).
		StyleFunc(plainStyle).
		Render()
}

func packagesTable(pkgs []network.Package) string {
	t := newTable("#", "Package", "ID")
	for i, p := range pkgs {
		t.Row(strconv.Itoa(i+1), p.Name, p.ID)
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 0:
			return numberStyle
		case col == 2:
			return dimStyle
		}
		return cellStyle
	}).Render()
}

func countTable(c Count) string {
	pkg := c.PackageID
	if pkg == "" {
		pkg = "-"
	}
	return newTable("Repository", "Package", "Dependents").
		Row(c.Repository, pkg, formatInt(c.Dependents)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return numberStyle
			}
			return cellStyle
		}).
		Render()
}

func scanTable(s *network.Scan) string {
	t := newTable("#", "Repository", "Language", "Dependents", "Stars")
	for i, d := range s.Dependents {
		lang := d.Language
		if lang == "" {
			lang = "-"
		}
		t.Row(strconv.Itoa(i+1), d.FullName, lang, formatInt(d.Dependents), strconv.Itoa(d.Stars))
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 0 || col == 3 || col == 4:
			return numberStyle
		case col == 2:
			return dimStyle
		}
		return cellStyle
	}).Render()
}

func snapshotsTable(snaps []*store.Snapshot) string {
	t := newTable("ID", "Created", "Package", "Dependents", "Pages")
	for _, s := range snaps {
		pkg := s.Scan.Options.PackageID
		if pkg == "" {
			pkg = "-"
		}
		t.Row(s.ID, s.CreatedAt.Local().Format(time.DateTime), pkg,
			strconv.Itoa(len(s.Scan.Dependents)), strconv.Itoa(s.Scan.Pages))
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 3 || col == 4:
			return numberStyle
		case col == 1 || col == 2:
			return dimStyle
		}
		return cellStyle
	}).Render()
}

func diffTable(d *store.Diff) string {
	t := newTable("", "Repository")
	for _, name := range d.Added {
		t.Row("+", name)
	}
	for _, name := range d.Removed {
		t.Row("-", name)
	}
	added := len(d.Added)
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row < added:
			return addedStyle
		}
		return removedStyle
	}).Render()
}

func plainStyle(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

// formatInt renders n with thousands separators.
func formatInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
