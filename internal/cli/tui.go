package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pierre-ernst/ghnet/pkg/network"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PackageListModel - Interactive package selection
// =============================================================================

// PackageListModel is the bubbletea model for picking one of the packages a
// repository publishes.
type PackageListModel struct {
	Repo     string
	Packages []network.Package
	Cursor   int
	Selected *network.Package
	Height   int
	Offset   int
}

// NewPackageListModel creates a new package list model.
func NewPackageListModel(repo string, pkgs []network.Package) PackageListModel {
	return PackageListModel{
		Repo:     repo,
		Packages: pkgs,
		Height:   15,
	}
}

func (m PackageListModel) Init() tea.Cmd {
	return nil
}

func (m PackageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Packages)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Packages) == 0 {
				return m, tea.Quit
			}
			p := m.Packages[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PackageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Package of " + m.Repo))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Packages))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		p := m.Packages[i]
		rows = append(rows, []string{cursor, p.Name, p.ID})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col == 2 {
				base = base.Foreground(colorDim)
			}
			if m.Offset+row == m.Cursor && col != 2 {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Packages))))

	return b.String()
}

// pickPackage runs the package picker. It returns nil when the user quits
// without choosing.
func pickPackage(repo string, pkgs []network.Package) (*network.Package, error) {
	final, err := tea.NewProgram(NewPackageListModel(repo, pkgs)).Run()
	if err != nil {
		return nil, fmt.Errorf("package picker: %w", err)
	}
	m, ok := final.(PackageListModel)
	if !ok {
		return nil, nil
	}
	return m.Selected, nil
}
