package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// roleColumn is the index of the Role column in inspect rows.
const roleColumn = 2

// =============================================================================
// InspectModel - Interactive layout browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a computed layout.
type InspectModel struct {
	Title   string
	Summary string
	Header  []string
	Rows    [][]string
	Targets map[string][]string
	Parents map[string]string
	Cursor  int
	Height  int
	Offset  int
}

// NewInspectModel creates a browser over the layout of doc.
func NewInspectModel(title string, doc *scheme.Document, res *layout.Result) InspectModel {
	rows := inspectRows(doc, res)
	parents := make(map[string]string, len(res.Placements))
	for _, p := range res.Placements {
		if p.Parent != "" {
			parents[p.ID] = p.Parent
		}
	}
	return InspectModel{
		Title:   title,
		Summary: summary(res),
		Header:  rows[0],
		Rows:    rows[1:],
		Targets: targetsOf(doc),
		Parents: parents,
		Height:  15,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Rows)-1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.Summary))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("no nodes"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	visible := m.Rows[m.Offset:end]

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(m.Header...).
		Rows(visible...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if m.Rows[idx][roleColumn] == layout.RoleUnreached.String() {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// detail describes the node under the cursor.
func (m InspectModel) detail() string {
	id := m.Rows[m.Cursor][0]
	targets := "none"
	if t := m.Targets[id]; len(t) > 0 {
		targets = strings.Join(t, ", ")
	}
	line := fmt.Sprintf("  %s %s  targets: %s", iconArrow, StyleHighlight.Render(id), targets)
	if parent, ok := m.Parents[id]; ok {
		line += "  reached from: " + parent
	}
	return line
}
