package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lanegraph/pkg/graph"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listFlaggedStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tableHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// InspectModel - Interactive node browser
// =============================================================================

// InspectModel is the bubbletea model behind `lanegraph inspect`: a node
// table on the left and the selected node's slots on the right.
type InspectModel struct {
	Title       string
	Graph       roadnet.Graph
	Diagnostics map[int][]graph.Diagnostic // by node id
	Cursor      int
	Offset      int
	Height      int
	OnlyFlagged bool

	visible []int // indices into Graph
}

// NewInspectModel creates a browser over g. Diagnostics are attached to the
// nodes they name.
func NewInspectModel(title string, g roadnet.Graph, diags []graph.Diagnostic) InspectModel {
	byNode := make(map[int][]graph.Diagnostic)
	for _, d := range diags {
		byNode[d.NodeID] = append(byNode[d.NodeID], d)
	}
	m := InspectModel{
		Title:       title,
		Graph:       g,
		Diagnostics: byNode,
		Height:      15,
	}
	m.refilter()
	return m
}

// Selected returns the node under the cursor, or nil when nothing is shown.
func (m InspectModel) Selected() *roadnet.Node {
	if m.Cursor < 0 || m.Cursor >= len(m.visible) {
		return nil
	}
	return m.Graph[m.visible[m.Cursor]]
}

func (m *InspectModel) refilter() {
	m.visible = nil
	for i, n := range m.Graph {
		if m.OnlyFlagged && len(m.Diagnostics[n.ID]) == 0 {
			continue
		}
		m.visible = append(m.visible, i)
	}
	m.Cursor, m.Offset = 0, 0
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
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.visible)-1, 0)
		case "f":
			m.OnlyFlagged = !m.OnlyFlagged
			m.refilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
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
	b.WriteString(listDimStyle.Render("↑/↓ navigate  f flagged only  q quit"))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		if m.OnlyFlagged {
			b.WriteString(StyleSuccess.Render("No flagged nodes"))
		} else {
			b.WriteString(listDimStyle.Render("Empty graph"))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.nodeTable(), "  ", m.detailPane()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))

	return b.String()
}

// nodeTable renders the visible window of nodes.
func (m InspectModel) nodeTable() string {
	end := min(m.Offset+m.Height, len(m.visible))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Graph[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		flags := ""
		if k := len(m.Diagnostics[n.ID]); k > 0 {
			flags = strconv.Itoa(k)
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(n.ID),
			n.Type.String(),
			n.Name,
			fmt.Sprintf("%d/%d", n.CountPopulated(), n.SlotCount()),
			flags,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Name", "Links", "Diag").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			n := m.Graph[m.visible[idx]]
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case len(m.Diagnostics[n.ID]) > 0:
				return listFlaggedStyle
			case col == 4:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// detailPane renders the selected node's slots and diagnostics.
func (m InspectModel) detailPane() string {
	n := m.Selected()
	if n == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("%d %s", n.ID, n.Type)))
	if strings.TrimSpace(n.Name) != "" {
		b.WriteString(" " + StyleValue.Render(n.Name))
	}
	b.WriteString("\n")

	rows := make([][]string, roadnet.MaxSlots)
	for i := range rows {
		s := n.Neighbour(i)
		target := "-"
		if !s.Empty() {
			target = fmt.Sprintf("%d %s", s.Node.ID, s.Node.Type)
		}
		rows[i] = []string{strconv.Itoa(i), target, formatWeight(s.Weight)}
	}
	b.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Slot", "Neighbour", "Weight").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if row >= n.SlotCount() || n.Neighbour(row).Empty() {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		}).
		Render())

	for _, d := range m.Diagnostics[n.ID] {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(iconWarning + " " + d.Message))
	}
	return b.String()
}

// formatWeight renders +Inf as "inf" and finite weights in shortest form.
func formatWeight(w float64) string {
	if math.IsInf(w, 1) {
		return "inf"
	}
	return strconv.FormatFloat(w, 'g', -1, 64)
}
