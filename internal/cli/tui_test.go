package cli

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/lanegraph/pkg/graph"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

func testGraph(t *testing.T) roadnet.Graph {
	t.Helper()
	a := roadnet.New(1, roadnet.Crossing, "A", roadnet.DefaultDirection)
	b := roadnet.New(2, roadnet.Segment, "B", roadnet.DefaultDirection)
	c := roadnet.New(3, roadnet.Crossing, "C", roadnet.DefaultDirection)
	for _, link := range []struct {
		from *roadnet.Node
		slot int
		to   *roadnet.Node
		w    float64
	}{
		{a, 0, b, 1},
		{b, 0, a, 1},
		{b, 2, c, 4.5},
		{c, 0, b, 4.5},
	} {
		if err := link.from.SetNeighbour(link.slot, link.to, link.w); err != nil {
			t.Fatal(err)
		}
	}
	return roadnet.Graph{a, b, c}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m InspectModel, msgs ...tea.Msg) InspectModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(InspectModel)
	}
	return m
}

func TestInspectModelNavigation(t *testing.T) {
	m := NewInspectModel("city.json", testGraph(t), nil)
	if m.Selected().ID != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected().ID)
	}

	m = update(m, key("j"), key("j"), key("j"))
	if m.Selected().ID != 3 {
		t.Errorf("after 3x down = %d, want 3 (clamped)", m.Selected().ID)
	}

	m = update(m, key("k"))
	if m.Selected().ID != 2 {
		t.Errorf("after up = %d, want 2", m.Selected().ID)
	}

	m = update(m, key("g"))
	if m.Cursor != 0 {
		t.Errorf("home: Cursor = %d", m.Cursor)
	}
	m = update(m, key("G"))
	if m.Cursor != 2 {
		t.Errorf("end: Cursor = %d", m.Cursor)
	}
}

func TestInspectModelScrolls(t *testing.T) {
	m := NewInspectModel("city.json", testGraph(t), nil)
	m.Height = 1

	m = update(m, key("j"), key("j"))
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}
	m = update(m, key("g"))
	if m.Offset != 0 {
		t.Errorf("Offset after home = %d, want 0", m.Offset)
	}

	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 4})
	if m.Height != 5 {
		t.Errorf("Height = %d, want minimum 5", m.Height)
	}
}

func TestInspectModelFlaggedFilter(t *testing.T) {
	diags := []graph.Diagnostic{{Rule: graph.RuleSymmetry, NodeID: 3, Slot: -1, Message: "Node 2 is not found in the neighbours of node 3"}}
	m := NewInspectModel("city.json", testGraph(t), diags)

	m = update(m, key("f"))
	if !m.OnlyFlagged || m.Selected().ID != 3 {
		t.Fatalf("flagged filter: OnlyFlagged %v, selected %v", m.OnlyFlagged, m.Selected())
	}
	if !strings.Contains(m.View(), "Node 2 is not found") {
		t.Error("detail pane should list the node's diagnostics")
	}

	m = update(m, key("f"))
	if m.OnlyFlagged || m.Selected().ID != 1 {
		t.Error("second toggle should show all nodes again")
	}
}

func TestInspectModelNoFlagged(t *testing.T) {
	m := update(NewInspectModel("city.json", testGraph(t), nil), key("f"))
	if m.Selected() != nil {
		t.Error("nothing should be selected")
	}
	if !strings.Contains(m.View(), "No flagged nodes") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestInspectModelView(t *testing.T) {
	m := update(NewInspectModel("city.json", testGraph(t), nil), key("j"))
	view := m.View()

	for _, want := range []string{"city.json", "Slot", "Neighbour", "3 crossing", "4.5", "inf", "[2/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestInspectModelQuit(t *testing.T) {
	m := NewInspectModel("city.json", testGraph(t), nil)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestFormatWeight(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.Inf(1), "inf"},
		{1, "1"},
		{4.5, "4.5"},
		{-2, "-2"},
	}
	for _, tt := range tests {
		if got := formatWeight(tt.in); got != tt.want {
			t.Errorf("formatWeight(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
