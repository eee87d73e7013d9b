package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pylearn/internal/stats"
)

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		wantPrompt string
		wantLetter []string
	}{
		{"three options", "Quel type ?\nA) int\nB) float\nC) str", "Quel type ?", []string{"A", "B", "C"}},
		{"indented options", "Q\n  A) oui\n  B) non", "Q", []string{"A", "B"}},
		{"no options", "Combien font 2 + 2 ?", "Combien font 2 + 2 ?", nil},
		{"multi-line prompt", "Ligne 1\nLigne 2\nA) x", "Ligne 1\nLigne 2", []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, choices := ParseQuestion(tt.question)
			if prompt != tt.wantPrompt {
				t.Errorf("prompt = %q, want %q", prompt, tt.wantPrompt)
			}
			var letters []string
			for _, c := range choices {
				letters = append(letters, c.Letter)
			}
			if strings.Join(letters, ",") != strings.Join(tt.wantLetter, ",") {
				t.Errorf("letters = %v, want %v", letters, tt.wantLetter)
			}
		})
	}
}

func TestMultiChoiceKeys(t *testing.T) {
	m := NewMultiChoice("Q ?\nA) un\nB) deux\nC) trois")

	m, submit := m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if submit || m.Letter() != "B" {
		t.Fatalf("after down: letter %q submit %v", m.Letter(), submit)
	}

	m, submit = m.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	if !submit || m.Letter() != "C" {
		t.Fatalf("after 'c': letter %q submit %v", m.Letter(), submit)
	}

	m.Mark(false)
	if !m.Submitted {
		t.Error("expected Submitted after Mark")
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Submitted {
		t.Error("moving the cursor should clear the verdict")
	}
}

func TestMenuSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b"},
		{Label: "c", Disabled: true},
		{Label: "d"},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Errorf("after down = %d, want 3", m.Selected)
	}
}

func TestProgressBarPercent(t *testing.T) {
	p := stats.Progress{Completed: 5, Total: 16, Percent: 31}
	v := NewProgressBar("Module", p, true, 40).View()
	if !strings.Contains(v, "31%") {
		t.Errorf("progress bar missing percent: %q", v)
	}
}
