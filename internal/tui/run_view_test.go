package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/sweeprig/internal/engine"
)

func TestProgressMsgUpdatesCounts(t *testing.T) {
	m := NewModel("run-1", 10)
	updated, _ := m.Update(ProgressMsg{Done: 4, Failed: 1, Total: 10})
	view := updated.(Model).View()
	if !strings.Contains(view, "4/10 tasks") {
		t.Fatalf("view missing task counts:\n%s", view)
	}
	if !strings.Contains(view, "1 failed") {
		t.Fatalf("view missing failure count:\n%s", view)
	}
}

func TestChunkMsgShowsChunkProgress(t *testing.T) {
	m := NewModel("run-1", 10)
	updated, _ := m.Update(ChunkMsg{Index: 2, Count: 5})
	view := updated.(Model).View()
	if !strings.Contains(view, "chunk 2/5") {
		t.Fatalf("view missing chunk line:\n%s", view)
	}
}

func TestDoneMsgQuitsWithSummary(t *testing.T) {
	m := NewModel("run-1", 6)
	updated, cmd := m.Update(DoneMsg{Report: engine.Report{
		Succeeded: 5, Failed: 1, Elapsed: 1500 * time.Millisecond,
	}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	view := updated.(Model).View()
	if !strings.Contains(view, "5 succeeded") || !strings.Contains(view, "1 failed") {
		t.Fatalf("view missing summary:\n%s", view)
	}
}

func TestErrMsgQuitsAndExposesError(t *testing.T) {
	m := NewModel("run-1", 6)
	updated, cmd := m.Update(ErrMsg{Err: errors.New("checkpoint: disk full")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	model := updated.(Model)
	if model.Err() == nil {
		t.Fatalf("error not recorded")
	}
	if !strings.Contains(model.View(), "disk full") {
		t.Fatalf("view missing error:\n%s", model.View())
	}
}

func TestQuitKeysQuit(t *testing.T) {
	m := NewModel("run-1", 6)
	for _, key := range []string{"q", "ctrl+c"} {
		var msg tea.KeyMsg
		if key == "q" {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		if _, cmd := m.Update(msg); cmd == nil {
			t.Fatalf("key %s did not quit", key)
		}
	}
}
