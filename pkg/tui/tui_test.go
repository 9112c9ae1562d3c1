package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/james-see/ym2151tone/pkg/config"
	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/playback"
	"github.com/james-see/ym2151tone/pkg/store"
	"github.com/james-see/ym2151tone/pkg/tone"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func recordingPlayer() (*playback.Player, chan converter.Log) {
	sent := make(chan converter.Log, 16)
	return playback.NewPlayer(playback.SenderFunc(func(ctx context.Context, log converter.Log) error {
		sent <- log
		return nil
	})), sent
}

func TestNewLoadsNewest(t *testing.T) {
	st := store.New(t.TempDir())
	g := tone.Default()
	g.SetCh(tone.ChFB, 5)
	if _, err := st.SaveTone("bell", g); err != nil {
		t.Fatal(err)
	}

	m := New(config.DefaultConfig(), st, nil)
	if m.Grid() != g {
		t.Errorf("New() should load the saved tone")
	}
}

func TestNewFallsBackToDefault(t *testing.T) {
	m := New(config.DefaultConfig(), store.New(filepath.Join(t.TempDir(), "empty")), nil)
	if m.Grid() != tone.Default() {
		t.Errorf("New() without saved tones should edit the default tone")
	}
	if m.err != nil {
		t.Errorf("New() error = %v", m.err)
	}
}

func TestCursorDisplayOrder(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)

	want := []int{tone.RowM1, tone.RowC1, tone.RowM2, tone.RowC2, tone.ChRow, tone.ChRow}
	for i, w := range want {
		if row, _ := m.Cursor(); row != w {
			t.Errorf("step %d: cursor row = %s, want %s", i, tone.RowName(row), tone.RowName(w))
		}
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
}

func TestColumnClampsOnChannelRow(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)
	for i := 0; i < tone.GridCols; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if _, col := m.Cursor(); col != tone.Cols(tone.RowM1)-1 {
		t.Errorf("col = %d, want last operator column", col)
	}

	for i := 0; i < 4; i++ {
		m = press(t, m, runes("j"))
	}
	row, col := m.Cursor()
	if row != tone.ChRow || col != tone.Cols(tone.ChRow)-1 {
		t.Errorf("cursor = (%d, %d), want CH last column", row, col)
	}
}

func TestEditKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
		want uint8
	}{
		{"inc", []tea.Msg{runes("+")}, 1},
		{"inc twice", []tea.Msg{runes("+"), runes("=")}, 2},
		{"dec saturates", []tea.Msg{runes("-")}, 0},
		{"inc10 saturates", []tea.Msg{tea.KeyMsg{Type: tea.KeyPgUp}}, 7},
		{"max", []tea.Msg{runes(">")}, 7},
		{"max then min", []tea.Msg{runes(">"), runes("<")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.AutoPlay = false
			m := press(t, New(cfg, nil, nil), tt.keys...)
			if got := m.Grid().Op(tone.RowM1, tone.OpDT); got != tt.want {
				t.Errorf("M1 DT = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValueChangeAutoPlays(t *testing.T) {
	player, sent := recordingPlayer()
	m := New(config.DefaultConfig(), nil, player)

	m = press(t, m, runes("+"))

	select {
	case log := <-sent:
		if len(log) != converter.EventsPerTone {
			t.Errorf("played %d events, want %d", len(log), converter.EventsPerTone)
		}
	case <-time.After(time.Second):
		t.Fatal("value change did not trigger playback")
	}

	// moving the cursor changes nothing and plays nothing
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	select {
	case <-sent:
		t.Error("cursor move should not play")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRemappedKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AutoPlay = false
	cfg.Keybinds[config.ActionInc] = []string{"w"}

	m := press(t, New(cfg, nil, nil), runes("+"), runes("w"))
	if got := m.Grid().Op(tone.RowM1, tone.OpDT); got != 1 {
		t.Errorf("M1 DT = %d, want 1 (only w increments)", got)
	}
}

func TestSaveAndLoadMessages(t *testing.T) {
	st := store.New(t.TempDir())
	m := New(config.DefaultConfig(), st, nil)

	next, cmd := m.Update(runes("s"))
	m = next.(Model)
	if cmd == nil || !m.busy {
		t.Fatal("save should start a command")
	}

	saved := m.saveTone()()
	m = press(t, m, saved)
	if m.busy || m.err != nil || !strings.HasPrefix(m.status, "saved ") {
		t.Errorf("after save: busy=%v err=%v status=%q", m.busy, m.err, m.status)
	}

	g := tone.Default()
	g.SetCh(tone.ChALG, 2)
	m = press(t, m, loadedMsg{grid: g, path: "x.json"})
	if m.Grid() != g {
		t.Error("loadedMsg should replace the grid")
	}
}

func TestQuit(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit should return tea.Quit")
	}
}

func TestView(t *testing.T) {
	m := New(config.DefaultConfig(), nil, nil)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	for i := 0; i < int(tone.ChNote); i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}

	view := m.View()
	for _, want := range []string{"M1", "C2", "CH", "ALG", "Note", "KC=3E"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
