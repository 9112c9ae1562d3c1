// Package tui provides the terminal grid editor for YM2151 tones
package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/ym2151tone/pkg/config"
	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/debug"
	"github.com/james-see/ym2151tone/pkg/pitch"
	"github.com/james-see/ym2151tone/pkg/playback"
	"github.com/james-see/ym2151tone/pkg/store"
	"github.com/james-see/ym2151tone/pkg/tone"
)

// Phosphor color scheme
var (
	phosphor   = lipgloss.Color("#39FF14")
	amber      = lipgloss.Color("#FFBF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(phosphor).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Foreground(silverGray)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(phosphor).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(phosphor).
			Padding(1, 2)
)

// displayRows maps screen rows to grid rows. Operators are shown in
// connection order (M1, C1, M2, C2) while the grid stores M1, M2, C1, C2.
var displayRows = [tone.GridRows]int{tone.RowM1, tone.RowC1, tone.RowM2, tone.RowC2, tone.ChRow}

// State represents the current TUI state
type State int

const (
	StateEdit State = iota
	StateFilePicker
)

// Model represents the TUI model
type Model struct {
	state      State
	grid       tone.Grid
	row        int // index into displayRows
	col        int
	keys       keyMap
	help       help.Model
	filePicker filepicker.Model
	spinner    spinner.Model
	store      *store.Store
	player     *playback.Player
	autoPlay   bool
	path       string
	busy       bool
	status     string
	err        error
	width      int
	height     int
}

type savedMsg struct {
	path string
	err  error
}

type loadedMsg struct {
	grid tone.Grid
	path string
	err  error
}

// New creates the editor, loading the newest saved tone or the default one
func New(cfg *config.Config, st *store.Store, player *playback.Player) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	fp := filepicker.New()
	fp.AllowedTypes = []string{".json", ".hex", ".reg", ".txt"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(phosphor)

	m := Model{
		state:      StateEdit,
		grid:       tone.Default(),
		keys:       newKeyMap(cfg.Keybinds),
		help:       help.New(),
		filePicker: fp,
		spinner:    s,
		store:      st,
		player:     player,
		autoPlay:   cfg.AutoPlay,
	}

	if st == nil {
		m.status = "no tone directory, editing default tone"
		return m
	}
	if info, err := os.Stat(st.Dir); err == nil && info.IsDir() {
		m.filePicker.CurrentDirectory = st.Dir
	}

	g, path, err := st.LoadNewest()
	switch {
	case err == nil:
		m.grid = g
		m.path = path
		m.status = "loaded " + filepath.Base(path)
	case errors.Is(err, store.ErrNoTones):
		m.status = "new tone"
	default:
		m.err = err
	}
	return m
}

// Grid returns the tone being edited
func (m Model) Grid() tone.Grid {
	return m.grid
}

// Cursor returns the grid row and column under the cursor
func (m Model) Cursor() (row, col int) {
	return displayRows[m.row], m.col
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs every message while it is open
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.state = StateEdit
			return m, nil
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = StateEdit
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.loadFile(path))
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		return m.updateEdit(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case savedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.path = msg.path
			m.status = "saved " + filepath.Base(msg.path)
		}
		return m, nil

	case loadedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.grid = msg.grid
			m.path = msg.path
			m.status = "loaded " + filepath.Base(msg.path)
			m.clampCol()
			m.autoPlayGrid()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row, col := m.Cursor()
	before := m.grid

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
			m.clampCol()
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(displayRows)-1 {
			m.row++
			m.clampCol()
		}
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < tone.Cols(row)-1 {
			m.col++
		}
	case key.Matches(msg, m.keys.Inc):
		m.grid.Increment(row, col, 1)
	case key.Matches(msg, m.keys.Dec):
		m.grid.Decrement(row, col, 1)
	case key.Matches(msg, m.keys.Inc10):
		m.grid.Increment(row, col, 10)
	case key.Matches(msg, m.keys.Dec10):
		m.grid.Decrement(row, col, 10)
	case key.Matches(msg, m.keys.Max):
		m.grid.SetMax(row, col)
	case key.Matches(msg, m.keys.Min):
		m.grid.SetMin(row, col)
	case key.Matches(msg, m.keys.Play):
		m.playGrid()
		m.status = "playing"
	case key.Matches(msg, m.keys.Save):
		if m.store == nil || m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.saveTone())
	case key.Matches(msg, m.keys.Open):
		m.state = StateFilePicker
		m.err = nil
		return m, m.filePicker.Init()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	if m.grid != before {
		debug.Log("tui", "%s %s = %d", tone.RowName(row), tone.ColName(row, col), m.grid.Get(row, col))
		m.status = ""
		m.autoPlayGrid()
	}
	return m, nil
}

func (m *Model) clampCol() {
	if n := tone.Cols(displayRows[m.row]); m.col >= n {
		m.col = n - 1
	}
}

func (m Model) playGrid() {
	if m.player != nil {
		m.player.Play(m.grid)
	}
}

func (m Model) autoPlayGrid() {
	if m.autoPlay {
		m.playGrid()
	}
}

func (m Model) saveTone() tea.Cmd {
	g := m.grid
	st := m.store
	return func() tea.Msg {
		path, err := st.SaveTone(converter.DefaultDescription, g)
		return savedMsg{path: path, err: err}
	}
}

func (m Model) loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		var (
			g   tone.Grid
			err error
		)
		if m.store != nil {
			g, err = m.store.Load(path)
		} else {
			g, err = store.New(filepath.Dir(path)).Load(path)
		}
		return loadedMsg{grid: g, path: path, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" YM2151 TONE EDITOR "))
	s.WriteString("\n")

	if m.state == StateFilePicker {
		s.WriteString(m.viewFilePicker())
		return s.String()
	}

	s.WriteString(boxStyle.Render(m.viewGrid()))
	s.WriteString("\n")
	s.WriteString(m.viewStatus())
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

func (m Model) viewGrid() string {
	var s strings.Builder
	cursorRow, cursorCol := m.Cursor()

	for i, row := range displayRows {
		if row == tone.ChRow {
			s.WriteString("\n")
		}
		if i == 0 || row == tone.ChRow {
			s.WriteString("    ")
			for col := 0; col < tone.Cols(row); col++ {
				s.WriteString(mutedStyle.Render(fmt.Sprintf("%4s", tone.ColName(row, col))))
			}
			s.WriteString("\n")
		}

		s.WriteString(labelStyle.Render(fmt.Sprintf("%-4s", tone.RowName(row))))
		for col := 0; col < tone.Cols(row); col++ {
			cell := fmt.Sprintf("%4d", m.grid.Get(row, col))
			if row == cursorRow && col == cursorCol {
				s.WriteString(cursorStyle.Render(cell))
			} else {
				s.WriteString(cellStyle.Render(cell))
			}
		}
		s.WriteString("\n")
	}

	return s.String()
}

func (m Model) viewStatus() string {
	row, col := m.Cursor()
	info := fmt.Sprintf("%s %s = %d (0-%d)", tone.RowName(row), tone.ColName(row, col),
		m.grid.Get(row, col), tone.ColMax(row, col))
	if row == tone.ChRow && col == int(tone.ChNote) {
		note := m.grid.Ch(tone.ChNote)
		kc, _ := pitch.MIDIToKCKF(note)
		info += fmt.Sprintf("  %s KC=%02X", pitch.NoteName(note), kc)
	}

	var s strings.Builder
	s.WriteString(statusStyle.Render(info))
	s.WriteString("\n")

	switch {
	case m.busy:
		s.WriteString(m.spinner.View() + " working...")
	case m.err != nil:
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	case m.status != "":
		s.WriteString(mutedStyle.Render(m.status))
	}
	return s.String()
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" OPEN TONE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render("esc: back to editor"))

	return s.String()
}

// Run starts the TUI application
func Run(cfg *config.Config) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	st := store.New(cfg.ToneDir)
	player := playback.NewPlayer(playback.NewPipeSender(cfg.PlaybackPipe))

	p := tea.NewProgram(New(cfg, st, player), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
