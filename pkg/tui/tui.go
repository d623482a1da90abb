// Package tui provides a terminal user interface for inspecting MIDI
// files and driving node-graph execution.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesa08/midianimator-go/pkg/appstate"
	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/graph/nodes"
	"github.com/jamesa08/midianimator-go/pkg/midi"
	"github.com/jamesa08/midianimator-go/pkg/transport"
)

// Acid-inspired color scheme (303/acid aesthetic)
var (
	// Primary colors - acid green and silver
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// MenuItem represents a menu option: either parsing a MIDI file for
// inspection, or executing a saved project's graph.
type MenuItem struct {
	Title        string
	Description  string
	Action       string // "parse_midi" or "execute_project"
	AllowedTypes []string
}

var menuItems = []MenuItem{
	{Title: "Parse MIDI file", Description: "Load a .mid file and preview its tracks and duration", Action: "parse_midi", AllowedTypes: []string{".mid", ".midi"}},
	{Title: "Execute project", Description: "Load a .mkproj file and run its node graph", Action: "execute_project", AllowedTypes: []string{".mkproj"}},
	{Title: "Exit", Description: "Exit the application"},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	action       MenuItem
	resultText   string
	err          error
	width        int
	height       int

	store     *appstate.Store
	transport *transport.Server
	parser    *midi.Parser
	executor  *graph.Executor
}

// actionDoneMsg signals parse/execute completion.
type actionDoneMsg struct {
	resultText string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model wired to a fresh AppState store and
// Transport, with the default node catalog registered.
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi", ".mkproj"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	store := appstate.NewStore()
	t := transport.NewServer()

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
		store:      store,
		transport:  t,
		parser:     midi.NewParser(),
		executor:   graph.NewExecutor(nodes.DefaultRegistry(store, t)),
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performAction())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.state = StateResult
		m.resultText = msg.resultText
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.action = menuItems[m.menuIndex]
		m.state = StateFilePicker
		m.filePicker.AllowedTypes = m.action.AllowedTypes
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.resultText = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performAction() tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(m.selectedFile)
		if err != nil {
			return actionDoneMsg{err: err}
		}

		switch m.action.Action {
		case "parse_midi":
			file, err := m.parser.Parse(data)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			stats := nodes.MIDIFileStatistics(file.Tracks)
			return actionDoneMsg{resultText: fmt.Sprintf("%s\ntracks: %s", stats, strings.Join(file.TrackNames(), ", "))}

		case "execute_project":
			f, err := os.Open(m.selectedFile)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			defer func() { _ = f.Close() }()

			snap, err := m.store.LoadProject(f)
			if err != nil {
				return actionDoneMsg{err: err}
			}

			instance, err := graph.DecodeInstance(snap.RFInstance)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			result, err := m.executor.ExecuteGraph(instance, false)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{resultText: fmt.Sprintf("executed %d node(s) in %s", len(result.Results), result.Duration)}
		}

		return actionDoneMsg{err: fmt.Errorf("tui: unknown action %q", m.action.Action)}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" MIDI ANIMATOR "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT %s ", strings.ToUpper(m.action.Title))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s %s %s...\n", m.spinner.View(), m.action.Title, filepath.Base(m.selectedFile)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.action.Title, m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" RESULT "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ done"))
		s.WriteString("\n\n")
		s.WriteString(statusStyle.Render(m.resultText))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   __  __ ___ ____ ___    _    _   _ ___ __  __    _  _____ ___  ____
  |  \/  |_ _|  _ \_ _|  / \  | \ | |_ _|  \/  |  / \|_   _/ _ \|  _ \
  | |\/| || || | | | |  / _ \ |  \| || || |\/| | / _ \ | || | | | |_) |
  | |  | || || |_| | | / ___ \| |\  || || |  | |/ ___ \| || |_| |  _ <
  |_|  |_|___|____/___/_/   \_\_| \_|___|_|  |_/_/   \_\_| \___/|_| \_\
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
