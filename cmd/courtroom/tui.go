package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	orchestration "github.com/satyavak/courtroom-core/core"
	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/scenarios"
)

// courtroomEngine is the part of the orchestrator the terminal UI drives.
type courtroomEngine interface {
	Snapshot() orchestration.Session
	Scenarios() []scenarios.Scenario
	Themes() []scenarios.Theme
	SelectScenarioByKey(key string) error
	SelectRole(role courtroom.Speaker) error
	SelectTheme(key string) error
	SelectInputMode(mode courtroom.InputMode) error
	SubmitArgument(text string) error
	ToggleListening() error
	EndSession()
	IsMuted() bool
}

type engineEventMsg struct {
	event events.Event
}

type actionResultMsg struct {
	err error
}

// preselection carries the choices given on the command line.
type preselection struct {
	scenario string
	role     courtroom.Speaker
	theme    string
	input    courtroom.InputMode
}

type option struct {
	label       string
	description string
	selectFn    func(courtroomEngine) error
}

const defaultWidth = 80

type model struct {
	engine    courtroomEngine
	setMuted  func(bool)
	preselect preselection

	session    orchestration.Session
	cursor     int
	input      textinput.Model
	spinner    spinner.Model
	transcript string
	notice     string
	width      int
}

func newModel(engine courtroomEngine, setMuted func(bool), preselect preselection) model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Placeholder = "Make your argument"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		engine:    engine,
		setMuted:  setMuted,
		preselect: preselect,
		session:   engine.Snapshot(),
		input:     input,
		spinner:   sp,
		width:     defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.preselectCmd())
}

// preselectCmd applies the command line choices in order. Engine calls run
// inside commands so the events they emit can reach the program.
func (m model) preselectCmd() tea.Cmd {
	var steps []tea.Cmd
	if key := m.preselect.scenario; key != "" {
		steps = append(steps, m.do(func() error { return m.engine.SelectScenarioByKey(key) }))
	}
	if role := m.preselect.role; role != "" {
		steps = append(steps, m.do(func() error { return m.engine.SelectRole(role) }))
	}
	if theme := m.preselect.theme; theme != "" {
		steps = append(steps, m.do(func() error { return m.engine.SelectTheme(theme) }))
	}
	if mode := m.preselect.input; mode != "" {
		steps = append(steps, m.do(func() error { return m.engine.SelectInputMode(mode) }))
	}
	if len(steps) == 0 {
		return nil
	}
	return tea.Sequence(steps...)
}

func (m model) do(action func() error) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{err: action()}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(10, msg.Width-4)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case engineEventMsg:
		m.handleEvent(msg.event)
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *model) handleEvent(event events.Event) {
	switch e := event.(type) {
	case events.ListeningStarted:
		m.transcript = ""
		m.notice = ""
	case events.TranscriptUpdated:
		m.transcript = e.Transcript
	case events.ListeningStopped:
		m.transcript = ""
	case events.SpeechUnavailable:
		m.notice = "Voice input is unavailable, type your argument instead."
	case events.SpeechFailed:
		m.notice = fmt.Sprintf("Speech recognition failed: %v", e.Err)
	}
	m.refresh()
}

func (m *model) refresh() {
	previous := m.session.State
	m.session = m.engine.Snapshot()
	if m.session.State != previous {
		m.cursor = 0
		if m.session.State == courtroom.StateSelection {
			m.input.Reset()
			m.transcript = ""
		}
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+e":
		m.notice = ""
		return m, m.do(func() error { m.engine.EndSession(); return nil })
	case "ctrl+t":
		m.setMuted(!m.engine.IsMuted())
		return m, nil
	}

	switch m.session.State {
	case courtroom.StateRunning:
		return m.handleRunningKey(msg)
	case courtroom.StateVerdict:
		if msg.Type == tea.KeyEnter {
			return m, m.do(func() error { m.engine.EndSession(); return nil })
		}
		return m, nil
	}

	options := m.options()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(options)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(options) {
			m.notice = ""
			selected := options[m.cursor]
			engine := m.engine
			return m, m.do(func() error { return selected.selectFn(engine) })
		}
	}
	return m, nil
}

func (m model) handleRunningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	// Keep the draft while the court has the floor.
	if m.session.IsAwaitingResponse || m.session.NextActor != courtroom.ActorUser {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		if m.session.InputMode == courtroom.InputModeVoice {
			return m, m.do(m.engine.ToggleListening)
		}
		return m, nil
	}

	m.input.Reset()
	m.notice = ""
	return m, m.do(func() error { return m.engine.SubmitArgument(text) })
}

// options lists the choices of the current selection state.
func (m model) options() []option {
	var options []option
	switch m.session.State {
	case courtroom.StateSelection:
		for _, scenario := range m.engine.Scenarios() {
			key := scenario.Key
			options = append(options, option{
				label:       scenario.Title,
				description: scenario.Description,
				selectFn:    func(e courtroomEngine) error { return e.SelectScenarioByKey(key) },
			})
		}
	case courtroom.StateRoleSelection:
		for _, role := range []courtroom.Speaker{courtroom.SpeakerDefense, courtroom.SpeakerProsecution} {
			options = append(options, option{
				label:    roleLabel(role),
				selectFn: func(e courtroomEngine) error { return e.SelectRole(role) },
			})
		}
	case courtroom.StateThemeSelection:
		for _, theme := range m.engine.Themes() {
			key := theme.Key
			options = append(options, option{
				label:       theme.Name,
				description: theme.Description,
				selectFn:    func(e courtroomEngine) error { return e.SelectTheme(key) },
			})
		}
	case courtroom.StateInputMethodSelection:
		options = []option{
			{label: "Type", description: "Write each argument", selectFn: func(e courtroomEngine) error { return e.SelectInputMode(courtroom.InputModeText) }},
			{label: "Speak", description: "Press enter to start and stop the microphone", selectFn: func(e courtroomEngine) error { return e.SelectInputMode(courtroom.InputModeVoice) }},
		}
	}
	return options
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	selectedStyle  = lipgloss.NewStyle().Bold(true)
	verdictStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	speakerPalette = map[courtroom.Speaker]lipgloss.Color{
		courtroom.SpeakerJudge:       lipgloss.Color("220"),
		courtroom.SpeakerDefense:     lipgloss.Color("75"),
		courtroom.SpeakerProsecution: lipgloss.Color("167"),
	}
	themeAccents = map[string]lipgloss.Color{
		"classic_mahogany":  lipgloss.Color("#A0522D"),
		"modern_metropolis": lipgloss.Color("#4682B4"),
		"district_court":    lipgloss.Color("#6B8E23"),
	}
)

func roleLabel(role courtroom.Speaker) string {
	switch role {
	case courtroom.SpeakerDefense:
		return "Defense Counsel"
	case courtroom.SpeakerProsecution:
		return "Prosecutor"
	case courtroom.SpeakerJudge:
		return "Judge"
	}
	return string(role)
}

func (m model) accent() lipgloss.Style {
	color, ok := themeAccents[m.session.Theme]
	if !ok {
		color = lipgloss.Color("252")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.accent().Render("Courtroom"))
	if m.session.Scenario.Title != "" {
		b.WriteString(subtleStyle.Render(" · " + m.session.Scenario.Title))
	}
	b.WriteString("\n\n")

	switch m.session.State {
	case courtroom.StateRunning, courtroom.StateVerdict:
		b.WriteString(m.hearingView())
	default:
		b.WriteString(m.selectionView())
	}

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.wrap(m.notice)) + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render(m.help()))
	return b.String()
}

func (m model) selectionView() string {
	var b strings.Builder

	switch m.session.State {
	case courtroom.StateSelection:
		b.WriteString(titleStyle.Render("Choose a case"))
	case courtroom.StateRoleSelection:
		b.WriteString(titleStyle.Render("Choose your side"))
	case courtroom.StateThemeSelection:
		b.WriteString(titleStyle.Render("Choose a courtroom"))
	case courtroom.StateInputMethodSelection:
		b.WriteString(titleStyle.Render("How will you argue?"))
	}
	b.WriteString("\n\n")

	for i, opt := range m.options() {
		line := "  " + opt.label
		if i == m.cursor {
			line = selectedStyle.Render("> " + opt.label)
		}
		b.WriteString(line + "\n")
		if opt.description != "" {
			b.WriteString(subtleStyle.Render(indent(m.wrap(opt.description), "    ")) + "\n")
		}
	}
	return b.String()
}

func (m model) hearingView() string {
	var b strings.Builder

	for _, turn := range m.session.History {
		b.WriteString(m.turnView(turn) + "\n\n")
	}

	switch {
	case m.session.State == courtroom.StateVerdict:
		verdict := titleStyle.Render("Verdict") + "\n" + m.wrap(m.session.VerdictReasoning)
		b.WriteString(verdictStyle.Render(verdict) + "\n")
	case m.session.IsAwaitingResponse:
		b.WriteString(m.spinner.View() + " The court is deliberating...\n")
	case m.session.NextActor == courtroom.ActorUser:
		if m.transcript != "" {
			b.WriteString(subtleStyle.Render(m.wrap("Hearing: "+m.transcript)) + "\n")
		}
		b.WriteString(m.input.View() + "\n")
	}
	return b.String()
}

func (m model) turnView(turn courtroom.Turn) string {
	label := roleLabel(turn.Speaker)
	if turn.Speaker == m.session.UserRole {
		label += " (you)"
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(speakerPalette[turn.Speaker])
	return style.Render(label) + "\n" + m.wrap(turn.Dialogue)
}

func (m model) help() string {
	sound := "on"
	if m.engine.IsMuted() {
		sound = "off"
	}

	keys := []string{}
	switch m.session.State {
	case courtroom.StateRunning:
		if m.session.InputMode == courtroom.InputModeVoice {
			keys = append(keys, "enter on empty input: talk")
		} else {
			keys = append(keys, "enter: submit")
		}
	case courtroom.StateVerdict:
		keys = append(keys, "enter: new hearing")
	default:
		keys = append(keys, "↑/↓: move", "enter: select")
	}
	keys = append(keys, "ctrl+e: end session", "ctrl+t: sound "+sound, "ctrl+c: quit")
	return strings.Join(keys, " · ")
}

func (m model) wrap(text string) string {
	return wordwrap.String(text, max(20, m.width-4))
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
