package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	composer "github.com/kivria40/foxdot-composer/core"
	"github.com/kivria40/foxdot-composer/core/conversations"
	"github.com/kivria40/foxdot-composer/core/events"
	"github.com/kivria40/foxdot-composer/core/session"
	"github.com/muesli/reflow/wordwrap"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	reasoningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	callStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	codeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")).Padding(0, 1)
)

type engineEventMsg struct{ event events.Event }

type turnFinishedMsg struct{ err error }

type model struct {
	engine      *composer.Engine
	events      chan events.Event
	sessionFile string

	vp    viewport.Model
	input textinput.Model

	width  int
	height int
	ready  bool
	busy   bool

	// log is shared across model copies made by the runtime.
	log *strings.Builder
}

func newModel(engine *composer.Engine, eventCh chan events.Event, sessionFile string) model {
	input := textinput.New()
	input.Placeholder = "Describe the music you want, or /help for commands"
	input.Prompt = "› "
	input.Focus()

	m := model{
		engine:      engine,
		events:      eventCh,
		sessionFile: sessionFile,
		input:       input,
		log:         &strings.Builder{},
	}
	m.log.WriteString(systemStyle.Render("FoxDot composer ready. Tell it what to play.") + "\n")
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return engineEventMsg{event: <-m.events}
	}
}

func (m model) processMessage(message string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.engine.ProcessMessage(context.Background(), message)
		return turnFinishedMsg{err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			if strings.HasPrefix(text, "/") {
				return m.runCommand(text)
			}
			m.busy = true
			return m, m.processMessage(text)
		}

	case engineEventMsg:
		m.renderEvent(msg.event)
		m.refresh()
		return m, m.waitForEvent()

	case turnFinishedMsg:
		m.busy = false
		// Turn outcome is already in the transcript via done/error events.
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.vp, cmd = m.vp.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) runCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	command := fields[0]
	argument := ""
	if len(fields) > 1 {
		argument = fields[1]
	}

	switch command {
	case "/help":
		m.appendLine(systemStyle.Render("commands: /state /code /stop /save [path] /load [path] /quit"))
	case "/state":
		m.appendLine(codeStyle.Render(m.engine.Session().Describe()))
	case "/code":
		m.appendLine(codeStyle.Render(m.engine.Session().FullCode()))
	case "/stop":
		result := m.engine.StopAll(context.Background())
		m.appendLine(callStyle.Render(fmt.Sprintf("⏹ stop_all → %s", result.Status)))
	case "/save":
		path := m.snapshotPath(argument)
		if err := m.engine.Session().Save(path); err != nil {
			m.appendLine(errorStyle.Render("save failed: " + err.Error()))
		} else {
			m.appendLine(systemStyle.Render("session saved to " + path))
		}
	case "/load":
		path := m.snapshotPath(argument)
		snapshot, err := session.ReadSnapshot(path)
		if err != nil {
			m.appendLine(errorStyle.Render("load failed: " + err.Error()))
		} else {
			m.engine.Session().Restore(snapshot)
			m.appendLine(systemStyle.Render("session restored from " + path))
		}
	case "/quit":
		return *m, tea.Quit
	default:
		m.appendLine(errorStyle.Render("unknown command " + command))
	}

	m.refresh()
	return *m, nil
}

func (m *model) snapshotPath(argument string) string {
	if argument != "" {
		return argument
	}
	if m.sessionFile != "" {
		return m.sessionFile
	}
	return "session.json"
}

func (m *model) renderEvent(event events.Event) {
	switch event := event.(type) {
	case events.TurnStarted:
		m.appendLine("")
		m.appendLine(userStyle.Render("you ") + event.Message)
	case events.TurnConsolidated:
		m.appendLine(systemStyle.Render(fmt.Sprintf("(context consolidated, %d turns folded into the summary)", event.DroppedTurns)))
	case events.ReasoningStarted:
		m.log.WriteString(reasoningStyle.Render("· "))
	case events.ReasoningSegment:
		m.log.WriteString(reasoningStyle.Render(event.Segment))
	case events.ReasoningEnded:
		m.log.WriteString("\n")
	case events.NarrationSegment:
		m.log.WriteString(event.Segment)
	case events.NarrationEnded:
		m.log.WriteString("\n")
	case events.CallResolved:
		line := fmt.Sprintf("⚙ %s → %s", event.Name, event.Status)
		if event.Status == string(conversations.StatusError) {
			line += ": " + event.Error
			m.appendLine(errorStyle.Render(line))
		} else {
			m.appendLine(callStyle.Render(line))
			if event.Code != "" {
				m.appendLine(codeStyle.Render("  " + event.Code))
			}
		}
	case events.TurnError:
		m.appendLine(errorStyle.Render("✗ " + event.Error))
	}
}

func (m *model) appendLine(line string) {
	m.log.WriteString(line + "\n")
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(wordwrap.String(m.log.String(), m.vp.Width))
	m.vp.GotoBottom()
}

func (m model) statusBar() string {
	s := m.engine.Session()
	status := fmt.Sprintf("♪ %d bpm · %s %s · %d layers", s.Tempo(), s.Root(), s.Scale(), len(s.Layers()))
	if m.busy {
		status += " · composing…"
	}
	return statusStyle.Width(m.width).Render(status)
}

func (m model) View() string {
	if !m.ready {
		return "starting…"
	}
	return fmt.Sprintf("%s\n%s\n%s", m.vp.View(), m.statusBar(), m.input.View())
}
