// Package tui is the interface layer: a terminal front end that collects
// the run configuration, launches the capture pipeline as a subordinate
// process and renders its log stream with a milestone-driven progress bar.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/schedule-capture-service/internal/supervisor"
)

const maxLogLines = 200

// Field indices of the configuration form.
const (
	fieldUsername = iota
	fieldPassword
	fieldFullName
	fieldProgram
	fieldTargetWeek
	fieldMessage
	fieldSignature
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Identifiant",
	"Mot de passe",
	"Nom Prénom",
	"Promotion",
	"Semaine cible (vide = courante)",
	"Message",
	"Fichier signature",
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(34)
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	logStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type startedMsg struct{ proc *supervisor.Process }
type startFailedMsg struct{ err error }
type lineMsg supervisor.Line
type exitMsg supervisor.ExitStatus

// Model is the bubbletea model for the supervisor UI.
type Model struct {
	inputs [fieldCount]textinput.Model
	focus  int

	bar     progress.Model
	percent float64
	step    string

	logs    []string
	running bool
	failed  bool
	proc    *supervisor.Process

	command      string // pipeline binary
	settingsPath string
	width        int
}

// New builds the form pre-filled from persisted settings.
func New(command, settingsPath string, s *supervisor.Settings) Model {
	m := Model{
		command:      command,
		settingsPath: settingsPath,
		bar:          progress.New(progress.WithDefaultGradient()),
		step:         "En attente",
	}
	values := [fieldCount]string{
		s.Username, s.Password, s.FullName, s.Program,
		s.TargetWeek, s.Message, s.SignatureFile,
	}
	for i := range m.inputs {
		in := textinput.New()
		in.SetValue(values[i])
		in.CharLimit = 128
		if i == fieldPassword {
			in.EchoMode = textinput.EchoPassword
		}
		m.inputs[i] = in
	}
	m.inputs[0].Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(60, msg.Width-6)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab", "enter", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case "ctrl+r":
			if m.running {
				m.logs = append(m.logs, "Génération déjà en cours")
				return m, nil
			}
			return m, m.start()
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd

	case startedMsg:
		m.proc = msg.proc
		m.running = true
		m.failed = false
		m.percent = 15
		m.step = "Lancement du script"
		return m, waitLine(msg.proc)

	case startFailedMsg:
		m.running = false
		m.failed = true
		m.step = "Erreur lors du lancement"
		m.logs = m.appendLog(errStyle.Render(msg.err.Error()))
		return m, nil

	case lineMsg:
		line := supervisor.Line(msg)
		m.logs = m.appendLog(fmt.Sprintf("[%s] %s", strings.ToUpper(line.Stream), line.Text))
		if ms, ok := supervisor.DetectMilestone(line.Text); ok {
			m.percent = float64(ms.Percent)
			m.step = ms.Label
		}
		return m, waitLine(m.proc)

	case exitMsg:
		m.running = false
		if msg.Code == 0 {
			m.percent = 100
			m.step = "Génération terminée avec succès"
		} else {
			m.failed = true
			m.percent = 0
			m.step = fmt.Sprintf("Échec de la génération (code %d)", msg.Code)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Génération PDF emploi du temps"))
	b.WriteString("\n\n")

	for i := range m.inputs {
		b.WriteString(labelStyle.Render(fieldLabels[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.percent / 100))
	b.WriteString("\n")
	if m.failed {
		b.WriteString(errStyle.Render(m.step))
	} else {
		b.WriteString(stepStyle.Render(m.step))
	}
	b.WriteString("\n\n")

	tail := m.logs
	if len(tail) > 12 {
		tail = tail[len(tail)-12:]
	}
	b.WriteString(logStyle.Render(strings.Join(tail, "\n")))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: champ suivant • ctrl+r: générer • ctrl+c: quitter"))
	return b.String()
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m Model) appendLog(line string) []string {
	logs := append(m.logs, line)
	if len(logs) > maxLogLines {
		logs = logs[len(logs)-maxLogLines:]
	}
	return logs
}

// start persists the form and spawns the pipeline with the form values
// overriding the environment.
func (m Model) start() tea.Cmd {
	s := m.settings()
	command := m.command
	settingsPath := m.settingsPath
	return func() tea.Msg {
		if err := s.Save(settingsPath); err != nil {
			return startFailedMsg{err: fmt.Errorf("could not save settings: %w", err)}
		}
		proc, err := supervisor.Spawn(context.Background(), command, s.Env())
		if err != nil {
			return startFailedMsg{err: err}
		}
		return startedMsg{proc: proc}
	}
}

func (m Model) settings() *supervisor.Settings {
	return &supervisor.Settings{
		Username:      m.inputs[fieldUsername].Value(),
		Password:      m.inputs[fieldPassword].Value(),
		FullName:      m.inputs[fieldFullName].Value(),
		Program:       m.inputs[fieldProgram].Value(),
		TargetWeek:    m.inputs[fieldTargetWeek].Value(),
		Message:       m.inputs[fieldMessage].Value(),
		SignatureFile: m.inputs[fieldSignature].Value(),
	}
}

// waitLine forwards the next relay event to the update loop: one log line,
// or the exit status once the line channel drains.
func waitLine(proc *supervisor.Process) tea.Cmd {
	return func() tea.Msg {
		if line, ok := <-proc.Lines; ok {
			return lineMsg(line)
		}
		return exitMsg(<-proc.Done)
	}
}
