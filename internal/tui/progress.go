package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// finishedMsg ends the progress display. err nil means success and summary
// is the line left on screen.
type finishedMsg struct {
	summary string
	err     error
}

// progressModel draws a spinner with the elapsed time of a running call and
// quits once the call reports back.
type progressModel struct {
	spinner  spinner.Model
	message  string
	started  time.Time
	now      func() time.Time
	finished *finishedMsg
}

func newProgressModel(message string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return progressModel{
		spinner: s,
		message: message,
		started: time.Now(),
		now:     time.Now,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case finishedMsg:
		m.finished = &msg
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.finished != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if f := m.finished; f != nil {
		if f.err != nil {
			return ErrorStyle.Render(SymbolCross+" "+f.err.Error()) + "\n"
		}
		return SuccessStyle.Render(SymbolCheck+" "+f.summary) + "\n"
	}
	elapsed := m.now().Sub(m.started).Truncate(time.Second)
	return m.spinner.View() + " " + MessageStyle.Render(m.message) + " " +
		ElapsedStyle.Render("("+elapsed.String()+")") + "\n"
}
