// Package tui is the terminal focus timer. It drives a focus.Session with
// one-second bubbletea ticks and writes progress back through callbacks.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"blitzit/internal/focus"
	"blitzit/internal/model"
)

// SaveFunc persists the minutes worked on the task.
type SaveFunc func(minutes int) error

// CompleteFunc moves the task to Done.
type CompleteFunc func() error

// tickMsg carries the run it was scheduled for; ticks from an earlier run
// are dropped so a quick pause and resume never double counts.
type tickMsg struct {
	run int
}

// FocusModel is the full-screen focus view
type FocusModel struct {
	session   *focus.Session
	estimated int
	bar       progress.Model
	styles    *Styles
	save      SaveFunc
	complete  CompleteFunc
	run       int
	status    string
	err       error
	completed bool
	quitting  bool
}

func NewFocusModel(t model.Task, save SaveFunc, complete CompleteFunc) *FocusModel {
	return &FocusModel{
		session:   focus.StartSession(t),
		estimated: max(t.EstimatedTime, 0) * 60,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		styles:    NewStyles(),
		save:      save,
		complete:  complete,
	}
}

// Init starts the session running.
func (m *FocusModel) Init() tea.Cmd {
	return m.toggle()
}

func (m *FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.run != m.run || m.session.Paused {
			return m, nil
		}
		m.session.Tick()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-10, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "p":
			return m, m.toggle()

		case "s":
			m.persist("Progress saved")
			return m, nil

		case "c":
			m.session.Paused = true
			if !m.persist("") {
				return m, nil
			}
			if m.complete != nil {
				if err := m.complete(); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.completed = true
			m.quitting = true
			return m, tea.Quit

		case "q", "esc", "ctrl+c":
			m.session.Paused = true
			m.persist("")
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// toggle flips pause; pausing saves and resuming starts a fresh tick run.
func (m *FocusModel) toggle() tea.Cmd {
	if m.session.TogglePause() {
		m.persist("Paused, progress saved")
		return nil
	}
	m.run++
	m.status = ""
	return m.tick()
}

func (m *FocusModel) tick() tea.Cmd {
	run := m.run
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{run: run}
	})
}

func (m *FocusModel) persist(status string) bool {
	if m.save == nil {
		return true
	}
	if err := m.save(m.session.SaveProgress()); err != nil {
		m.err = err
		return false
	}
	m.err = nil
	m.status = status
	return true
}

// Completed reports whether the user finished the task from the timer.
func (m *FocusModel) Completed() bool { return m.completed }

// State is the session as it stands.
func (m *FocusModel) State() focus.State { return m.session.Snapshot() }

func (m *FocusModel) View() string {
	if m.quitting {
		return ""
	}
	state := m.session.Snapshot()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(state.Title))
	b.WriteString("\n")

	clock := m.styles.Clock
	if state.Overtime {
		clock = m.styles.Overtime
	}
	b.WriteString(clock.Render(focus.FormatClock(state.TimeLeftSeconds)))
	b.WriteString("  ")
	if state.Paused {
		b.WriteString(m.styles.Paused.Render("paused"))
	} else {
		b.WriteString(m.styles.Running.Render("focusing"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.percent(state)))
	b.WriteString("\n")
	b.WriteString(m.styles.Status.Render(fmt.Sprintf("%d min worked", state.MinutesWorked)))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("save failed: " + m.err.Error()))
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("Space: pause/resume • s: save • c: complete • q: quit"))
	return m.styles.Frame.Render(b.String())
}

func (m *FocusModel) percent(state focus.State) float64 {
	if m.estimated <= 0 {
		return 0
	}
	worked := float64(state.InitialActualSeconds + state.ElapsedSeconds)
	return min(worked/float64(m.estimated), 1)
}
