package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deveworld/picengine/internal/diagnostics"
)

// statusMsg reports one step's diagnostic record to the status model,
// or carries a terminal error/completion signal. Grounded on the
// bubbletea message pattern arx-os-arxos/cmd/arx/tui/models/dashboard.go
// uses for its own periodic update ticks.
type statusMsg struct {
	step   int
	record diagnostics.ScalarRecord
	err    error
	done   bool
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// statusModel is the live run-status display shown while the time loop
// advances. It only renders the latest statusMsg it has received; the
// run loop itself lives in a separate goroutine and feeds this model
// over the channel wired up in runMain.
type statusModel struct {
	patchCount int
	lastStep   int
	lastRecord diagnostics.ScalarRecord
	err        error
	done       bool
}

func newStatusModel(patchCount int) statusModel {
	return statusModel{patchCount: patchCount}
}

func (m statusModel) Init() tea.Cmd {
	return nil
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if msg.done {
			m.done = true
			return m, tea.Quit
		}
		m.lastStep = msg.step
		m.lastRecord = msg.record
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m statusModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("picengine run") + "\n")
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("patches:"), m.patchCount)
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("step:"), m.lastStep)
	fmt.Fprintf(&b, "%s %.6g\n", labelStyle.Render("time:"), m.lastRecord.Time)
	fmt.Fprintf(&b, "%s %.6g\n", labelStyle.Render("total energy:"), m.lastRecord.TotalEnergy)
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("particle count:"), m.lastRecord.ParticleCount)
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	if m.done {
		b.WriteString(labelStyle.Render("run complete, press q to exit") + "\n")
	} else {
		b.WriteString(labelStyle.Render("press q to quit") + "\n")
	}
	return b.String()
}
