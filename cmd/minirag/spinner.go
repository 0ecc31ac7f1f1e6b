package main

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// stopSpinnerMsg asks the spinner program to clear its line and exit.
type stopSpinnerMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(stderrStyles.spinner)),
		label:   label,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopSpinnerMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + stderrStyles.dim.Render(m.label)
}

// startSpinner renders a spinner on out until the returned stop function is
// called. stop blocks until the line is cleared.
func startSpinner(out io.Writer, label string) (stop func()) {
	p := tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	return func() {
		p.Send(stopSpinnerMsg{})
		<-done
	}
}
