package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner is an activity indicator followed by a status line.
type Spinner struct {
	spinner spinner.Model
	message string
	done    bool
	success bool
	result  string
	styles  spinnerStyles
}

type spinnerStyles struct {
	Message lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func defaultSpinnerStyles() spinnerStyles {
	return spinnerStyles{
		Message: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Spinner{
		spinner: s,
		message: message,
		styles:  defaultSpinnerStyles(),
	}
}

// Init starts the tick loop.
func (s Spinner) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update advances the animation until the spinner is done.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	switch msg := msg.(type) {
	case SpinnerDoneMsg:
		s.done = true
		s.success = msg.Success
		s.result = msg.Result
		return s, nil
	case spinner.TickMsg:
		if s.done {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

// View renders the spinner line.
func (s Spinner) View() string {
	if s.done {
		if s.success {
			return s.styles.Success.Render("✓ " + s.result)
		}
		return s.styles.Error.Render("✗ " + s.result)
	}
	return s.spinner.View() + " " + s.styles.Message.Render(s.message)
}

// SpinnerDoneMsg stops the spinner and replaces it with a result line.
type SpinnerDoneMsg struct {
	Success bool
	Result  string
}

// SpinnerDone creates a success message.
func SpinnerDone(result string) SpinnerDoneMsg {
	return SpinnerDoneMsg{Success: true, Result: result}
}

// SpinnerFailed creates a failure message.
func SpinnerFailed(result string) SpinnerDoneMsg {
	return SpinnerDoneMsg{Success: false, Result: result}
}

// SetMessage updates the status line.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// IsDone returns true if the spinner is done.
func (s Spinner) IsDone() bool {
	return s.done
}

// IsSuccess returns true if the spinner completed successfully.
func (s Spinner) IsSuccess() bool {
	return s.success
}
