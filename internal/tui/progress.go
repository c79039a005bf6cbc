package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/httpsify/internal/tui/components"
	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// FileDoneMsg reports one finished rewrite target.
type FileDoneMsg httpsify.FileResult

// PassDoneMsg ends the view with the pass report.
type PassDoneMsg struct {
	Report httpsify.Report
	Err    error
}

// Progress is the bubbletea model of a running traversal pass.
type Progress struct {
	spinner   components.Spinner
	keys      KeyMap
	root      string
	dryRun    bool
	matched   int
	rewritten int
	unchanged int
	failed    int
	last      string
	done      bool
	stopped   bool
	report    httpsify.Report
	err       error
	onStop    func()
}

// NewProgress creates the model. onStop runs when the user asks to stop.
func NewProgress(root string, dryRun bool, onStop func()) Progress {
	return Progress{
		spinner: components.NewSpinner("scanning " + root),
		keys:    DefaultKeyMap(),
		root:    root,
		dryRun:  dryRun,
		onStop:  onStop,
	}
}

// Init implements tea.Model.
func (p Progress) Init() tea.Cmd {
	return p.spinner.Init()
}

// Update implements tea.Model.
func (p Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, p.keys.Quit) && !p.stopped && !p.done {
			p.stopped = true
			p.spinner.SetMessage("stopping, waiting for in-flight files")
			if p.onStop != nil {
				p.onStop()
			}
		}
		return p, nil

	case FileDoneMsg:
		p.matched++
		switch msg.Status {
		case httpsify.StatusRewritten, httpsify.StatusWouldRewrite:
			p.rewritten++
		case httpsify.StatusUnchanged:
			p.unchanged++
		case httpsify.StatusFailed:
			p.failed++
		}
		p.last = msg.Path
		if !p.stopped {
			p.spinner.SetMessage(fmt.Sprintf("[%d] %s", msg.Seq, msg.Path))
		}
		return p, nil

	case PassDoneMsg:
		p.done = true
		p.report = msg.Report
		p.err = msg.Err
		var done components.SpinnerDoneMsg
		if msg.Err != nil {
			done = components.SpinnerFailed(msg.Report.Summary())
		} else {
			done = components.SpinnerDone(msg.Report.Summary())
		}
		p.spinner, _ = p.spinner.Update(done)
		return p, tea.Quit
	}

	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return p, cmd
}

// View implements tea.Model.
func (p Progress) View() string {
	var b strings.Builder

	title := "httpsify " + SymbolArrowRight + " " + p.root
	if p.dryRun {
		title += " (dry run)"
	}
	b.WriteString(TitleStyle.Render(title) + "\n\n")

	rewrittenLabel := "rewritten"
	if p.dryRun {
		rewrittenLabel = "would write"
	}
	b.WriteString(counter("matched", p.matched, CountStyle))
	b.WriteString(counter(rewrittenLabel, p.rewritten, SuccessStyle))
	b.WriteString(counter("unchanged", p.unchanged, CountStyle))
	b.WriteString(counter("failed", p.failed, failedStyle(p.failed)))
	b.WriteString("\n")

	b.WriteString(p.spinner.View() + "\n")

	if p.done {
		for i, err := range p.report.Errors {
			if i == maxErrorsShown {
				b.WriteString(ErrorStyle.Render(fmt.Sprintf("  %s %d more, listed on stderr", SymbolBullet, len(p.report.Errors)-i)) + "\n")
				break
			}
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  %s %v", SymbolCross, err)) + "\n")
		}
		return b.String()
	}

	if p.last != "" {
		b.WriteString(PathStyle.Render("last: "+p.last) + "\n")
	}
	b.WriteString(HelpStyle.Render(p.keys.HelpText()) + "\n")
	return b.String()
}

// Done reports whether the pass finished.
func (p Progress) Done() bool { return p.done }

// Err returns the pass error once done.
func (p Progress) Err() error { return p.err }

const maxErrorsShown = 5

func counter(label string, n int, style lipgloss.Style) string {
	return LabelStyle.Render(label) + style.Render(fmt.Sprintf("%d", n)) + "\n"
}

func failedStyle(n int) lipgloss.Style {
	if n > 0 {
		return ErrorStyle
	}
	return CountStyle
}

// Display runs a Progress model in its own bubbletea program.
type Display struct {
	program *tea.Program
}

// NewDisplay creates a display drawing to out.
func NewDisplay(root string, dryRun bool, onStop func(), out io.Writer, opts ...tea.ProgramOption) *Display {
	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	return &Display{program: tea.NewProgram(NewProgress(root, dryRun, onStop), opts...)}
}

// Observe forwards a finished file to the view. Safe for concurrent use.
func (d *Display) Observe(result httpsify.FileResult) {
	d.program.Send(FileDoneMsg(result))
}

// Finish ends the view with the pass report.
func (d *Display) Finish(report httpsify.Report, err error) {
	d.program.Send(PassDoneMsg{Report: report, Err: err})
}

// Run blocks until the pass finishes and returns the final model.
func (d *Display) Run() (Progress, error) {
	m, err := d.program.Run()
	if err != nil {
		return Progress{}, err
	}
	p, _ := m.(Progress)
	return p, nil
}
