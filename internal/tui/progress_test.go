package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/httpsify/pkg/httpsify"
)

func update(t *testing.T, p Progress, msg tea.Msg) (Progress, tea.Cmd) {
	t.Helper()
	m, cmd := p.Update(msg)
	next, ok := m.(Progress)
	require.True(t, ok)
	return next, cmd
}

func TestProgress_CountsFileResults(t *testing.T) {
	p := NewProgress("site", false, nil)

	p, _ = update(t, p, FileDoneMsg{Seq: 1, Path: "site/a.html", Status: httpsify.StatusRewritten})
	p, _ = update(t, p, FileDoneMsg{Seq: 2, Path: "site/b.html", Status: httpsify.StatusUnchanged})
	p, _ = update(t, p, FileDoneMsg{Seq: 3, Path: "site/c.html", Status: httpsify.StatusFailed})

	assert.Equal(t, 3, p.matched)
	assert.Equal(t, 1, p.rewritten)
	assert.Equal(t, 1, p.unchanged)
	assert.Equal(t, 1, p.failed)

	view := p.View()
	assert.Contains(t, view, "httpsify")
	assert.Contains(t, view, "site/c.html")
	assert.Contains(t, view, "[3]")
}

func TestProgress_DryRunLabels(t *testing.T) {
	p := NewProgress("site", true, nil)
	p, _ = update(t, p, FileDoneMsg{Seq: 1, Path: "site/a.html", Status: httpsify.StatusWouldRewrite})

	assert.Equal(t, 1, p.rewritten)
	assert.Contains(t, p.View(), "dry run")
	assert.Contains(t, p.View(), "would write")
}

func TestProgress_QuitKeyStopsOnce(t *testing.T) {
	stops := 0
	p := NewProgress("site", false, func() { stops++ })

	p, cmd := update(t, p, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd, "view keeps running until the pass reports back")
	p, _ = update(t, p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Equal(t, 1, stops)
	assert.True(t, p.stopped)
	assert.Contains(t, p.View(), "stopping")
}

func TestProgress_PassDoneQuits(t *testing.T) {
	p := NewProgress("site", false, nil)
	report := httpsify.Report{Root: "site", Directories: 2, Matched: 1, Rewritten: 1}

	p, cmd := update(t, p, PassDoneMsg{Report: report})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, p.Done())
	assert.NoError(t, p.Err())
	assert.Contains(t, p.View(), SymbolCheck)
	assert.NotContains(t, p.View(), "last:")
}

func TestProgress_PassDoneListsErrors(t *testing.T) {
	p := NewProgress("site", false, nil)
	var errs []error
	for i := 0; i < maxErrorsShown+2; i++ {
		errs = append(errs, httpsify.NewRewriteError(httpsify.ReadError, "site/x.html", errors.New("denied")))
	}
	report := httpsify.Report{Root: "site", Errors: errs}

	p, _ = update(t, p, PassDoneMsg{Report: report, Err: report.Err()})

	view := p.View()
	assert.Error(t, p.Err())
	assert.Contains(t, view, SymbolCross)
	assert.Contains(t, view, "ReadError site/x.html: denied")
	assert.Contains(t, view, "2 more")
}
