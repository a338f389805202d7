package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressModel_RunningViewShowsMessageAndElapsed(t *testing.T) {
	m := newProgressModel("running fetch")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.started = start
	m.now = func() time.Time { return start.Add(3500 * time.Millisecond) }

	view := m.View()
	assert.Contains(t, view, "running fetch")
	assert.Contains(t, view, "(3s)")
	assert.NotNil(t, m.Init())
}

func TestProgressModel_QuitsWithSummary(t *testing.T) {
	m := newProgressModel("q")

	next, cmd := m.Update(finishedMsg{summary: "12 rows"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, next.View(), SymbolCheck+" 12 rows")
}

func TestProgressModel_QuitsWithError(t *testing.T) {
	m := newProgressModel("q")

	next, cmd := m.Update(finishedMsg{err: errors.New("boom")})
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(), SymbolCross+" boom")
}

func TestProgressModel_StopsTickingWhenFinished(t *testing.T) {
	m := newProgressModel("q")
	next, _ := m.Update(finishedMsg{summary: "ok"})

	_, cmd := next.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestProgressModel_CtrlCQuits(t *testing.T) {
	m := newProgressModel("q")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
