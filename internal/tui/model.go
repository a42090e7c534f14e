package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AntoineGS/ticklist/internal/checklist"
	"github.com/AntoineGS/ticklist/internal/session"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents the current screen being displayed in the TUI.
type Screen int

// Screen constants define the different views available in the TUI.
const (
	ScreenList Screen = iota
	ScreenJump
	ScreenConfirmReset
	ScreenExport
)

func (s Screen) String() string {
	switch s {
	case ScreenList:
		return "list"
	case ScreenJump:
		return "jump"
	case ScreenConfirmReset:
		return "confirm-reset"
	case ScreenExport:
		return "export"
	}

	return "unknown"
}

// itemsChangedMsg is sent when the watched item source changed on disk.
type itemsChangedMsg struct{}

// watchErrorMsg carries a failure from the file watcher.
type watchErrorMsg struct {
	err error
}

// Model is the bubbletea model of the checklist TUI.
type Model struct {
	session  *session.Session
	logger   *slog.Logger
	watcher  *Watcher
	copyFunc func(string) error
	input    textinput.Model
	status   string
	warnings []session.Warning
	width    int
	height   int
	Screen   Screen
	statusOK bool
	quitting bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithWatcher reloads the item source whenever the watcher fires.
func WithWatcher(w *Watcher) ModelOption {
	return func(m *Model) {
		m.watcher = w
	}
}

// WithClipboard overrides the function used by the copy action.
func WithClipboard(copyFunc func(string) error) ModelOption {
	return func(m *Model) {
		m.copyFunc = copyFunc
	}
}

// WithModelLogger sets the logger for TUI events.
func WithModelLogger(l *slog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = l
	}
}

// NewModel creates a model over an existing session.
func NewModel(s *session.Session, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		session:  s,
		logger:   slog.Default(),
		copyFunc: clipboard.WriteAll,
		input:    ti,
		Screen:   ScreenList,
		width:    80,
		height:   24,
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.warnings = s.TakeWarnings()

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return m.watcher.Wait()
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case itemsChangedMsg:
		m.reload()
		return m, m.watcher.Wait()

	case watchErrorMsg:
		m.setError(fmt.Errorf("watching items: %w", msg.err))
		return m, m.watcher.Wait()
	}

	if m.Screen == ScreenJump || m.Screen == ScreenExport {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, SharedKeys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.Screen {
	case ScreenJump, ScreenExport:
		return m.handlePromptKeys(msg)
	case ScreenConfirmReset:
		return m.handleConfirmKeys(msg)
	}

	return m.handleListKeys(msg)
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Warnings stay until the next key press on the list
	m.warnings = nil

	switch {
	case key.Matches(msg, SharedKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, ListKeys.Check):
		m.checkCurrent()

	case key.Matches(msg, ListKeys.Jump):
		if m.session.Loaded() {
			m.openPrompt(ScreenJump, "Jump to row: ", "")
			return m, textinput.Blink
		}

	case key.Matches(msg, ListKeys.Reset):
		if m.session.Loaded() {
			m.Screen = ScreenConfirmReset
		}

	case key.Matches(msg, ListKeys.Details):
		if m.session.ToggleDetails() {
			m.setStatus("Details shown")
		} else {
			m.setStatus("Details hidden")
		}

	case key.Matches(msg, ListKeys.Export):
		if m.session.Loaded() {
			m.openPrompt(ScreenExport, "Export to: ", DefaultExportPath)
			return m, textinput.Blink
		}

	case key.Matches(msg, ListKeys.Copy):
		m.copySnapshot()
	}

	return m, nil
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, PromptKeys.Cancel):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, PromptKeys.Submit):
		value := strings.TrimSpace(m.input.Value())
		screen := m.Screen
		m.closePrompt()
		if screen == ScreenJump {
			m.jumpTo(value)
		} else {
			m.export(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ConfirmKeys.Yes):
		m.Screen = ScreenList
		if err := m.session.Reset(); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Progress reset")
		}
	case key.Matches(msg, ConfirmKeys.No):
		m.Screen = ScreenList
	}

	return m, nil
}

func (m *Model) openPrompt(screen Screen, prompt, value string) {
	m.Screen = screen
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closePrompt() {
	m.Screen = ScreenList
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) checkCurrent() {
	idx, err := m.session.CheckCurrent()
	switch {
	case errors.Is(err, session.ErrNoList):
		return
	case err != nil && idx == 0:
		m.setError(err)
	case err != nil:
		m.setError(fmt.Errorf("row %d checked but not saved: %w", idx, err))
	case idx == 0:
		m.setStatus("All items checked")
	default:
		m.setStatus(fmt.Sprintf("Checked row %d", idx))
	}
}

func (m *Model) jumpTo(value string) {
	row, err := strconv.Atoi(value)
	if err != nil {
		m.setError(fmt.Errorf("not a row number: %q", value))
		return
	}

	if err := m.session.JumpTo(row); err != nil {
		var ie *checklist.IndexError
		if errors.As(err, &ie) {
			m.setError(fmt.Errorf("row must be between 1 and %d", ie.Len))
			return
		}
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Jumped to row %d", row))
}

func (m *Model) export(path string) {
	if path == "" {
		path = DefaultExportPath
	}
	if err := m.session.ExportSnapshotFile(path); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("Exported to " + path)
}

func (m *Model) copySnapshot() {
	var sb strings.Builder
	if err := m.session.ExportSnapshot(&sb); err != nil {
		if !errors.Is(err, session.ErrNoList) {
			m.setError(err)
		}
		return
	}

	if err := m.copyFunc(sb.String()); err != nil {
		m.setError(fmt.Errorf("copying to clipboard: %w", err))
		return
	}
	m.setStatus("Snapshot copied to clipboard")
}

func (m *Model) reload() {
	if err := m.session.Reload(); err != nil {
		m.setError(err)
		return
	}
	m.warnings = append(m.warnings, m.session.TakeWarnings()...)
	m.setStatus("Items reloaded")
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusOK = true
}

func (m *Model) setError(err error) {
	m.logger.Warn("tui action failed", slog.Any("error", err))
	m.status = err.Error()
	m.statusOK = false
}
