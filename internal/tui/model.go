// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     tui
// Description: Terminal shell for tokenizing and parsing expressions
// Author:      Mike Stoffels
// Created:     2026-10-11
// License:     MIT
// ============================================================================

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/render"
)

const helpText = "Ctrl+T: Tokenize • Ctrl+P: Parse • Ctrl+L: Clear • Esc: Quit"

// Options configures the terminal shell
type Options struct {
	Analyzer    *analyzer.Analyzer
	InputHeight int
	TreeFormat  string // render.FormatTree or render.FormatTuple
}

// Model is the bubbletea model of the shell
type Model struct {
	width  int
	height int
	ready  bool

	textarea textarea.Model
	viewport viewport.Model

	analyzer   *analyzer.Analyzer
	treeFormat string

	output string
	err    error
	status string
}

// NewModel creates a new shell model
func NewModel(opts Options) Model {
	if opts.Analyzer == nil {
		opts.Analyzer = analyzer.New(analyzer.Options{})
	}
	if opts.InputHeight <= 0 {
		opts.InputHeight = 5
	}
	if opts.TreeFormat != render.FormatTuple {
		opts.TreeFormat = render.FormatTree
	}

	ta := textarea.New()
	ta.Placeholder = "Enter statements, e.g. x = 2 + 3; x * 4"
	ta.Focus()
	ta.CharLimit = opts.Analyzer.MaxInputLength()
	ta.SetWidth(80)
	ta.SetHeight(opts.InputHeight)
	ta.ShowLineNumbers = false

	return Model{
		textarea:   ta,
		analyzer:   opts.Analyzer,
		treeFormat: opts.TreeFormat,
		status:     "Ready",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+t":
			m.status = "Tokenizing..."
			return m, m.analyze(false, m.textarea.Value())

		case "ctrl+p":
			m.status = "Parsing..."
			return m, m.analyze(true, m.textarea.Value())

		case "ctrl+l":
			m.textarea.Reset()
			m.output = ""
			m.err = nil
			m.status = "Ready"
			m.updateContent()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		outputHeight := max(1, msg.Height-m.textarea.Height()-6)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, outputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = outputHeight
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.updateContent()

	case analysisMsg:
		m.err = msg.err
		m.output = msg.output
		if msg.err != nil {
			m.status = "Failed"
		} else {
			m.status = fmt.Sprintf("Done in %s", msg.duration.Round(time.Microsecond))
		}
		m.updateContent()
		return m, nil
	}

	// Update components
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// analysisMsg carries the outcome of a tokenize or parse run
type analysisMsg struct {
	output   string
	err      error
	duration time.Duration
}

// analyze runs the analyzer on source and renders its result
func (m Model) analyze(parse bool, source string) tea.Cmd {
	a, format := m.analyzer, m.treeFormat
	return func() tea.Msg {
		var (
			res *analyzer.Result
			err error
		)
		if parse {
			res, err = a.Parse(context.Background(), source)
		} else {
			res, err = a.Tokenize(context.Background(), source)
		}
		if err != nil {
			return analysisMsg{err: err}
		}

		var b strings.Builder
		if parse {
			err = render.Program(&b, format, res.Program)
			if err == nil && len(res.Symbols) > 0 {
				fmt.Fprintf(&b, "\nSymbols: %s\n", strings.Join(res.Symbols, ", "))
			}
		} else {
			err = render.Tokens(&b, res.Tokens)
		}
		return analysisMsg{output: b.String(), err: err, duration: res.Duration}
	}
}

func (m *Model) updateContent() {
	if !m.ready {
		return
	}
	if m.err != nil {
		m.viewport.SetContent(RenderError(render.Error(m.err)))
	} else {
		m.viewport.SetContent(OutputStyle.Render(m.output))
	}
	m.viewport.GotoTop()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder

	s.WriteString(TitleStyle.Render("lexan"))
	s.WriteString(" ")
	s.WriteString(SubtitleStyle.Render("lexical and syntax analyzer"))
	s.WriteString("\n")
	s.WriteString(FocusedInputStyle.Render(m.textarea.View()))
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m *Model) renderFooter() string {
	status := StatusOKStyle.Render(m.status)
	if m.err != nil {
		status = StatusErrorStyle.Render(m.status)
	}

	return StatusBarStyle.Width(m.width).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			RenderHelp(helpText),
			strings.Repeat(" ", max(0, m.width-lipgloss.Width(helpText)-lipgloss.Width(m.status)-4)),
			status,
		),
	)
}

// Run starts the shell on the terminal and blocks until it quits
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}
