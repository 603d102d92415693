// Package tui renders a live progress view while a codebase is being
// indexed.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"logagent/internal/agent"
)

// programRef is an indirect pointer to the tea.Program so the background
// indexing goroutine can send progress messages. It must be set after
// tea.NewProgram returns but before Run.
type programRef struct {
	p *tea.Program
}

// indexDoneMsg is sent when indexing completes.
type indexDoneMsg struct {
	chunks int
	err    error
}

// indexProgressMsg is sent after each file during indexing.
type indexProgressMsg struct {
	phase          string
	filesProcessed int
	filesTotal     int
}

type model struct {
	spinner        spinner.Model
	start          tea.Cmd
	root           string
	phase          string
	filesProcessed int
	filesTotal     int
	chunks         int
	done           bool
	err            error
}

func newModel(root string) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return model{
		spinner: sp,
		root:    root,
		phase:   "Indexing files...",
	}
}

func runIndex(ag *agent.LogAgent, ref *programRef, root, pattern string) tea.Cmd {
	return func() tea.Msg {
		ag.Indexer().OnProgress(func(phase string, processed, total int) {
			if ref.p != nil {
				ref.p.Send(indexProgressMsg{
					phase:          phase,
					filesProcessed: processed,
					filesTotal:     total,
				})
			}
		})

		chunks, err := ag.IndexPath(root, pattern)
		return indexDoneMsg{chunks: chunks, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}
		return m, nil
	case indexDoneMsg:
		m.done = true
		m.chunks = msg.chunks
		m.err = msg.err
		return m, tea.Quit
	case indexProgressMsg:
		m.phase = msg.phase
		m.filesProcessed = msg.filesProcessed
		m.filesTotal = msg.filesTotal
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	s := "\n" + titleStyle.Render("  Indexing "+m.root) + "\n\n"

	if m.done {
		if m.err != nil {
			return s + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
		}
		s += successStyle.Render("  ✓ Indexing complete!") + "\n\n"
		s += fmt.Sprintf("  Files: %d processed\n", m.filesProcessed)
		s += fmt.Sprintf("  Chunks: %d\n", m.chunks)
		return s
	}

	s += fmt.Sprintf("  %s %s\n", m.spinner.View(), m.phase)
	if m.filesTotal > 0 {
		s += fmt.Sprintf("  %d / %d files processed\n", m.filesProcessed, m.filesTotal)
	}
	s += "\n" + dimStyle.Render("  This may take a while for large codebases...") + "\n"
	return s
}

// RunIndexing drives directory indexing with a live progress display and
// returns the number of chunks indexed.
func RunIndexing(ag *agent.LogAgent, root, pattern string) (int, error) {
	ref := &programRef{}
	m := newModel(root)
	m.start = runIndex(ag, ref, root, pattern)
	p := tea.NewProgram(m)
	ref.p = p

	final, err := p.Run()
	if err != nil {
		return 0, err
	}
	fm := final.(model)
	if fm.err != nil {
		return fm.chunks, fm.err
	}
	return fm.chunks, nil
}
