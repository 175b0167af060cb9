package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

// opMsg delivers one finished operation to the progress model.
type opMsg struct {
	op types.Operation
}

// opsDoneMsg signals that the walk has finished.
type opsDoneMsg struct{}

// progressModel streams bulk placement results as they arrive.
type progressModel struct {
	ch      <-chan types.Operation
	cancel  func()
	ops     []types.Operation
	failed  int
	done    bool
	aborted bool
	current string

	// number of result lines kept on screen
	windowSize int

	spinner spinner.Model
}

func newProgressModel(ch <-chan types.Operation, cancel func()) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StyleCommand

	return progressModel{
		ch:         ch,
		cancel:     cancel,
		windowSize: 10,
		spinner:    s,
	}
}

func waitForOp(ch <-chan types.Operation) tea.Cmd {
	return func() tea.Msg {
		op, ok := <-ch
		if !ok {
			return opsDoneMsg{}
		}
		return opMsg{op: op}
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(waitForOp(m.ch), m.spinner.Tick)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opMsg:
		m.ops = append(m.ops, msg.op)
		if msg.op.Failed() {
			m.failed++
		}
		m.current = msg.op.SourcePath
		return m, waitForOp(m.ch)

	case opsDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			// keep draining until the walk notices the cancellation
			if !m.aborted && m.cancel != nil {
				m.cancel()
			}
			m.aborted = true
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	var status string
	switch {
	case m.done:
		status = StyleDim.Render(fmt.Sprintf("%d files, %d failed", len(m.ops), m.failed))
	case m.aborted:
		status = StyleFlag.Render(fmt.Sprintf("%s stopping… %d so far", m.spinner.View(), len(m.ops)))
	default:
		status = StyleCommand.Render(fmt.Sprintf("%s organizing… %d so far", m.spinner.View(), len(m.ops)))
	}
	b.WriteString(StyleHeader.Render("Organize") + "  " + status + "\n\n")

	start := 0
	if len(m.ops) > m.windowSize {
		start = len(m.ops) - m.windowSize
		b.WriteString(StyleDim.Render(fmt.Sprintf("  … %d earlier", start)) + "\n")
	}
	for _, op := range m.ops[start:] {
		b.WriteString("  " + FormatOperation(op) + "\n")
	}
	return b.String()
}

// RunProgress shows operations from ch until it is closed. cancel is
// called when the user presses ctrl+c or esc. It returns every
// operation received.
func RunProgress(ch <-chan types.Operation, cancel func(), opts ...tea.ProgramOption) ([]types.Operation, error) {
	final, err := tea.NewProgram(newProgressModel(ch, cancel), opts...).Run()
	if err != nil {
		return nil, err
	}
	return final.(progressModel).ops, nil
}
