package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cranestack/pkg/crane"
)

// historyRows is how many applied instructions the step viewer lists.
const historyRows = 5

var (
	stepErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	stepHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// stepCommand creates the interactive step-through viewer.
func (c *CLI) stepCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "step <input>",
		Short: "Step through a replay one instruction at a time",
		Long: `Open an interactive viewer that applies one instruction per key press.

Keys:
  space, →   apply the next instruction
  end        apply every remaining instruction
  r          restore the starting layout
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := crane.ParseMode(mode)
			if err != nil {
				return err
			}
			e, err := loadEngine(cmd, args[0])
			if err != nil {
				return err
			}
			model, err := newStepModel(e, m)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if sm, ok := final.(stepModel); ok {
				printTops(cmd.OutOrStdout(), string(sm.mode), sm.engine.Tops())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(crane.ModeSingle), "replay mode: single or block")

	return cmd
}

// =============================================================================
// stepModel - Interactive replay
// =============================================================================

// stepModel is the bubbletea model for the step viewer. The engine holds a
// snapshot of the starting layout for the whole session, so "r" can always
// return to it.
type stepModel struct {
	engine  *crane.Engine
	mode    crane.Mode
	mover   crane.Mover
	total   int
	history []crane.Instruction
	err     error
}

func newStepModel(e *crane.Engine, mode crane.Mode) (stepModel, error) {
	mover := mode.Mover()
	if mover == nil {
		return stepModel{}, fmt.Errorf("unknown mode %q", mode)
	}
	if err := e.Snapshot(); err != nil {
		return stepModel{}, err
	}
	return stepModel{
		engine: e,
		mode:   mode,
		mover:  mover,
		total:  len(e.Pending()),
	}, nil
}

func (m stepModel) Init() tea.Cmd {
	return nil
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "right", "l", "n":
		m = m.step()
	case "end", "G":
		for m.err == nil && !m.engine.Done() {
			m = m.step()
		}
	case "r":
		m.engine.Restore()
		if err := m.engine.Snapshot(); err != nil {
			m.err = err
			return m, nil
		}
		m.history = nil
		m.err = nil
	}
	return m, nil
}

// step applies the next instruction. A failing instruction stays pending
// and its error is shown until the next restore.
func (m stepModel) step() stepModel {
	if m.err != nil {
		return m
	}
	in, ok, err := m.engine.Step(m.mover)
	if err != nil {
		m.err = err
		return m
	}
	if ok {
		m.history = append(m.history, in)
	}
	return m
}

func (m stepModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Replay · %s crane", m.mode)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("   %d/%d", m.engine.Applied(), m.total)))
	b.WriteString("\n\n")

	b.WriteString(renderLayout(m.engine.Layout()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tops: ") + StyleValue.Render(m.engine.Tops()))
	b.WriteString("\n\n")

	if len(m.history) > 0 {
		b.WriteString(m.historyTable())
		b.WriteString("\n")
	}

	switch pending := m.engine.Pending(); {
	case m.err != nil:
		b.WriteString(stepErrorStyle.Render(m.err.Error()))
	case len(pending) == 0:
		b.WriteString(StyleSuccess.Render("done"))
	default:
		b.WriteString(StyleDim.Render("next: ") + pending[0].String())
	}
	b.WriteString("\n\n")

	b.WriteString(stepHelpStyle.Render("space/→ step  end finish  r restore  q quit"))
	b.WriteString("\n")
	return b.String()
}

// historyTable lists the most recent applied instructions, newest last.
func (m stepModel) historyTable() string {
	start := max(0, len(m.history)-historyRows)

	rows := make([][]string, 0, historyRows)
	for i := start; i < len(m.history); i++ {
		in := m.history[i]
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			fmt.Sprint(in.Amount),
			fmt.Sprint(in.From),
			fmt.Sprint(in.To),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Move", "From", "To").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}
