package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"corvid/internal/events"
)

const (
	statusQueued    = "queued"
	statusDeclaring = "declaring"
	statusDone      = "done"
)

type progressModel struct {
	title      string
	events     <-chan events.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []unitItem
	index      map[string]int
	symbols    int
	stageLabel string
	width      int
	done       bool
}

type unitItem struct {
	path    string
	status  string
	symbols int
}

type eventMsg events.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the compilation event queue:
// one line per unit, updated as its symbols are declared and it completes.
func NewProgressModel(title string, units []string, ch <-chan events.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]unitItem, 0, len(units))
	index := make(map[string]int, len(units))
	for i, path := range units {
		items = append(items, unitItem{path: path, status: statusQueued})
		index[path] = i
	}
	return &progressModel{
		title:   title,
		events:  ch,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

// Run drives the progress model until the event channel closes or ctx is done.
func Run(ctx context.Context, out io.Writer, title string, units []string, ch <-chan events.Event) error {
	p := tea.NewProgram(NewProgressModel(title, units, ch),
		tea.WithContext(ctx), tea.WithOutput(out), tea.WithInput(nil))
	_, err := p.Run()
	return err
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(events.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s, %d symbols)", header, m.stageLabel, m.symbols)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-12, 20)
	for _, item := range m.items {
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s", statusStyled, truncate(item.path, nameWidth))
		if item.symbols > 0 {
			fmt.Fprintf(&b, " (%d)", item.symbols)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev events.Event) tea.Cmd {
	switch ev.Kind {
	case events.KindStarted:
		m.stageLabel = "declaring"
		return nil
	case events.KindCompleted:
		m.stageLabel = "completed"
		return m.prog.SetPercent(1.0)
	case events.KindSymbolDeclared:
		m.symbols++
		if idx, ok := m.index[ev.UnitPath()]; ok {
			m.items[idx].symbols++
			if m.items[idx].status == statusQueued {
				m.items[idx].status = statusDeclaring
			}
		}
		return nil
	case events.KindUnitCompleted:
		m.stageLabel = "compiling"
		idx, ok := m.index[ev.UnitPath()]
		if !ok {
			return nil
		}
		m.items[idx].status = statusDone
		return m.prog.SetPercent(m.fraction())
	}
	return nil
}

func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 1.0
	}
	total := 0.0
	for _, item := range m.items {
		switch item.status {
		case statusDone:
			total += 1.0
		case statusDeclaring:
			total += 0.3
		}
	}
	return total / float64(len(m.items))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case statusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case statusDeclaring:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
