package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"thetac/internal/buildpipeline"
)

const statusWidth = 12

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[buildpipeline.Status]lipgloss.Style{
		buildpipeline.StatusQueued:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		buildpipeline.StatusWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		buildpipeline.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		buildpipeline.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		buildpipeline.StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
)

// fileItem is one row: an entry file or a capsule reached through a link.
type fileItem struct {
	path    string
	capsule string
	status  buildpipeline.Status
	stage   buildpipeline.Stage
	elapsed time.Duration
}

// label: "parsing" while working, otherwise the status itself.
func (it fileItem) label() string {
	if it.status == buildpipeline.StatusWorking {
		return it.stage.Verb()
	}
	return string(it.status)
}

func (it fileItem) progress() float64 {
	if it.status.Terminal() {
		return 1
	}
	return it.stage.Weight()
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model

	rows  []fileItem
	byKey map[string]int
	phase string // what the run as a whole is doing
	width int

	failed int
	done   bool
}

type (
	eventMsg buildpipeline.Event
	doneMsg  struct{}
)

// NewProgressModel renders build progress from events until the channel
// closes. files may be empty: capsules reached through links get a row on
// their first event.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	return newProgressModel(title, files, events)
}

func newProgressModel(title string, files []string, events <-chan buildpipeline.Event) *progressModel {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = statusStyles[buildpipeline.StatusWorking]

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		byKey:   make(map[string]int, len(files)),
		width:   80,
	}
	for _, f := range files {
		m.row(f, "")
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder

	header := m.title
	if m.phase != "" {
		header += " (" + m.phase + ")"
	}
	if m.done {
		header = "done: " + header
		if m.failed > 0 {
			header += fmt.Sprintf(", %d failed", m.failed)
		}
	} else {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-14, 20)
	for _, it := range m.rows {
		name := it.path
		if it.capsule != "" {
			name = it.capsule + " (" + it.path + ")"
		}
		status := statusStyles[it.status].Render(fmt.Sprintf("%*s", statusWidth, it.label()))
		fmt.Fprintf(&b, "  %s %s", status, truncate(name, nameWidth))
		if it.status == buildpipeline.StatusDone && it.elapsed > 0 {
			b.WriteString(dimStyle.Render(" " + it.elapsed.Round(time.Microsecond*100).String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// row возвращает индекс строки для файла, добавляя её при первом событии
func (m *progressModel) row(path, capsule string) int {
	if i, ok := m.byKey[path]; ok {
		if capsule != "" {
			m.rows[i].capsule = capsule
		}
		return i
	}
	m.rows = append(m.rows, fileItem{path: path, capsule: capsule, status: buildpipeline.StatusQueued})
	m.byKey[path] = len(m.rows) - 1
	return len(m.rows) - 1
}

func (m *progressModel) apply(ev buildpipeline.Event) tea.Cmd {
	if ev.Status == "" {
		return nil
	}
	if ev.File == "" {
		m.phase = fileItem{status: ev.Status, stage: ev.Stage}.label()
		return nil
	}
	it := &m.rows[m.row(ev.File, ev.Capsule)]
	if ev.Status == buildpipeline.StatusError && it.status != buildpipeline.StatusError {
		m.failed++
	}
	it.status, it.stage = ev.Status, ev.Stage
	if ev.Elapsed > 0 {
		it.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, it := range m.rows {
		sum += it.progress()
	}
	return sum / float64(len(m.rows))
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
