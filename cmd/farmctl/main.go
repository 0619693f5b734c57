// Command farmctl is a terminal dashboard over a running Supervisor: a
// live table of jobs plus interlock state, polled on a fixed interval.
// Grounded on kingrea-The-Lattice's internal/tui/app.go (bubbletea Elm
// architecture, lipgloss-bordered panels, a tea.Tick-driven refresh loop)
// adapted from a multi-screen session board to a single scrolling job
// table.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ironleaf-farm/farmcore/builder"
	"github.com/ironleaf-farm/farmcore/internal/supervisor"
	"github.com/ironleaf-farm/farmcore/internal/telemetry"
)

const refreshInterval = 250 * time.Millisecond

type snapshotMsg struct {
	snap telemetry.TableSnapshot
	err  error
}

type model struct {
	sv       *supervisor.Supervisor
	tbl      table.Model
	snap     telemetry.TableSnapshot
	err      string
	statusMsg string
}

func newModel(sv *supervisor.Supervisor) model {
	columns := []table.Column{
		{Title: "Job", Width: 6},
		{Title: "Ref", Width: 10},
		{Title: "Kind", Width: 16},
		{Title: "Status", Width: 10},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	return model{sv: sv, tbl: tbl}
}

func (m model) Init() tea.Cmd {
	return m.fetch()
}

func (m model) fetch() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.sv.Snapshot()
		return snapshotMsg{snap: snap, err: err}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

type refreshTickMsg struct{}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "l":
			m.statusMsg = "locking..."
			return m, m.emergencyLock()
		case "u":
			m.statusMsg = "unlocking..."
			return m, m.emergencyUnlock()
		case "n":
			m.statusMsg = "queuing read_status..."
			return m, m.queueSample()
		}

	case refreshTickMsg:
		return m, tea.Batch(m.fetch(), scheduleRefresh())

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.err = ""
			m.snap = msg.snap
			m.tbl.SetRows(rowsFromSnapshot(msg.snap))
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("error: %v", msg.err)
		} else {
			m.statusMsg = msg.label
		}
		return m, m.fetch()
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

type actionDoneMsg struct {
	label string
	err   error
}

func (m model) emergencyLock() tea.Cmd {
	return func() tea.Msg {
		err := retryBusy(m.sv.EmergencyLock)
		return actionDoneMsg{label: "emergency-locked", err: err}
	}
}

func (m model) emergencyUnlock() tea.Cmd {
	return func() tea.Msg {
		err := retryBusy(m.sv.EmergencyUnlock)
		return actionDoneMsg{label: "emergency-unlocked", err: err}
	}
}

func (m model) queueSample() tea.Cmd {
	return func() tea.Msg {
		prog := builder.Sequence(builder.New("read_status"))
		var jobID int64
		err := retryBusy(func() error {
			id, qerr := m.sv.QueueProgram(prog, -1)
			jobID = id
			return qerr
		})
		return actionDoneMsg{label: fmt.Sprintf("queued job %d", jobID), err: err}
	}
}

func retryBusy(fn func() error) error {
	for {
		err := fn()
		if err == supervisor.ErrBusy {
			continue
		}
		return err
	}
}

func rowsFromSnapshot(snap telemetry.TableSnapshot) []table.Row {
	rows := make([]table.Row, 0, len(snap.Processes))
	for _, p := range snap.Processes {
		ref := p.Ref
		if len(ref) > 8 {
			ref = ref[:8]
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", p.JobID),
			ref,
			p.Kind,
			p.Status,
		})
	}
	return rows
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func (m model) View() string {
	header := headerStyle.Render("⬡ FARMCTL")
	lockLine := fmt.Sprintf("emergency_lock=%v  cursor=%d  firmware_owner=%s",
		m.snap.EmergencyLock, m.snap.CursorJobID, nonEmpty(m.snap.FirmwareOwner, "-"))
	body := boxStyle.Render(m.tbl.View())

	var sections []string
	sections = append(sections, header, lockLine, body)
	if m.err != "" {
		sections = append(sections, errStyle.Render("error: "+m.err))
	}
	sections = append(sections, dimStyle.Render(m.statusMsg))
	sections = append(sections, dimStyle.Render("q quit · l lock · u unlock · n queue read_status"))

	out := ""
	for i, s := range sections {
		if i > 0 {
			out += "\n"
		}
		out += s
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func main() {
	sv := supervisor.New(supervisor.WithTickPeriod(20 * time.Millisecond))
	sv.Start()
	defer sv.Stop()

	p := tea.NewProgram(newModel(sv))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "farmctl:", err)
		os.Exit(1)
	}
}
