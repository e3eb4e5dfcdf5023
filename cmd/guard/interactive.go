package main

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshInterval = 250 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	familyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Drop    key.Binding
	Release key.Binding
	GC      key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Drop, k.Release, k.GC, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Drop: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "drop"),
	),
	Release: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "release"),
	),
	GC: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "gc"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type familyRow struct {
	held []proxyHandle
	live uint32
	seq  int
}

type interactiveModel struct {
	err      error
	ctx      context.Context
	app      *app
	help     help.Model
	status   string
	rows     []familyRow
	events   eventCounts
	selected int
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func newInteractiveModel(ctx context.Context, a *app) *interactiveModel {
	m := &interactiveModel{
		ctx:  ctx,
		app:  a,
		help: help.New(),
		rows: make([]familyRow, len(a.families)),
	}
	m.refresh()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return tick()
}

func (m *interactiveModel) refresh() {
	for i, f := range m.app.families {
		live, err := f.Live(m.ctx)
		if err != nil {
			m.err = err
			continue
		}
		m.rows[i].live = live
	}
	m.events = m.app.events.snapshot()
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}

		case key.Matches(msg, keys.Down):
			if m.selected < len(m.rows)-1 {
				m.selected++
			}

		case key.Matches(msg, keys.Open):
			m.open()

		case key.Matches(msg, keys.Drop):
			m.drop()

		case key.Matches(msg, keys.Release):
			m.release()

		case key.Matches(msg, keys.GC):
			runtime.GC()
			m.status = "forced garbage collection"
		}
		m.refresh()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

func (m *interactiveModel) open() {
	row := &m.rows[m.selected]
	f := m.app.families[m.selected]
	row.seq++
	p, err := openProxy(m.ctx, f, row.seq)
	if err != nil {
		m.err = err
		return
	}
	row.held = append(row.held, p)
	m.err = nil
	m.status = "opened " + p.String()
}

// drop forgets the newest proxy without releasing it.
func (m *interactiveModel) drop() {
	row := &m.rows[m.selected]
	if len(row.held) == 0 {
		m.status = "nothing to drop"
		return
	}
	p := row.held[len(row.held)-1]
	row.held[len(row.held)-1] = nil
	row.held = row.held[:len(row.held)-1]
	m.status = "dropped " + p.String() + ", waiting for collection"
}

func (m *interactiveModel) release() {
	row := &m.rows[m.selected]
	if len(row.held) == 0 {
		m.status = "nothing to release"
		return
	}
	p := row.held[len(row.held)-1]
	row.held[len(row.held)-1] = nil
	row.held = row.held[:len(row.held)-1]
	p.Close(m.ctx)
	m.status = "released " + p.String()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Handle Guard"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %-14s %6s %6s\n", "family", "held", "live"))
	for i, f := range m.app.families {
		row := m.rows[i]
		line := fmt.Sprintf("%-14s %6d %6d", f.Family(), len(row.held), row.live)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + familyStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(countStyle.Render(fmt.Sprintf("installed %d  released %d  collected %d",
		m.events.installed, m.events.released, m.events.collected)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(keys))

	return b.String()
}

func runInteractive(ctx context.Context, opts options) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	p := tea.NewProgram(newInteractiveModel(ctx, a), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
