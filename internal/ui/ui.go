// package ui implements the interactive terminal interface.
//
// The TUI walks a filter selection, a confirmation prompt, a live run view
// fed by the engine's progress channel, and a result screen.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"podsift/internal/shared"
	"podsift/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FilterListView ViewState = iota
	ConfirmView
	RunView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	config       *shared.Config
	engine       *tasks.FilterEngine
	width        int
	height       int
	filterList   list.Model
	selectedRule *shared.FilterRule // nil means run all filters
	dryRun       bool
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	summary      *tasks.RunSummary
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	all   key.Binding
	dry   key.Binding
	back  key.Binding
	yes   key.Binding
	no    key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run filter"),
		),
		all: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "run all"),
		),
		dry: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle dry run"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.all, k.dry, k.back},
		{k.yes, k.no, k.quit},
	}
}

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	summary *tasks.RunSummary
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, config *shared.Config, engine *tasks.FilterEngine) *Model {
	items := make([]list.Item, len(config.Filters))
	for i, rule := range config.Filters {
		items[i] = filterItem{rule: rule}
	}

	filterList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	filterList.Title = "Podcast Filters"

	return &Model{
		ctx:        ctx,
		view:       FilterListView,
		config:     config,
		engine:     engine,
		filterList: filterList,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filterList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FilterListView:
			return m.handleFilterListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case FilterListView:
		return m.renderFilterList()
	case ConfirmView:
		return m.renderConfirm()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFilterListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "d":
		m.dryRun = !m.dryRun
		return m, nil
	case "a":
		m.selectedRule = nil
		m.view = ConfirmView
		return m, nil
	case "enter":
		selected := m.filterList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(filterItem); ok {
				rule := item.rule
				m.selectedRule = &rule
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filterList, cmd = m.filterList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = FilterListView
		return m, nil
	case "y":
		m.view = RunView
		return m, m.startRun()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FilterListView
		m.summary = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == FilterListView {
		m.filterList, cmd = m.filterList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	opts := tasks.RunOpts{DryRun: m.dryRun}
	if m.selectedRule != nil {
		opts.Only = m.selectedRule.Name
	}

	go func() {
		summary, err := m.engine.Run(m.ctx, progressChan, opts)
		m.summary = summary
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return runCompleteMsg{summary: m.summary, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return runCompleteMsg{summary: m.summary, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderFilterList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.all, m.keys.dry, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	mode := ""
	if m.dryRun {
		mode = styles.warn.Render("dry run enabled") + "\n"
	}

	return fmt.Sprintf("%s\n%s%s", m.filterList.View(), mode, helpView)
}

func (m *Model) renderConfirm() string {
	target := "all filters"
	if m.selectedRule != nil {
		target = fmt.Sprintf("filter %q", m.selectedRule.Name)
	}

	title := styles.title.Render(fmt.Sprintf("Run %s?", target))
	info := ""
	if m.dryRun {
		info = styles.warn.Render("Dry run: no episodes will be added.") + "\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Processing Filters")

	var phase string
	switch m.progress.Phase {
	case tasks.RunStart:
		phase = "Starting run..."
	case tasks.ProcessFilter, tasks.FilterDone, tasks.FilterFailed:
		phase = fmt.Sprintf("Filter %d/%d", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Run failed: %v\n\nPress esc to go back, q to quit", m.err))
	}

	if m.summary == nil {
		return styles.err.Render("No result available\n\nPress esc to go back, q to quit")
	}

	title := styles.ok.Render("✓ Run Complete")
	if m.summary.DryRun {
		title = styles.ok.Render("✓ Dry Run Complete")
	}

	info := fmt.Sprintf(
		"\nFilters processed: %d/%d\nMatched: %d\nAdded: %d",
		m.summary.FiltersProcessed,
		m.summary.FiltersTotal,
		m.summary.TotalMatched,
		m.summary.TotalAdded,
	)

	var failed string
	if m.summary.FiltersFailed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d filter(s) failed:", m.summary.FiltersFailed)))
		for _, result := range m.summary.Results {
			if result.Failed {
				failed += fmt.Sprintf("\n  • %s: %s", result.Name, result.Err)
			}
		}
	}

	var matches string
	for _, result := range m.summary.Results {
		for _, episode := range result.MatchedEpisodes {
			matches += fmt.Sprintf("\n  %s %s", styles.ok.Render("+"), episodeItem{episode: episode}.Title())
		}
	}
	if matches != "" {
		matches = "\n\nMatched episodes:" + matches
	}

	backKey := key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	)
	helpKeys := []key.Binding{backKey, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s%s%s\n\n%s", title, info, failed, matches, helpView)
}
