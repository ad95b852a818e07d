package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RecommendationListView ViewState = iota
	ConfirmView
	BuildView
	ResultView
)

// BuildFunc authorizes with the catalog and builds a playlist from the
// selected recommendations, streaming progress into the channel. The
// command layer supplies it so the view model never touches OAuth or
// client construction.
type BuildFunc func(ctx context.Context, recommendations []models.Recommendation, progress chan<- tasks.ProgressUpdate) (*tasks.BuildResult, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.Engine
	opts         tasks.DiscoveryOpts
	build        BuildFunc
	width        int
	height       int
	recList      list.Model
	fetched      bool
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.BuildResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.Engine, opts tasks.DiscoveryOpts, build BuildFunc) *Model {
	return &Model{
		ctx:    ctx,
		view:   RecommendationListView,
		engine: engine,
		opts:   opts,
		build:  build,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts the discovery pass against the listening history.
func (m *Model) Init() tea.Cmd {
	return m.fetchRecommendations()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.recList.Width() == 0 {
			m.recList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RecommendationListView:
			return m.handleRecommendationListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case recommendationsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.fetched = true
		items := make([]list.Item, len(msg.recommendations))
		for i, rec := range msg.recommendations {
			items[i] = recommendationItem{rec: rec}
		}
		m.recList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.recList.Title = fmt.Sprintf("Discoveries for %s", m.opts.Username)
		m.recList.SetFilteringEnabled(false)
		m.recList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case buildCompleteMsg:
		m.result = msg.result
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
	case RecommendationListView:
		return m.renderRecommendationList()
	case ConfirmView:
		return m.renderConfirm()
	case BuildView:
		return m.renderBuild()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleRecommendationListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if item, ok := m.recList.SelectedItem().(recommendationItem); ok {
			item.excluded = !item.excluded
			return m, m.recList.SetItem(m.recList.Index(), item)
		}
	case "enter":
		if m.fetched && len(m.included()) > 0 {
			m.view = ConfirmView
			return m, nil
		}
	}

	if !m.fetched {
		return m, nil
	}

	var cmd tea.Cmd
	m.recList, cmd = m.recList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = RecommendationListView
		return m, nil
	case "y":
		m.view = BuildView
		return m, m.startBuild()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = RecommendationListView
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == RecommendationListView && m.fetched {
		m.recList, cmd = m.recList.Update(msg)
	}
	return m, cmd
}

// included collects the recommendations still toggled on, in list order.
func (m *Model) included() []models.Recommendation {
	var recs []models.Recommendation
	for _, it := range m.recList.Items() {
		if item, ok := it.(recommendationItem); ok && !item.excluded {
			recs = append(recs, item.rec)
		}
	}
	return recs
}

func (m *Model) fetchRecommendations() tea.Cmd {
	return func() tea.Msg {
		recommendations, err := m.engine.Discover(m.ctx, nil, m.opts)
		return recommendationsFetchedMsg{recommendations: recommendations, err: err}
	}
}

// startBuild hands the kept recommendations to the build closure on a
// goroutine. The goroutine owns the progress channel and closes it when
// the build returns; waitForProgress observing the close is what carries
// the final result into Update.
func (m *Model) startBuild() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	recommendations := m.included()

	go func() {
		result, err := m.build(m.ctx, recommendations, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return buildCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return buildCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRecommendationList() string {
	if !m.fetched {
		return styles.help.Render("🔍 Discovering new music from your Last.fm history...")
	}
	if len(m.recList.Items()) == 0 {
		return styles.warn.Render("Couldn't find any recommendations.\n\nPress q to quit")
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.recList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	included := m.included()
	title := styles.title.Render("Create a Spotify playlist from these discoveries?")
	info := fmt.Sprintf("\nRecommendations: %d of %d selected\n", len(included), len(m.recList.Items()))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderBuild() string {
	title := styles.title.Render("Building Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.Authorize:
		phase = "🔐 Waiting for Spotify authorization..."
	case tasks.CreatePlaylist:
		phase = "Creating playlist on Spotify..."
	case tasks.SearchTracks:
		phase = fmt.Sprintf("Searching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.AddTracks:
		phase = "Adding tracks to playlist..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Build failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✅ Successfully created Spotify playlist!")
	info := fmt.Sprintf(
		"\n🎵 Open your playlist here: %s\nMatched: %d/%d recommendations\nAdded: %d tracks",
		m.result.Playlist.PublicURL,
		m.result.MatchedCount,
		len(m.result.Matches),
		m.result.AddedCount,
	)

	var skipped string
	if m.result.MatchedCount < len(m.result.Matches) {
		count := len(m.result.Matches) - m.result.MatchedCount
		skipped = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("No match found for %d recommendations:", count)))
		for _, match := range m.result.Matches {
			if !match.Matched {
				skipped += fmt.Sprintf("\n  • %s - %s", match.ArtistName, match.AlbumName)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, skipped, helpView)
}
