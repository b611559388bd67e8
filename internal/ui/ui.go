package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListBrowserView ViewState = iota
	EntryListView
	QueryView
	ExtractView
	ResultView
)

// ListSource loads the saved vocabulary lists shown in the browser.
// Satisfied by repositories.ListRepository.
type ListSource interface {
	ListByUser(userID string) ([]*models.VocabularyList, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	userID       string
	source       ListSource
	engine       *tasks.VocabEngine
	width        int
	height       int
	listBrowser  list.Model
	lists        []*models.VocabularyList
	entryList    list.Model
	selectedList *models.VocabularyList
	queryInput   textinput.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.ExtractResult
	err          error
	help         help.Model
	keys         keyMap
}

type listsFetchedMsg struct {
	lists []*models.VocabularyList
	err   error
}

type progressUpdateMsg tasks.ProgressUpdate

type extractCompleteMsg struct {
	result *tasks.ExtractResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, userID string, source ListSource, engine *tasks.VocabEngine) *Model {
	input := textinput.New()
	input.Placeholder = "artist - song title"
	input.CharLimit = 120

	return &Model{
		ctx:        ctx,
		view:       ListBrowserView,
		userID:     userID,
		source:     source,
		engine:     engine,
		queryInput: input,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by loading the saved vocabulary lists.
func (m *Model) Init() tea.Cmd {
	return m.fetchLists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listBrowser.Width() == 0 {
			m.listBrowser.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.entryList.Width() == 0 {
			m.entryList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListBrowserView:
			return m.handleListBrowserKeys(msg)
		case EntryListView:
			return m.handleEntryListKeys(msg)
		case QueryView:
			return m.handleQueryKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case listsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.lists = msg.lists
		items := make([]list.Item, len(msg.lists))
		for i, l := range msg.lists {
			items[i] = vocabListItem{list: l}
		}
		m.listBrowser = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.listBrowser.Title = "Vocabulary Lists"
		m.listBrowser.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case extractCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ListBrowserView:
		return m.renderListBrowser()
	case EntryListView:
		return m.renderEntryList()
	case QueryView:
		return m.renderQuery()
	case ExtractView:
		return m.renderExtract()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListBrowserKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		m.queryInput.SetValue("")
		m.queryInput.Focus()
		m.view = QueryView
		return m, textinput.Blink
	case "enter":
		selected := m.listBrowser.SelectedItem()
		if selected != nil {
			if item, ok := selected.(vocabListItem); ok {
				m.openList(item.list)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.listBrowser, cmd = m.listBrowser.Update(msg)
	return m, cmd
}

// openList builds the entry view for a selected list.
func (m *Model) openList(l *models.VocabularyList) {
	m.selectedList = l
	items := make([]list.Item, len(l.Entries))
	for i, entry := range l.Entries {
		items[i] = entryItem{entry: entry}
	}
	m.entryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.entryList.Title = fmt.Sprintf("Words in '%s'", l.Title)
	m.entryList.SetSize(m.width-4, m.height-8)
	m.view = EntryListView
}

func (m *Model) handleEntryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ListBrowserView
		return m, nil
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ListBrowserView
		return m, nil
	case "enter":
		query := m.queryInput.Value()
		if query == "" {
			return m, nil
		}
		m.view = ExtractView
		return m, m.startExtraction(query)
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = ListBrowserView
		m.selectedList = nil
		m.result = nil
		m.err = nil
		return m, m.fetchLists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListBrowserView:
		m.listBrowser, cmd = m.listBrowser.Update(msg)
	case EntryListView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchLists() tea.Cmd {
	return func() tea.Msg {
		lists, err := m.source.ListByUser(m.userID)
		return listsFetchedMsg{lists: lists, err: err}
	}
}

func (m *Model) startExtraction(query string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.engine.Extract(m.ctx, m.userID, query, progress)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return extractCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return extractCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderListBrowser() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.newRun, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.listBrowser.View(), helpView)
}

func (m *Model) renderEntryList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.entryList.View(), helpView)
}

func (m *Model) renderQuery() string {
	title := styles.title.Render("New Extraction")
	prompt := "Enter a song to extract vocabulary from:"

	submitKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "extract"))
	helpKeys := []key.Binding{submitKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, prompt, m.queryInput.View(), helpView)
}

func (m *Model) renderExtract() string {
	title := styles.title.Render("Extracting Vocabulary")

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveSong:
		phase = "Resolving song..."
	case tasks.FetchLyrics:
		phase = "Fetching lyrics..."
	case tasks.ExtractWords:
		phase = "Extracting words..."
	case tasks.PersistResults:
		phase = "Saving results..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Extraction failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Extraction Complete!")
	info := fmt.Sprintf(
		"\nSong: %s - %s\nWords: %d (%s/%s)",
		m.result.Song.Artist,
		m.result.Song.Title,
		len(m.result.Entries),
		m.result.Options.Language,
		m.result.Options.Level,
	)

	var preview string
	limit := len(m.result.Entries)
	if limit > 5 {
		limit = 5
	}
	for _, entry := range m.result.Entries[:limit] {
		preview += fmt.Sprintf("\n  • %s", entry.Word)
	}
	if len(m.result.Entries) > limit {
		preview += fmt.Sprintf("\n  … and %d more", len(m.result.Entries)-limit)
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, info, preview, helpView)
}
