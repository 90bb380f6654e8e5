package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/tasks"
)

// Model is the picker's application state.
type Model struct {
	ctx     context.Context
	catalog *tasks.Catalog
	list    list.Model
	width   int
	height  int
	loaded  bool
	choice  *models.PlaylistSummary
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a picker that will fetch the listing through catalog.
func NewModel(ctx context.Context, catalog *tasks.Catalog) *Model {
	return &Model{
		ctx:     ctx,
		catalog: catalog,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Choice returns the selected playlist, or nil when the picker was dismissed.
func (m *Model) Choice() *models.PlaylistSummary { return m.choice }

// Err returns the listing fetch error, if any.
func (m *Model) Err() error { return m.err }

// Init starts the listing fetch.
func (m *Model) Init() tea.Cmd {
	return m.fetchListing()
}

// Update handles incoming messages and updates the picker state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.loaded {
			m.list.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case listingLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.playlists))
		for i, p := range msg.playlists {
			items[i] = playlistItem{playlist: p}
		}
		m.list = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.list.Title = "Select a playlist to export"
		m.list.Styles.Title = styles.title
		m.list.SetSize(m.width-4, m.height-6)
		m.loaded = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateList(msg)
}

// View renders the picker.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}
	if !m.loaded {
		return styles.help.Render("Loading playlists...")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the user is typing a filter, every key belongs to the list.
	if m.loaded && m.list.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		if !m.loaded {
			return m, nil
		}
		if selected := m.list.SelectedItem(); selected != nil {
			if item, ok := selected.(playlistItem); ok {
				m.choice = &item.playlist
			}
		}
		return m, tea.Quit
	}

	return m.updateList(msg)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.loaded {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) fetchListing() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.catalog.ListPlaylists(m.ctx, nil)
		return listingLoadedMsg{playlists: playlists, err: err}
	}
}

// Pick runs the picker and returns the chosen playlist. A nil playlist with a
// nil error means the user dismissed the picker without choosing.
func Pick(ctx context.Context, catalog *tasks.Catalog) (*models.PlaylistSummary, error) {
	model := NewModel(ctx, catalog)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("error running picker: %w", err)
	}

	picked, ok := final.(*Model)
	if !ok {
		return nil, nil
	}
	if picked.err != nil {
		return nil, picked.err
	}
	return picked.choice, nil
}
