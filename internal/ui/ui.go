package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	ListView
	DetailView
)

const defaultCount = 20

// Catalog is the subset of the catalog client the browser reads from.
type Catalog interface {
	TopArtists(ctx context.Context, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error)
	TopProducts(ctx context.Context, category models.Category, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Product], error)
	NewReleases(ctx context.Context, category models.Category, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Product], error)
	SimilarArtists(ctx context.Context, artistID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error)
}

// Section is a menu entry that loads a list.
type Section struct {
	Title       string
	Description string
	Load        func(ctx context.Context) ([]list.Item, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	catalog Catalog
	count   int
	view    ViewState
	menu    list.Model
	stack   []list.Model
	detail  list.Item
	loading bool
	err     error
	width   int
	height  int
	help    help.Model
	keys    keyMap
}

// Option configures a [Model].
type Option func(*Model)

// WithCount sets how many items each chart loads.
func WithCount(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.count = n
		}
	}
}

// WithResults opens the browser on a list of search hits instead of the menu.
func WithResults(title string, results []models.SearchResult) Option {
	return func(m *Model) {
		m.push(title, searchItems(results))
	}
}

// NewModel creates a browser over catalog.
func NewModel(ctx context.Context, catalog Catalog, opts ...Option) *Model {
	m := &Model{
		ctx:     ctx,
		catalog: catalog,
		count:   defaultCount,
		view:    MenuView,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}

	sections := m.sections()
	items := make([]list.Item, len(sections))
	for i, s := range sections {
		items[i] = sectionItem{section: s}
	}
	m.menu = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.menu.Title = "MixRadio"
	return m
}

func (m *Model) sections() []Section {
	return []Section{
		{
			Title:       "Top tracks",
			Description: "Most popular tracks right now",
			Load: func(ctx context.Context) ([]list.Item, error) {
				return productItems(m.catalog.TopProducts(ctx, models.CategoryTrack, "", 0, m.count))
			},
		},
		{
			Title:       "Top albums",
			Description: "Most popular albums right now",
			Load: func(ctx context.Context) ([]list.Item, error) {
				return productItems(m.catalog.TopProducts(ctx, models.CategoryAlbum, "", 0, m.count))
			},
		},
		{
			Title:       "New albums",
			Description: "Recently released albums",
			Load: func(ctx context.Context) ([]list.Item, error) {
				return productItems(m.catalog.NewReleases(ctx, models.CategoryAlbum, "", 0, m.count))
			},
		},
		{
			Title:       "Top artists",
			Description: "Most played artists",
			Load: func(ctx context.Context) ([]list.Item, error) {
				return artistItems(m.catalog.TopArtists(ctx, "", 0, m.count))
			},
		},
	}
}

func productItems(resp *api.ListResponse[models.Product], err error) ([]list.Item, error) {
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	items := make([]list.Item, len(resp.Items))
	for i, p := range resp.Items {
		items[i] = productItem{product: p}
	}
	return items, nil
}

func artistItems(resp *api.ListResponse[models.Artist], err error) ([]list.Item, error) {
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	items := make([]list.Item, len(resp.Items))
	for i, a := range resp.Items {
		items[i] = artistItem{artist: a}
	}
	return items, nil
}

// Init has nothing to fetch; sections load on selection.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-8)
		for i := range m.stack {
			m.stack[i].SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering() {
			return m.updateLists(msg)
		}
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		if msg.kind == MsgItemsLoaded {
			loaded := msg.data.(itemsLoaded)
			m.loading = false
			if loaded.err != nil {
				m.err = loaded.err
				return m, nil
			}
			m.err = nil
			m.push(loaded.title, loaded.items)
			return m, nil
		}
	}

	return m.updateLists(msg)
}

func (m *Model) filtering() bool {
	switch m.view {
	case MenuView:
		return m.menu.FilterState() == list.Filtering
	case ListView:
		return m.current().FilterState() == list.Filtering
	}
	return false
}

func (m *Model) current() *list.Model {
	return &m.stack[len(m.stack)-1]
}

func (m *Model) push(title string, items []list.Item) {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	if m.width > 0 {
		l.SetSize(m.width-4, m.height-8)
	}
	m.stack = append(m.stack, l)
	m.view = ListView
}

func (m *Model) load(title string, fn func(ctx context.Context) ([]list.Item, error)) tea.Cmd {
	m.loading = true
	ctx := m.ctx
	return func() tea.Msg {
		items, err := fn(ctx)
		return itemsLoadedMsg(title, items, err)
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if m.loading {
			return m, nil
		}
		if s, ok := m.menu.SelectedItem().(sectionItem); ok {
			return m, m.load(s.section.Title, s.section.Load)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.stack = m.stack[:len(m.stack)-1]
		m.err = nil
		if len(m.stack) == 0 {
			m.view = MenuView
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item := m.current().SelectedItem(); item != nil {
			m.detail = item
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	*m.current(), cmd = m.current().Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.similar):
		artist, ok := m.detail.(artistItem)
		if !ok || m.loading {
			return m, nil
		}
		id := artist.artist.ID
		return m, m.load("Similar to "+artist.artist.Name, func(ctx context.Context) ([]list.Item, error) {
			return artistItems(m.catalog.SimilarArtists(ctx, id, 0, m.count))
		})
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.menu, cmd = m.menu.Update(msg)
	case ListView:
		*m.current(), cmd = m.current().Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case MenuView:
		body = m.renderList(m.menu, m.keys.enter, m.keys.quit)
	case ListView:
		body = m.renderList(*m.current(), m.keys.enter, m.keys.back, m.keys.quit)
	case DetailView:
		body = m.renderDetail()
	}

	status := ""
	switch {
	case m.loading:
		status = styles.warn.Render("Loading...") + "\n\n"
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}
	return status + body
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderDetail() string {
	title, fields := detailFields(m.detail)

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(f.label), f.value)
	}

	keys := []key.Binding{m.keys.back, m.keys.quit}
	if _, ok := m.detail.(artistItem); ok {
		keys = []key.Binding{m.keys.similar, m.keys.back, m.keys.quit}
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(keys))
	return b.String()
}

// Run starts the browser full screen and blocks until the user quits.
func Run(ctx context.Context, catalog Catalog, opts ...Option) error {
	p := tea.NewProgram(NewModel(ctx, catalog, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
