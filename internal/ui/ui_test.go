package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/models"
)

type fakeCatalog struct {
	artists    []models.Artist
	products   []models.Product
	similar    []models.Artist
	similarFor string
	err        error
}

func (f *fakeCatalog) TopArtists(context.Context, string, int, int) (*api.ListResponse[models.Artist], error) {
	return &api.ListResponse[models.Artist]{Items: f.artists}, nil
}

func (f *fakeCatalog) TopProducts(context.Context, models.Category, string, int, int) (*api.ListResponse[models.Product], error) {
	if f.err != nil {
		return &api.ListResponse[models.Product]{Response: api.Response{Error: f.err}}, nil
	}
	return &api.ListResponse[models.Product]{Items: f.products}, nil
}

func (f *fakeCatalog) NewReleases(ctx context.Context, c models.Category, g string, s, n int) (*api.ListResponse[models.Product], error) {
	return f.TopProducts(ctx, c, g, s, n)
}

func (f *fakeCatalog) SimilarArtists(_ context.Context, id string, _, _ int) (*api.ListResponse[models.Artist], error) {
	f.similarFor = id
	return &api.ListResponse[models.Artist]{Items: f.similar}, nil
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

// press sends msg and feeds any returned command's message back in once.
func press(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if out, ok := cmd().(Msg); ok {
		m.Update(out)
	}
}

func TestModel(t *testing.T) {
	catalog := &fakeCatalog{
		products: []models.Product{{ID: "t1", Name: "Teardrop", Category: models.CategoryTrack, Performers: []models.Artist{{Name: "Massive Attack"}}}},
		artists:  []models.Artist{{ID: "a1", Name: "Massive Attack", Country: "GB"}},
		similar:  []models.Artist{{ID: "a2", Name: "Portishead"}},
	}

	t.Run("starts on the menu", func(t *testing.T) {
		m := NewModel(context.Background(), catalog)
		if m.view != MenuView {
			t.Fatalf("expected menu view, got %v", m.view)
		}
		if got := len(m.menu.Items()); got != 4 {
			t.Errorf("expected 4 sections, got %d", got)
		}
	})

	t.Run("enter loads a section", func(t *testing.T) {
		m := NewModel(context.Background(), catalog)
		press(t, m, enterKey)

		if m.view != ListView {
			t.Fatalf("expected list view, got %v", m.view)
		}
		if m.current().Title != "Top tracks" {
			t.Errorf("unexpected list title %q", m.current().Title)
		}
		if len(m.current().Items()) != 1 {
			t.Errorf("expected 1 item, got %d", len(m.current().Items()))
		}
	})

	t.Run("detail and back", func(t *testing.T) {
		m := NewModel(context.Background(), catalog)
		press(t, m, enterKey)
		press(t, m, enterKey)

		if m.view != DetailView {
			t.Fatalf("expected detail view, got %v", m.view)
		}
		view := m.View()
		if !strings.Contains(view, "Teardrop") || !strings.Contains(view, "Massive Attack") {
			t.Errorf("detail view missing fields: %s", view)
		}

		press(t, m, escKey)
		if m.view != ListView {
			t.Errorf("expected list view after esc, got %v", m.view)
		}
		press(t, m, escKey)
		if m.view != MenuView {
			t.Errorf("expected menu view after second esc, got %v", m.view)
		}
	})

	t.Run("similar artists", func(t *testing.T) {
		m := NewModel(context.Background(), catalog)
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		for range 3 {
			press(t, m, downKey)
		}
		press(t, m, enterKey)
		if m.current().Title != "Top artists" {
			t.Fatalf("expected top artists, got %q", m.current().Title)
		}

		press(t, m, enterKey)
		press(t, m, runeKey("s"))

		if catalog.similarFor != "a1" {
			t.Errorf("expected similar lookup for a1, got %q", catalog.similarFor)
		}
		if m.view != ListView || len(m.stack) != 2 {
			t.Fatalf("expected a second list, got view %v with %d lists", m.view, len(m.stack))
		}
		if m.current().Title != "Similar to Massive Attack" {
			t.Errorf("unexpected title %q", m.current().Title)
		}
	})

	t.Run("similar ignored for products", func(t *testing.T) {
		m := NewModel(context.Background(), catalog)
		press(t, m, enterKey)
		press(t, m, enterKey)
		_, cmd := m.Update(runeKey("s"))
		if cmd != nil {
			t.Error("expected no command for a product")
		}
	})

	t.Run("load error stays on menu", func(t *testing.T) {
		failing := &fakeCatalog{err: &api.Error{Kind: api.ErrAPINotAvailable, StatusCode: 404}}
		m := NewModel(context.Background(), failing)
		press(t, m, enterKey)

		if m.view != MenuView {
			t.Errorf("expected menu view, got %v", m.view)
		}
		if m.err == nil || !strings.Contains(m.View(), "Error:") {
			t.Errorf("expected error banner, got %s", m.View())
		}
	})

	t.Run("WithResults opens a list", func(t *testing.T) {
		results := []models.SearchResult{
			{Category: models.CategoryArtist, Artist: &models.Artist{ID: "a1", Name: "Massive Attack"}},
			{Category: models.CategoryAlbum, Product: &models.Product{ID: "p1", Name: "Mezzanine"}},
		}
		m := NewModel(context.Background(), catalog, WithResults("Search: massive", results))

		if m.view != ListView {
			t.Fatalf("expected list view, got %v", m.view)
		}
		if len(m.current().Items()) != 2 {
			t.Errorf("expected 2 items, got %d", len(m.current().Items()))
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := NewModel(context.Background(), catalog)
		_, cmd := m.Update(runeKey("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestDetailFields(t *testing.T) {
	title, fields := detailFields(artistItem{artist: models.Artist{
		ID:         "a1",
		Name:       "Massive Attack",
		Genres:     []models.Genre{{Name: "Trip Hop"}, {Name: "Electronic"}},
		Thumbnails: models.Thumbnails{"100x100": "small", "320x320": "large"},
	}})

	if title != "Massive Attack" {
		t.Errorf("unexpected title %q", title)
	}
	values := map[string]string{}
	for _, f := range fields {
		values[f.label] = f.value
	}
	if values["Genres"] != "Trip Hop, Electronic" {
		t.Errorf("unexpected genres %q", values["Genres"])
	}
	if values["Image"] != "large" {
		t.Errorf("expected the largest thumbnail, got %q", values["Image"])
	}
}
