package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/models"
	tu "github.com/desertthunder/mixradio/internal/testing"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, d *tu.StubDispatcher, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		ClientID:         "client-1",
		ClientSecret:     "secret",
		CountryCode:      "gb",
		APIBaseURL:       "http://api.example/",
		SecureAPIBaseURL: "https://sapi.example/",
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	c, err := New(cfg, WithDispatcher(d))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func uriPath(uri string) string {
	path, _, _ := strings.Cut(uri, "?")
	return path
}

func TestNew(t *testing.T) {
	t.Run("requires client id", func(t *testing.T) {
		if _, err := New(Config{}); !errors.Is(err, api.ErrCredentialsRequired) {
			t.Errorf("expected ErrCredentialsRequired, got %v", err)
		}
	})

	t.Run("rejects bad country code", func(t *testing.T) {
		if _, err := New(Config{ClientID: "id", CountryCode: "gbr"}); !errors.Is(err, api.ErrInvalidCountryCode) {
			t.Errorf("expected ErrInvalidCountryCode, got %v", err)
		}
	})
}

func TestArtistProducts(t *testing.T) {
	t.Run("builds the path", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"items":[{"id":"p1","name":"Album","category":{"id":"Album"}}],"paging":{"startindex":0,"itemsperpage":10,"total":1}}`))
		c := newTestClient(t, d)

		resp, err := c.ArtistProducts(context.Background(), ArtistProductsParams{ArtistID: "123456"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if uriPath(d.LastURI()) != "http://api.example/1.x/gb/creators/123456/products/" {
			t.Errorf("unexpected uri %s", d.LastURI())
		}
		if !resp.Succeeded() || len(resp.Items) != 1 || *resp.TotalResults != 1 {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("filters", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"items":[]}`))
		c := newTestClient(t, d)

		c.ArtistProducts(context.Background(), ArtistProductsParams{
			ArtistID:  "1",
			Category:  models.CategorySingle,
			OrderBy:   models.OrderByReleaseDate,
			SortOrder: models.SortDescending,
		})
		uri := d.LastURI()
		if tu.QueryValue(uri, "category") != "single" || tu.QueryValue(uri, "orderby") != "releasedate" || tu.QueryValue(uri, "sortorder") != "desc" {
			t.Errorf("unexpected filters in %s", uri)
		}
	})

	t.Run("empty artist id", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow)
		c := newTestClient(t, d)

		if _, err := c.ArtistProducts(context.Background(), ArtistProductsParams{}); !api.IsArgumentError(err) {
			t.Errorf("expected argument error, got %v", err)
		}
		if d.Calls() != 0 {
			t.Error("expected no network call")
		}
	})
}

func TestTopProducts(t *testing.T) {
	tests := []struct {
		name     string
		category models.Category
		genre    string
		path     string
	}{
		{"album chart", models.CategoryAlbum, "", "http://api.example/1.x/gb/products/charts/album/"},
		{"genre album chart", models.CategoryAlbum, "pop", "http://api.example/1.x/gb/genres/pop/charts/album/"},
		{"track chart", models.CategoryTrack, "", "http://api.example/1.x/gb/products/charts/track/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"items":[]}`))
			c := newTestClient(t, d)

			if _, err := c.TopProducts(context.Background(), tt.category, tt.genre, 0, 0); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := uriPath(d.LastURI()); got != tt.path {
				t.Errorf("expected %s, got %s", tt.path, got)
			}
		})
	}

	for _, category := range []models.Category{models.CategorySingle, models.CategoryArtist, models.CategoryUnknown} {
		t.Run("unsupported "+category.String(), func(t *testing.T) {
			d := tu.NewStubDispatcher(testNow)
			c := newTestClient(t, d)

			if _, err := c.TopProducts(context.Background(), category, "", 0, 0); !api.IsArgumentError(err) {
				t.Errorf("expected argument error, got %v", err)
			}
			if d.Calls() != 0 {
				t.Error("expected no network call")
			}
		})
	}

	t.Run("new releases", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"items":[]}`))
		c := newTestClient(t, d)

		c.NewReleases(context.Background(), models.CategoryTrack, "", 5, 20)
		if uriPath(d.LastURI()) != "http://api.example/1.x/gb/products/new/track/" {
			t.Errorf("unexpected uri %s", d.LastURI())
		}
		if tu.QueryValue(d.LastURI(), "startindex") != "5" || tu.QueryValue(d.LastURI(), "itemsperpage") != "20" {
			t.Errorf("unexpected paging in %s", d.LastURI())
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("mixed results", func(t *testing.T) {
		body := `{"items":[{"id":"1","name":"Muse","category":{"id":"Artist"}},{"id":"2","name":"Uprising","category":{"id":"Track"}}]}`
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(body))
		c := newTestClient(t, d)

		resp, err := c.Search(context.Background(), SearchParams{Term: "muse uprising", Category: models.CategoryTrack})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(resp.Items) != 2 || resp.Items[0].Artist == nil || resp.Items[1].Product == nil {
			t.Errorf("unexpected items %+v", resp.Items)
		}
		if resp.HasPaging() {
			t.Error("expected no paging")
		}
		uri := d.LastURI()
		if tu.QueryValue(uri, "q") != "muse%20uprising" || tu.QueryValue(uri, "category") != "track" {
			t.Errorf("unexpected query %s", uri)
		}
	})

	t.Run("location search", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"items":[]}`))
		c := newTestClient(t, d)

		c.Search(context.Background(), SearchParams{Location: &models.Location{Latitude: 51.5, Longitude: -0.12}, MaxDistance: 50, MinBPM: 120})
		uri := d.LastURI()
		if tu.QueryValue(uri, "location") != "51.5%2C-0.12" || tu.QueryValue(uri, "maxdistance") != "50" || tu.QueryValue(uri, "minbpm") != "120" {
			t.Errorf("unexpected query %s", uri)
		}
		if tu.QueryValue(uri, "maxbpm") != "" {
			t.Error("expected unset maxbpm to be omitted")
		}
	})

	t.Run("requires a filter", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow)
		c := newTestClient(t, d)
		if _, err := c.Search(context.Background(), SearchParams{}); !api.IsArgumentError(err) {
			t.Errorf("expected argument error, got %v", err)
		}
	})

	t.Run("suggestions", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"items":["muse","museum"]}`))
		c := newTestClient(t, d)

		resp, _ := c.SearchSuggestions(context.Background(), "mus", 0)
		if len(resp.Items) != 2 {
			t.Errorf("expected 2 suggestions, got %d", len(resp.Items))
		}
		uri := d.LastURI()
		if uriPath(uri) != "http://api.example/1.x/gb/suggestions/" || tu.QueryValue(uri, "maxitems") != "3" {
			t.Errorf("unexpected uri %s", uri)
		}
		if strings.Contains(uri, "startindex") {
			t.Error("expected suggestions to be unpaged")
		}
	})
}

func TestMixes(t *testing.T) {
	t.Run("groups carry the music domain", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"items":[{"id":"g1","name":"Chill"}]}`))
		c := newTestClient(t, d)

		resp, _ := c.MixGroups(context.Background(), "partner", 0, 0)
		uri := d.LastURI()
		if !strings.HasPrefix(uri, "http://api.example/1.x/gb/mixes/groups/?client_id=client-1&domain=music&") {
			t.Errorf("unexpected uri %s", uri)
		}
		if tu.QueryValue(uri, "exclusivity") != "partner" || len(resp.Items) != 1 {
			t.Errorf("unexpected result for %s", uri)
		}
	})

	t.Run("mixes of a group", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"mixes":[{"id":"m1","name":"Focus"}]}`))
		c := newTestClient(t, d)

		resp, _ := c.Mixes(context.Background(), "g1", "", 0, 0)
		if uriPath(d.LastURI()) != "http://api.example/1.x/gb/mixes/groups/g1/" || len(resp.Items) != 1 {
			t.Errorf("unexpected result %s %+v", d.LastURI(), resp.Items)
		}
	})

	t.Run("Mix returns the failure", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewRawResponse(http.StatusInternalServerError, "text/plain", "down"))
		c := newTestClient(t, d)

		if _, err := c.Mix(context.Background(), "m1"); !errors.Is(err, api.ErrAPICallFailed) {
			t.Errorf("expected ErrAPICallFailed, got %v", err)
		}
	})

	t.Run("Mix success", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{"id":"m1","name":"Focus"}`))
		c := newTestClient(t, d)

		mix, err := c.Mix(context.Background(), "m1")
		if err != nil || mix.Name != "Focus" {
			t.Errorf("unexpected mix %+v (%v)", mix, err)
		}
	})
}

func TestCheckAvailability(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewJSONResponse(`{}`))
		c := newTestClient(t, d)

		ok, err := c.CheckAvailability(context.Background())
		if err != nil || !ok {
			t.Errorf("expected available, got %v (%v)", ok, err)
		}
		if uriPath(d.LastURI()) != "http://api.example/1.x/gb/" {
			t.Errorf("unexpected uri %s", d.LastURI())
		}
	})

	t.Run("not available", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewRawResponse(http.StatusNotFound, "", ""))
		c := newTestClient(t, d)

		ok, err := c.CheckAvailability(context.Background())
		if err != nil || ok {
			t.Errorf("expected unavailable, got %v (%v)", ok, err)
		}
	})

	t.Run("other failures are returned", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow, tu.NewRawResponse(http.StatusForbidden, "", ""))
		c := newTestClient(t, d)

		if _, err := c.CheckAvailability(context.Background()); !errors.Is(err, api.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestResolveGenre(t *testing.T) {
	body := `{"items":[{"id":"Rock","name":"Rock"},{"id":"HipHop","name":"Hip Hop"},{"id":"Electronic","name":"Electronic"}]}`

	tests := []struct {
		query string
		want  string
	}{
		{"rock", "Rock"},
		{"hiphop", "HipHop"},
		{"elec", "Electronic"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := newTestClient(t, tu.NewStubDispatcher(testNow, tu.NewJSONResponse(body)))
			g, err := c.ResolveGenre(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if g.ID != tt.want {
				t.Errorf("expected %s, got %s", tt.want, g.ID)
			}
		})
	}

	t.Run("no match", func(t *testing.T) {
		c := newTestClient(t, tu.NewStubDispatcher(testNow, tu.NewJSONResponse(body)))
		if _, err := c.ResolveGenre(context.Background(), "zzz"); !api.IsArgumentError(err) {
			t.Errorf("expected argument error, got %v", err)
		}
	})
}

func TestUserEndpoints(t *testing.T) {
	tokenBody := `{"access_token":"access-1","refresh_token":"r","expires_in":3600,"user_id":"user-1","territory":"de"}`

	t.Run("requires sign in", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow)
		c := newTestClient(t, d)

		resp, err := c.UserPlayHistory(context.Background(), 0, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !errors.Is(resp.Error, api.ErrUserAuthRequired) || d.Calls() != 0 {
			t.Errorf("expected ErrUserAuthRequired without a call, got %v", resp.Error)
		}
	})

	t.Run("play history after sign in", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow,
			tu.NewJSONResponse(tokenBody),
			tu.NewJSONResponse(`{"items":[{"action":"Played","datetime":"2030-05-01T10:00:00Z","product":{"id":"t1","name":"Uprising"}}]}`),
		)
		c := newTestClient(t, d, func(cfg *Config) { cfg.CountryCode = "" })

		if _, err := c.Acquire(context.Background(), "secret", "code"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Settings().CountryCode != "de" || c.Settings().CountryCodeInferred {
			t.Errorf("expected territory to be pinned, got %+v", c.Settings())
		}

		resp, err := c.UserPlayHistory(context.Background(), 0, 0)
		if err != nil || !resp.Succeeded() {
			t.Fatalf("expected success, got %v / %v", err, resp.Error)
		}
		req := d.Requests[1]
		if uriPath(req.URI) != "https://sapi.example/1.x/-/users/user-1/playhistory/" {
			t.Errorf("unexpected uri %s", req.URI)
		}
		if req.Header.Get("Authorization") != "Bearer access-1" {
			t.Errorf("unexpected authorization %q", req.Header.Get("Authorization"))
		}
		if len(resp.Items) != 1 || resp.Items[0].Product.Name != "Uprising" {
			t.Errorf("unexpected items %+v", resp.Items)
		}
	})

	t.Run("expired token refreshes first", func(t *testing.T) {
		d := tu.NewStubDispatcher(testNow,
			tu.NewJSONResponse(tokenBody),
			tu.NewJSONResponse(`{"access_token":"access-2","expires_in":3600}`),
			tu.NewJSONResponse(`{"items":[]}`),
		)
		c := newTestClient(t, d)
		c.Acquire(context.Background(), "secret", "code")
		d.SetNow(testNow.Add(2 * time.Hour))

		resp, _ := c.UserTopArtists(context.Background(), 0, 0)
		if !resp.Succeeded() {
			t.Fatalf("expected success, got %v", resp.Error)
		}
		if d.Calls() != 3 {
			t.Errorf("expected token, refresh and list calls, got %d", d.Calls())
		}
		if got := d.Requests[2].Header.Get("Authorization"); got != "Bearer access-2" {
			t.Errorf("expected refreshed bearer, got %q", got)
		}
		if uriPath(d.Requests[2].URI) != "https://sapi.example/1.x/-/users/user-1/charts/creators/" {
			t.Errorf("unexpected uri %s", d.Requests[2].URI)
		}
		if !c.IsUserAuthenticated() || !c.IsUserTokenActive() {
			t.Error("expected active token")
		}
	})
}
