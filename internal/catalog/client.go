package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/auth"
	"github.com/desertthunder/mixradio/internal/models"
	"github.com/sahilm/fuzzy"
)

// Config is everything needed to build a [Client].
type Config struct {
	ClientID         string
	ClientSecret     string
	CountryCode      string
	InferCountryCode bool // fill an empty CountryCode from the process locale
	Language         string
	APIBaseURL       string
	SecureAPIBaseURL string
	RedirectURL      string
	Scopes           []string
	Timeout          time.Duration
	IdentityHeader   string
}

// Option configures a [Client].
type Option func(*options)

type options struct {
	dispatcher api.Dispatcher
	httpClient *http.Client
	store      auth.TokenStore
	logger     *log.Logger
}

// WithDispatcher replaces the HTTP dispatcher, typically with a stub in tests.
func WithDispatcher(d api.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithHTTPClient sets the client used by the default dispatcher.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTokenStore persists the user token.
func WithTokenStore(s auth.TokenStore) Option {
	return func(o *options) { o.store = s }
}

// WithLogger sets the logger shared by the pipeline, dispatcher and token manager.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Client exposes the catalog operations.
type Client struct {
	settings atomic.Pointer[api.ClientSettings]
	pipeline *api.Pipeline
	auth     *auth.Manager
	logger   *log.Logger
}

// New validates cfg and wires the pipeline.
func New(cfg Config, opts ...Option) (*Client, error) {
	o := &options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(o)
	}

	settingsOpts := []api.SettingsOption{
		api.WithLanguage(cfg.Language),
		api.WithBaseURLs(cfg.APIBaseURL, cfg.SecureAPIBaseURL),
	}
	if cfg.InferCountryCode {
		settingsOpts = append(settingsOpts, api.WithInferredCountryCode())
	}
	settings, err := api.NewClientSettings(cfg.ClientID, cfg.CountryCode, settingsOpts...)
	if err != nil {
		return nil, err
	}

	if o.dispatcher == nil {
		dispatcherOpts := []api.DispatcherOption{
			api.WithHTTPClient(o.httpClient),
			api.WithTimeout(cfg.Timeout),
			api.WithDispatcherLogger(o.logger),
		}
		if cfg.IdentityHeader != "" {
			dispatcherOpts = append(dispatcherOpts, api.WithIdentityHeader(cfg.IdentityHeader))
		}
		o.dispatcher = api.NewHTTPDispatcher(dispatcherOpts...)
	}

	c := &Client{logger: o.logger}
	c.settings.Store(&settings)
	c.pipeline = api.NewPipeline(c.Settings, o.dispatcher, api.WithLogger(o.logger))

	managerOpts := []auth.ManagerOption{
		auth.WithClientSecret(cfg.ClientSecret),
		auth.WithRedirectURL(cfg.RedirectURL),
		auth.WithScopes(cfg.Scopes...),
		auth.WithManagerLogger(o.logger),
		auth.OnTerritory(c.pinTerritory),
	}
	if o.store != nil {
		managerOpts = append(managerOpts, auth.WithStore(o.store))
	}
	c.auth = auth.NewManager(c.pipeline, managerOpts...)
	c.pipeline.SetAuthorizer(c.auth)

	return c, nil
}

// Settings returns the current settings snapshot.
func (c *Client) Settings() api.ClientSettings { return *c.settings.Load() }

// Auth returns the token manager.
func (c *Client) Auth() *auth.Manager { return c.auth }

func (c *Client) pinTerritory(countryCode string) {
	for {
		current := c.settings.Load()
		if current.CountryCode == countryCode && !current.CountryCodeInferred {
			return
		}
		next := current.WithTerritory(countryCode)
		if c.settings.CompareAndSwap(current, &next) {
			c.logger.Info("territory pinned by user token", "country_code", countryCode)
			return
		}
	}
}

// CheckAvailability reports whether the service is offered in the configured territory.
func (c *Client) CheckAvailability(ctx context.Context) (bool, error) {
	resp, err := api.Execute(ctx, c.pipeline, availabilityCommand())
	if err != nil {
		return false, err
	}
	switch {
	case resp.Error == nil:
		return true, nil
	case errors.Is(resp.Error, api.ErrAPINotAvailable), api.StatusCodeOf(resp.Error) == http.StatusNotFound:
		return false, nil
	default:
		return false, resp.Error
	}
}

// Search runs a mixed artist/product search.
func (c *Client) Search(ctx context.Context, params SearchParams) (*api.ListResponse[models.SearchResult], error) {
	return api.ExecuteList(ctx, c.pipeline, searchCommand(params))
}

// SearchArtists searches artists only.
func (c *Client) SearchArtists(ctx context.Context, term string, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error) {
	return api.ExecuteList(ctx, c.pipeline, searchArtistsCommand(term, startIndex, itemsPerPage))
}

// SearchSuggestions returns typeahead suggestions for a partial term.
func (c *Client) SearchSuggestions(ctx context.Context, term string, maxItems int) (*api.ListResponse[string], error) {
	return api.ExecuteList(ctx, c.pipeline, suggestionsCommand(term, maxItems))
}

// ArtistProducts lists products by an artist.
func (c *Client) ArtistProducts(ctx context.Context, params ArtistProductsParams) (*api.ListResponse[models.Product], error) {
	return api.ExecuteList(ctx, c.pipeline, artistProductsCommand(params))
}

// SimilarArtists lists artists similar to artistID.
func (c *Client) SimilarArtists(ctx context.Context, artistID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error) {
	return api.ExecuteList(ctx, c.pipeline, similarArtistsCommand(artistID, startIndex, itemsPerPage))
}

// ArtistsAroundLocation lists artists originating near a point. maxDistance is in km; zero leaves it to the service.
func (c *Client) ArtistsAroundLocation(ctx context.Context, loc models.Location, maxDistance, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error) {
	return api.ExecuteList(ctx, c.pipeline, artistsAroundCommand(loc, maxDistance, startIndex, itemsPerPage))
}

// TopArtists is the artist chart, optionally within a genre.
func (c *Client) TopArtists(ctx context.Context, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error) {
	return api.ExecuteList(ctx, c.pipeline, topArtistsCommand(genreID, startIndex, itemsPerPage))
}

// TopProducts is the album or track chart, optionally within a genre.
func (c *Client) TopProducts(ctx context.Context, category models.Category, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Product], error) {
	return api.ExecuteList(ctx, c.pipeline, topProductsCommand(category, genreID, startIndex, itemsPerPage))
}

// NewReleases lists new albums or tracks, optionally within a genre.
func (c *Client) NewReleases(ctx context.Context, category models.Category, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Product], error) {
	return api.ExecuteList(ctx, c.pipeline, newReleasesCommand(category, genreID, startIndex, itemsPerPage))
}

// Product fetches a single product.
func (c *Client) Product(ctx context.Context, id string) (*api.ItemResponse[models.Product], error) {
	return api.Execute(ctx, c.pipeline, productCommand(id))
}

// Genres lists the territory's genres.
func (c *Client) Genres(ctx context.Context) (*api.ListResponse[models.Genre], error) {
	return api.ExecuteList(ctx, c.pipeline, genresCommand())
}

// ResolveGenre finds the genre best matching name: exact id or name first, then fuzzy.
func (c *Client) ResolveGenre(ctx context.Context, name string) (models.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Genre{}, api.ArgumentError("genre name is required")
	}

	resp, err := c.Genres(ctx)
	if err != nil {
		return models.Genre{}, err
	}
	if resp.Error != nil {
		return models.Genre{}, resp.Error
	}
	return matchGenre(resp.Items, name)
}

type genreNames []models.Genre

func (g genreNames) String(i int) string { return g[i].Name }
func (g genreNames) Len() int            { return len(g) }

func matchGenre(genres []models.Genre, name string) (models.Genre, error) {
	for _, g := range genres {
		if strings.EqualFold(g.ID, name) || strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	matches := fuzzy.FindFrom(name, genreNames(genres))
	if len(matches) == 0 {
		return models.Genre{}, api.ArgumentError("no genre matches %q", name)
	}
	return genres[matches[0].Index], nil
}

// MixGroups lists the curated mix groups; exclusiveTag narrows to a partner's groups.
func (c *Client) MixGroups(ctx context.Context, exclusiveTag string, startIndex, itemsPerPage int) (*api.ListResponse[models.MixGroup], error) {
	return api.ExecuteList(ctx, c.pipeline, mixGroupsCommand(exclusiveTag, startIndex, itemsPerPage))
}

// Mixes lists the mixes of a group.
func (c *Client) Mixes(ctx context.Context, groupID, exclusiveTag string, startIndex, itemsPerPage int) (*api.ListResponse[models.Mix], error) {
	return api.ExecuteList(ctx, c.pipeline, mixesCommand(groupID, exclusiveTag, startIndex, itemsPerPage))
}

// Mix fetches a single mix and returns any failure directly.
func (c *Client) Mix(ctx context.Context, mixID string) (*models.Mix, error) {
	resp, err := api.Execute(ctx, c.pipeline, mixCommand(mixID))
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp.Result, nil
}

// UserPlayHistory lists what the signed in user played recently.
func (c *Client) UserPlayHistory(ctx context.Context, startIndex, itemsPerPage int) (*api.ListResponse[models.PlayEvent], error) {
	return api.ExecuteList(ctx, c.pipeline, playHistoryCommand(c.auth.UserID, startIndex, itemsPerPage))
}

// UserTopArtists lists the signed in user's most played artists.
func (c *Client) UserTopArtists(ctx context.Context, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error) {
	return api.ExecuteList(ctx, c.pipeline, userTopArtistsCommand(c.auth.UserID, startIndex, itemsPerPage))
}

// AuthorizeURL is the page a user visits to grant access.
func (c *Client) AuthorizeURL(state string) string { return c.auth.AuthorizeURL(state) }

// Acquire exchanges an authorization code for a user token.
func (c *Client) Acquire(ctx context.Context, clientSecret, code string) (*auth.TokenState, error) {
	return c.auth.Acquire(ctx, clientSecret, code)
}

// Refresh renews the user token if it expired.
func (c *Client) Refresh(ctx context.Context, clientSecret string) (*auth.TokenState, error) {
	return c.auth.Refresh(ctx, clientSecret)
}

// RestoreToken loads a persisted user token, if a store is configured.
func (c *Client) RestoreToken(ctx context.Context) error {
	if err := c.auth.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore user token: %w", err)
	}
	return nil
}

// SignOut forgets the user token.
func (c *Client) SignOut(ctx context.Context) error { return c.auth.SignOut(ctx) }

// IsUserAuthenticated reports whether a user token is held.
func (c *Client) IsUserAuthenticated() bool { return c.auth.IsAuthenticated() }

// IsUserTokenActive reports whether the user token is unexpired.
func (c *Client) IsUserTokenActive() bool { return c.auth.IsActive() }

// UserID returns the signed in user's id, or "".
func (c *Client) UserID() string { return c.auth.UserID() }
