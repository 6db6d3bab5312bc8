package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/auth"
	"github.com/desertthunder/mixradio/internal/catalog"
	"github.com/desertthunder/mixradio/internal/formatter"
	"github.com/desertthunder/mixradio/internal/repositories"
	"github.com/desertthunder/mixradio/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The catalog client and database are opened on first use so commands that need neither
// (setup config, --help) work without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *catalog.Client
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *catalog.Client
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "mixradio",
		Usage:    "Browse the MixRadio catalog from the terminal",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   r.before,
		After:    r.after,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, suggestCommand, artistCommand, chartsCommand,
		newReleasesCommand, genresCommand, mixesCommand, productCommand, historyCommand,
		overviewCommand, exportCommand, browseCommand, availableCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the configuration and applies the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config == nil {
		config, err := r.loadConfig()
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

func (r *Runner) loadConfig() (*shared.Config, error) {
	var config *shared.Config
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return nil, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		config = shared.DefaultConfig()
	}
	config.ApplyEnv(".env")
	return config, nil
}

func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	if err := r.db.Close(); err != nil {
		r.logger.Warn("failed to close database", "error", err)
	}
	r.db = nil
	return nil
}

// database opens the configured sqlite file and brings its schema up to date.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.db = db
	return db, nil
}

// tokenStore returns the configured [auth.TokenStore], or nil when tokens are not persisted.
func (r *Runner) tokenStore() (auth.TokenStore, error) {
	profile := r.config.Token.Profile
	switch r.config.Token.Store {
	case shared.TokenStoreSQLite:
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		return repositories.NewTokenRepository(db, profile), nil
	case shared.TokenStoreKeyring:
		return repositories.OpenKeyringTokenStore(profile)
	default:
		return nil, nil
	}
}

// catalog builds the client on first use and restores any persisted user token.
func (r *Runner) catalog(ctx context.Context) (*catalog.Client, error) {
	if r.client != nil {
		return r.client, nil
	}
	if !r.config.HasCredentials() {
		return nil, fmt.Errorf("%w: set client_id in %s or %s", shared.ErrMissingCredentials, r.configPath, shared.EnvClientID)
	}

	cc := r.config.Client
	opts := []catalog.Option{catalog.WithHTTPClient(r.httpClient), catalog.WithLogger(r.logger)}

	store, err := r.tokenStore()
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, catalog.WithTokenStore(store))
	}

	client, err := catalog.New(catalog.Config{
		ClientID:         cc.ClientID,
		ClientSecret:     cc.ClientSecret,
		CountryCode:      cc.CountryCode,
		InferCountryCode: cc.CountryCode == "",
		Language:         cc.Language,
		APIBaseURL:       cc.APIBaseURL,
		SecureAPIBaseURL: cc.SecureAPIBaseURL,
		RedirectURL:      cc.RedirectURI,
		Scopes:           cc.Scopes,
		Timeout:          cc.Timeout(),
		IdentityHeader:   cc.IdentityHeader,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	if store != nil {
		if err := client.RestoreToken(ctx); err != nil {
			r.logger.Warn("ignoring stored token", "error", err)
		}
	}

	r.client = client
	return client, nil
}

// requireUser fails unless a user token is held.
func (r *Runner) requireUser(ctx context.Context) (*catalog.Client, error) {
	client, err := r.catalog(ctx)
	if err != nil {
		return nil, err
	}
	if !client.IsUserAuthenticated() {
		return nil, fmt.Errorf("%w: run 'mixradio auth login' first", shared.ErrNotAuthenticated)
	}
	return client, nil
}

// emit writes data as JSON when --json or --jq is set, and calls plain otherwise.
func (r *Runner) emit(cmd *cli.Command, data any, plain func()) error {
	if expr := cmd.String("jq"); expr != "" {
		filtered, err := formatter.Filter(data, expr)
		if err != nil {
			return err
		}
		return r.writeJSON(filtered, true)
	}
	if cmd.Bool("yaml") {
		out, err := formatter.ToYAML(data)
		if err != nil {
			return err
		}
		_, err = r.output.Write(out)
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}
	plain()
	return nil
}

// items unwraps a list call, turning a service failure into an error.
func items[E any](resp *api.ListResponse[E], err error) (*api.ListResponse[E], error) {
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp, nil
}

// writePaging prints the "Showing a-b of n" footer when the service sent paging.
func writePaging[E any](r *Runner, resp *api.ListResponse[E]) {
	if !resp.HasPaging() || len(resp.Items) == 0 {
		return
	}
	start := *resp.StartIndex
	r.writePlain("\nShowing %d-%d of %d\n", start+1, start+len(resp.Items), *resp.TotalResults)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
