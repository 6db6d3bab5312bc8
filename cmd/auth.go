package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/mixradio/internal/server"
	"github.com/desertthunder/mixradio/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the authorization code flow for the user token.
//
// Starts a local callback server, opens the browser on the authorize page, and exchanges the returned code.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	secret := r.config.Client.ClientSecret
	if secret == "" {
		return fmt.Errorf("%w: client.client_secret (or %s) is required to sign in", shared.ErrMissingCredentials, shared.EnvClientSecret)
	}
	if r.config.Token.Store == shared.TokenStoreNone {
		r.logger.Warn("token store is none, the token will not outlive this command")
	}

	callbackPath := "/callback"
	if u, err := url.Parse(r.config.Client.RedirectURI); err == nil && u.Path != "" {
		callbackPath = u.Path
	}

	state := shared.GenerateID()
	authURL := client.AuthorizeURL(state)
	handler := server.NewCallbackHandler(callbackPath, state, func(ctx context.Context, code string) error {
		_, err := client.Acquire(ctx, secret, code)
		return err
	})

	noBrowser := cmd.Bool("no-browser")
	srv := server.NewCallbackServer(handler,
		server.WithServerLogger(r.logger),
		server.OnReady(func(addr string) {
			if !noBrowser {
				r.writePlain("→ Opening browser for authorization...\n")
				if err := shared.OpenBrowser(authURL); err == nil {
					return
				}
				r.writePlainln("⚠ Could not open browser automatically.")
			}
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}),
	)

	timeout := cmd.Duration("timeout")
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := srv.Await(waitCtx, r.config.Server.Addr()); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	r.logger.Info("user signed in", "user_id", client.UserID())
	r.writePlainln("✓ Authorization successful")
	r.writePlain("Signed in as %s\n", client.UserID())
	return nil
}

type authStatus struct {
	Authenticated bool       `json:"authenticated"`
	Active        bool       `json:"active"`
	UserID        string     `json:"user_id,omitempty"`
	Territory     string     `json:"territory,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Store         string     `json:"store"`
}

// AuthStatus reports whether a user token is stored and still active.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	status := authStatus{
		Authenticated: client.IsUserAuthenticated(),
		Active:        client.IsUserTokenActive(),
		Store:         r.config.Token.Store,
	}
	if tok := client.Auth().Token(); tok != nil {
		status.UserID = tok.UserID
		status.Territory = tok.Territory
		status.ExpiresAt = &tok.ExpiresAt
	}

	return r.emit(cmd, status, func() {
		if !status.Authenticated {
			r.writePlain("✗ Not signed in\n")
			r.writePlain("Run 'mixradio auth login' to sign in\n")
			return
		}
		r.writePlain("✓ Signed in as %s\n", status.UserID)
		if status.Territory != "" {
			r.writePlain("Territory: %s\n", status.Territory)
		}
		if status.Active {
			r.writePlain("Token: active until %s\n", status.ExpiresAt.Local().Format(time.RFC1123))
		} else {
			r.writePlain("Token: expired, it will be refreshed on the next request\n")
		}
		r.writePlain("Store: %s\n", status.Store)
	})
}

// AuthLogout clears the user token and its stored copy.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	if err := client.SignOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	r.logger.Info("user signed out")
	return r.writePlain("✓ Signed out\n")
}
