package main

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// accountStatus is one row of the auth status listing. Tokens themselves
// never leave the store.
type accountStatus struct {
	Account   string `json:"account"`
	Expires   string `json:"expires"`
	Refreshed string `json:"refreshed"`
	Expired   bool   `json:"expired"`
	Default   bool   `json:"default"`
}

// AuthLogin runs the browser authorization flow and caches the token under
// the Spotify account it belongs to.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	config := r.loadConfig(cmd.String("config"))

	store, err := r.tokenStore(config)
	if err != nil {
		return err
	}

	auth := services.NewAuthenticator(config, store, r.logger)
	_, account, err := auth.Login(ctx, r.output)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Signed in as %s, token cached\n\n", account)
	r.writePlain("You can now use: spx list\n")
	return nil
}

// AuthStatus lists the cached accounts with token expiry. The account marked
// default is the one commands use when --account is not given.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	config := r.loadConfig(cmd.String("config"))

	store, err := r.tokenStore(config)
	if err != nil {
		return err
	}

	tokens, err := store.List(map[string]any{})
	if err != nil {
		return err
	}

	if len(tokens) == 0 {
		if useJSON {
			return r.writeJSON([]accountStatus{}, pretty)
		}
		return r.writePlain("No cached accounts. Run 'spx auth login' first.\n")
	}

	defaultAccount := ""
	if latest, err := store.Latest(); err == nil {
		defaultAccount = latest.Account
	}

	now := time.Now()
	rows := make([]accountStatus, len(tokens))
	for i, token := range tokens {
		rows[i] = accountStatus{
			Account:   token.Account,
			Expires:   shared.UTCTimestamp(token.Expiry),
			Refreshed: shared.UTCTimestamp(token.Updated),
			Expired:   now.After(token.Expiry),
			Default:   token.Account == defaultAccount,
		}
	}

	if useJSON {
		return r.writeJSON(rows, pretty)
	}

	r.writePlain("Found %d cached accounts:\n\n", len(tokens))
	for i, row := range rows {
		marker := ""
		if row.Default {
			marker = " (default)"
		}
		r.writePlain("%d. %s%s\n", i+1, row.Account, marker)
		if row.Expired {
			r.writePlain("   Access token: expired, will refresh on next use\n")
		} else {
			r.writePlain("   Access token: valid until %s\n", row.Expires)
		}
		r.writePlain("   Last refreshed: %s\n", row.Refreshed)
	}

	return nil
}

// AuthLogout removes the cached token for one account. The next command for
// that account will need the browser again.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	account := cmd.String("account")
	config := r.loadConfig(cmd.String("config"))

	store, err := r.tokenStore(config)
	if err != nil {
		return err
	}

	token, err := store.GetByAccount(account)
	if err != nil {
		return err
	}

	if err := store.Delete(token.RowID); err != nil {
		return err
	}

	r.logger.Info("token removed", "account", account)
	return r.writePlain("✓ Removed cached token for %s\n", account)
}
