package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	session    services.Session
	store      *repositories.TokenRepository
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Session services.Session
	Store   *repositories.TokenRepository
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		session: opts.Session,
		store:   opts.Store,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger replaces the runner's logger, used to redirect logs to a file
// while a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the token store database if this runner opened one.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		listCommand, exportCommand, importCommand, authCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective configuration for a command. A config
// injected through RunnerOpts wins; otherwise the file at path is loaded when
// present, defaults fill in, and environment credentials overlay the result.
func (r *Runner) loadConfig(path string) *shared.Config {
	if r.config != nil {
		return r.config
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if loaded, err := shared.LoadConfig(path); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	config.ApplyEnv()

	r.config = config
	r.configPath = path
	return config
}

// tokenStore lazily opens the SQLite token store, running migrations so a
// fresh database works without an explicit setup run. The handle stays on the
// runner and is released by Close.
func (r *Runner) tokenStore(config *shared.Config) (*repositories.TokenRepository, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}

	r.db = db
	r.store = repositories.NewTokenRepository(db)
	return r.store, nil
}

// spotifySession rebuilds an authorized session from the token cache. The
// returned account is the provider ID the session is acting as.
func (r *Runner) spotifySession(ctx context.Context, configPath, account string) (services.Session, string, error) {
	if r.session != nil {
		resolved, err := r.session.CurrentAccount(ctx)
		if err != nil {
			return nil, "", err
		}
		return r.session, resolved, nil
	}

	config := r.loadConfig(configPath)
	store, err := r.tokenStore(config)
	if err != nil {
		return nil, "", err
	}

	auth := services.NewAuthenticator(config, store, r.logger)
	session, resolved, err := auth.CachedSession(ctx, account)
	if err != nil {
		if errors.Is(err, shared.ErrTokenNotFound) {
			return nil, "", fmt.Errorf("%w: run 'spx auth login' first", shared.ErrNotAuthenticated)
		}
		return nil, "", err
	}
	return session, resolved, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
