package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/docstore/internal/config"
	"github.com/roach88/docstore/internal/engine"
	"github.com/roach88/docstore/internal/store"
)

// DefaultConfigFile is read when --config is not given and the file exists
// in the working directory.
const DefaultConfigFile = "docstore.yaml"

// session is the per-command runtime: loaded config, open store, logger.
type session struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	out    *OutputFormatter
}

// loadConfig reads the config named by --config, falling back to
// DefaultConfigFile and then built-in defaults. --db and --driver override
// the file.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.Config
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "failed to load config", Err: err}
		}
		cfg = loaded
	}

	if opts.DB != "" {
		cfg.Database.Path = opts.DB
	}
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "invalid config", Err: err}
	}
	return cfg, nil
}

// newLogger builds the slog handler from the log config. --verbose forces
// debug level.
func newLogger(l config.Log, verbose bool, w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if l.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), nil
}

// openSession loads config, configures logging on the command's stderr,
// and opens the database. Callers must close the session.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := newOutput(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.Fail(err)
	}

	logger, err := newLogger(cfg.Log, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, out.Fail(&ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "invalid log config", Err: err})
	}

	logger.Debug("opening database", "driver", cfg.Database.Driver, "path", cfg.Database.Path)
	st, err := store.Open(store.Dialect(cfg.Database.Driver), cfg.Database.Path)
	if err != nil {
		return nil, out.Fail(&ExitError{Code: ExitCommandError, ErrCode: ErrCodeOpenDatabase, Message: "failed to open database", Err: err})
	}

	return &session{
		cfg:    cfg,
		store:  st,
		logger: logger,
		out:    out,
	}, nil
}

func newOutput(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// failEarly reports an error raised before a session is open, such as bad
// flags or unreadable input.
func failEarly(opts *RootOptions, cmd *cobra.Command, err error) error {
	return newOutput(opts, cmd).Fail(err)
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// table binds a configured table to the engine with the query settings
// from config.
func (s *session) table(name string) (*engine.Table, error) {
	tc, ok := s.cfg.Table(name)
	if !ok {
		return nil, &ExitError{
			Code:    ExitCommandError,
			ErrCode: ErrCodeUnknownTable,
			Message: fmt.Sprintf("table %q is not declared in config", name),
		}
	}

	q := s.cfg.Query
	opts := []engine.Option{
		engine.WithIndexedFields(tc.IndexedFields...),
		engine.WithParamsLimit(q.ParamsLimit),
		engine.WithChunkSize(q.ChunkSize),
		engine.WithLogger(s.logger),
	}
	if q.UniqueScratchTables {
		opts = append(opts, engine.WithUniqueScratchTables())
	}

	t, err := engine.New(tc.Name, s.store.Provider(), opts...)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "failed to bind table", Err: err}
	}
	return t, nil
}

func (s *session) fail(err error) error {
	return s.out.Fail(err)
}
