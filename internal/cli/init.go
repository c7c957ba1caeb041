package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Driver string   `json:"driver"`
	Path   string   `json:"path"`
	Tables []string `json:"tables"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configured tables",
		Long: `Create every table declared in the config, with one column and one
index per indexed field. Existing tables are left as they are.

Example:
  docstore init --config docstore.yaml
  docstore init --config docstore.cue --db /tmp/docs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(s.cfg.Tables) == 0 {
		return s.fail(&ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "no tables declared in config"})
	}

	result := InitResult{
		Driver: s.cfg.Database.Driver,
		Path:   s.cfg.Database.Path,
		Tables: make([]string, 0, len(s.cfg.Tables)),
	}
	for _, tc := range s.cfg.Tables {
		if err := s.store.EnsureTable(cmd.Context(), tc.Name, tc.IndexedFields); err != nil {
			return s.fail(&ExitError{Code: ExitFailure, ErrCode: ErrCodeEngine, Message: fmt.Sprintf("failed to create table %s", tc.Name), Err: err})
		}
		s.logger.Info("table ready", "table", tc.Name, "indexed_fields", tc.IndexedFields)
		result.Tables = append(result.Tables, tc.Name)
	}

	if opts.Format == "json" {
		return s.out.Success(result)
	}
	for _, name := range result.Tables {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", name)
	}
	return nil
}
