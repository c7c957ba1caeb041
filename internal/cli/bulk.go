package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/docstore/internal/ir"
)

// BulkResult is the JSON payload of the bulk command.
type BulkResult struct {
	Files    int `json:"files"`
	Upserted int `json:"upserted"`
	Deleted  int `json:"deleted"`
}

// NewBulkCommand creates the bulk command.
func NewBulkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <table> <file>...",
		Short: "Upsert and delete records in one batch",
		Long: `Upsert and delete records from one or more files in a single atomic batch.

Each file holds a JSON array of objects, a single object, or one object per
line. Records with a truthy _deleted field are removed; all others are
upserted. Files are parsed concurrently; records keep file order.

Example:
  docstore bulk users batch1.json batch2.ndjson`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(rootOpts, args[0], args[1:], cmd)
		},
	}
}

func runBulk(opts *RootOptions, table string, files []string, cmd *cobra.Command) error {
	records, err := readRecordFiles(cmd, files)
	if err != nil {
		return failEarly(opts, cmd, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "failed to read records", Err: err})
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.table(table)
	if err != nil {
		return s.fail(err)
	}

	result := BulkResult{Files: len(files)}
	for _, r := range records {
		if r.Deleted() {
			result.Deleted++
		} else {
			result.Upserted++
		}
	}

	s.logger.Info("bulk write", "table", table, "upserts", result.Upserted, "deletes", result.Deleted)
	if err := t.BulkUpsertAndDelete(cmd.Context(), records); err != nil {
		return s.fail(operationError("bulk failed", err))
	}

	if opts.Format == "json" {
		return s.out.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d upserted, %d deleted\n", result.Upserted, result.Deleted)
	return nil
}

// readRecordFiles parses files concurrently and concatenates their records
// in argument order.
func readRecordFiles(cmd *cobra.Command, files []string) ([]ir.Resource, error) {
	parsed := make([][]ir.Resource, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			records, err := decodeRecords(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			parsed[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []ir.Resource
	for _, records := range parsed {
		all = append(all, records...)
	}
	return all, nil
}
