package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// PageOptions holds pagination flags.
type PageOptions struct {
	Limit  int
	Offset int
}

func (p *PageOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum number of records (0 = no limit)")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "number of records to skip")
}

func (p *PageOptions) page() queryir.Pagination {
	return queryir.Pagination{Limit: p.Limit, Offset: p.Offset}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Fetch one record by id",
		Long: `Fetch one record by id. Exits 1 when no record has the id.

The id is matched as text against the stored id, so 42 finds a record
whose id is the number 42 or the string "42".

Example:
  docstore get users u1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.table(args[0])
			if err != nil {
				return s.fail(err)
			}
			r, err := t.Get(cmd.Context(), args[1])
			if err != nil {
				return s.fail(operationError("get failed", err))
			}
			return s.out.Records([]ir.Resource{r})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	page := &PageOptions{}

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List records",
		Long: `List records in storage order.

Example:
  docstore list users --limit 10 --offset 20`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.table(args[0])
			if err != nil {
				return s.fail(err)
			}
			rows, err := t.List(cmd.Context(), page.page())
			if err != nil {
				return s.fail(operationError("list failed", err))
			}
			return s.out.Records(rows)
		},
	}

	page.register(cmd)
	return cmd
}

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	FilterFlags
	PageOptions
	Sort []string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Query records by filter",
		Long: `Query records by filter.

Indexed fields are filtered in SQL; other fields are matched against each
returned record. Array values match any element, and arrays longer than the
configured params_limit are staged through scratch tables.

Examples:
  docstore query users --where city=NYC --sort age:desc
  docstore query users --where 'age=[30,31,32]' --like name=al
  docstore query users --filter-json '{"city":"NYC","active":true}' --limit 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	opts.FilterFlags.register(cmd)
	opts.PageOptions.register(cmd)
	cmd.Flags().StringSliceVar(&opts.Sort, "sort", nil, "sort key[:desc]; repeatable")

	return cmd
}

func runQuery(opts *QueryOptions, table string, cmd *cobra.Command) error {
	filter, err := opts.Build()
	if err != nil {
		return failEarly(opts.RootOptions, cmd, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "invalid filter", Err: err})
	}
	sort, err := parseSort(opts.Sort)
	if err != nil {
		return failEarly(opts.RootOptions, cmd, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "invalid sort", Err: err})
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.table(table)
	if err != nil {
		return s.fail(err)
	}

	s.out.VerboseLog("query %s: %d filter keys, sort %v", table, filter.Len(), sort)
	rows, err := t.Query(cmd.Context(), filter, opts.page(), sort)
	if err != nil {
		return s.fail(operationError("query failed", err))
	}
	return s.out.Records(rows)
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	return newWriteCommand(rootOpts, "put", "Insert or replace a record", `Insert or replace one record read as a JSON object from a file or stdin.

Example:
  docstore put users user.json
  echo '{"id":"u1","city":"NYC"}' | docstore put users`)
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return newWriteCommand(rootOpts, "update", "Replace an existing record", `Replace the stored record with the same id. The record is written
wholesale; updating a missing id changes nothing and is not an error.

Example:
  docstore update users user.json`)
}

func newWriteCommand(rootOpts *RootOptions, use, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <table> [file|-]",
		Short:         short,
		Long:          long,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readResource(cmd, args[1:])
			if err != nil {
				return failEarly(rootOpts, cmd, err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.table(args[0])
			if err != nil {
				return s.fail(err)
			}

			write := t.Save
			if use == "update" {
				write = t.Update
			}
			saved, err := write(cmd.Context(), r)
			if err != nil {
				return s.fail(operationError(use+" failed", err))
			}
			return s.out.Records([]ir.Resource{saved})
		},
	}
}

// RemoveOptions holds flags for the rm command.
type RemoveOptions struct {
	*RootOptions
	FilterFlags
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rm <table> [id]",
		Short: "Remove records by id or filter",
		Long: `Remove one record by id, or every record matching a filter.

Filters may use indexed fields only, and an empty filter is rejected.

Examples:
  docstore rm users u1
  docstore rm users --where city=LA`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, args, cmd)
		},
	}

	opts.FilterFlags.register(cmd)
	return cmd
}

func runRemove(opts *RemoveOptions, args []string, cmd *cobra.Command) error {
	filter, err := opts.Build()
	if err != nil {
		return failEarly(opts.RootOptions, cmd, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "invalid filter", Err: err})
	}
	byID := len(args) == 2
	if byID == !filter.Empty() {
		return failEarly(opts.RootOptions, cmd, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "give either an id or a filter"})
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.table(args[0])
	if err != nil {
		return s.fail(err)
	}

	if byID {
		err = t.Remove(cmd.Context(), args[1])
	} else {
		err = t.RemoveByFilter(cmd.Context(), filter)
	}
	if err != nil {
		return s.fail(operationError("remove failed", err))
	}

	if opts.Format == "json" {
		return s.out.Success(map[string]any{"removed": true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "removed")
	return nil
}
