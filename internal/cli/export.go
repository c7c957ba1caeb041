package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// Export encodings.
const (
	EncodingNDJSON  = "ndjson"
	EncodingMsgpack = "msgpack"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out      string
	Encoding string
	Zstd     bool
}

// ExportResult is the JSON payload of the export command.
type ExportResult struct {
	Table    string `json:"table"`
	Records  int    `json:"records"`
	Out      string `json:"out"`
	Encoding string `json:"encoding"`
	Zstd     bool   `json:"zstd"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Export every record of a table",
		Long: `Export every record of a table as newline-delimited canonical JSON or as
a stream of MessagePack maps, optionally zstd-compressed.

Examples:
  docstore export users --out users.ndjson
  docstore export users --out users.msgpack.zst --encoding msgpack --zstd`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "output file (required)")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", EncodingNDJSON, "record encoding (ndjson|msgpack)")
	cmd.Flags().BoolVar(&opts.Zstd, "zstd", false, "compress output with zstd")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(opts *ExportOptions, table string, cmd *cobra.Command) error {
	if opts.Encoding != EncodingNDJSON && opts.Encoding != EncodingMsgpack {
		return failEarly(opts.RootOptions, cmd, NewExitError(ExitCommandError, fmt.Sprintf("invalid encoding %q: must be %s or %s", opts.Encoding, EncodingNDJSON, EncodingMsgpack)))
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
	rows, err := t.List(cmd.Context(), queryir.Pagination{})
	if err != nil {
		return s.fail(operationError("export failed", err))
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return s.fail(&ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "failed to create output file", Err: err})
	}
	defer f.Close()

	if err := writeExport(f, rows, opts.Encoding, opts.Zstd); err != nil {
		return s.fail(WrapExitError(ExitFailure, "failed to write export", err))
	}
	if err := f.Close(); err != nil {
		return s.fail(WrapExitError(ExitFailure, "failed to write export", err))
	}

	s.logger.Info("export complete", "table", table, "records", len(rows), "out", opts.Out)
	if opts.Format == "json" {
		return s.out.Success(ExportResult{
			Table:    table,
			Records:  len(rows),
			Out:      opts.Out,
			Encoding: opts.Encoding,
			Zstd:     opts.Zstd,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", len(rows), opts.Out)
	return nil
}

// writeExport encodes rows to w, through a zstd encoder when compress is
// set.
func writeExport(w io.Writer, rows []ir.Resource, encoding string, compress bool) error {
	bw := bufio.NewWriter(w)
	var out io.Writer = bw

	var zw *zstd.Encoder
	if compress {
		var err error
		zw, err = zstd.NewWriter(bw)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		out = zw
	}

	var err error
	switch encoding {
	case EncodingMsgpack:
		err = writeMsgpack(out, rows)
	default:
		err = writeNDJSON(out, rows)
	}
	if err != nil {
		if zw != nil {
			zw.Close()
		}
		return err
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
	}
	return bw.Flush()
}

func writeNDJSON(w io.Writer, rows []ir.Resource) error {
	for _, r := range rows {
		line, err := ir.MarshalCanonical(r)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func writeMsgpack(w io.Writer, rows []ir.Resource) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	for _, r := range rows {
		if err := enc.Encode(msgpackValue(map[string]any(r))); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	return nil
}

// msgpackValue converts decoded JSON numbers to native integers or floats
// so they encode as MessagePack numbers rather than strings.
func msgpackValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return string(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = msgpackValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = msgpackValue(elem)
		}
		return out
	default:
		return v
	}
}
