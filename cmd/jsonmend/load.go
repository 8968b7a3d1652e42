package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/jsonmend/core/repair"
	"github.com/leofalp/jsonmend/core/structural"
	"github.com/leofalp/jsonmend/internal/textio"
)

// exitRepairFailed is returned when at least one payload could not be repaired.
const exitRepairFailed = 2

func newLoadCmd(a *app) *cobra.Command {
	var (
		trace  bool
		indent bool
		source string
	)

	cmd := &cobra.Command{
		Use:   "load [file|-]",
		Short: "Repair one payload and print it as strict JSON",
		Long:  "Repair one payload read from a file, or stdin when the argument is '-' or omitted,\nand print the resulting strict JSON. --trace prints every attempt to stderr.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := textio.StdinName
			if len(args) == 1 {
				path = args[0]
			}

			raw, err := textio.ReadFile(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if source == "" && path != textio.StdinName {
				source = filepath.Base(path)
			}

			p, err := a.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.close()

			value, session, loadErr := p.loader.LoadPayload(cmd.Context(), repair.NewPayload(raw, source))
			if trace {
				newTracePrinter(cmd.ErrOrStderr()).Print(session)
			}
			if loadErr != nil {
				return &exitError{code: exitRepairFailed, err: loadErr}
			}
			return writeValue(cmd.OutOrStdout(), value, indent)
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "Print the session trail to stderr")
	cmd.Flags().BoolVar(&indent, "indent", false, "Indent the output")
	cmd.Flags().StringVar(&source, "source", "", "Source tag recorded in the session (defaults to the file name)")
	return cmd
}

func writeValue(w io.Writer, value structural.Value, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(value)
}

// batchRecord is one line of `jsonmend batch` output.
type batchRecord struct {
	File    string           `json:"file"`
	OK      bool             `json:"ok"`
	Value   structural.Value `json:"value,omitempty"`
	Error   string           `json:"error,omitempty"`
	Session *repair.Session  `json:"session,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		concurrency int
		out         string
		trace       bool
	)

	cmd := &cobra.Command{
		Use:   "batch <files...>",
		Short: "Repair many payloads concurrently",
		Long:  "Repair every file in its own session and write one JSON record per file (NDJSON),\nin argument order, to stdout or --out.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payloads := make([]repair.RawPayload, 0, len(args))
			for _, path := range args {
				raw, err := textio.ReadFile(path, cmd.InOrStdin())
				if err != nil {
					return err
				}
				payloads = append(payloads, repair.NewPayload(raw, path))
			}

			p, err := a.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer f.Close()
				w = f
			}

			results := p.loader.LoadAll(cmd.Context(), payloads, concurrency)

			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)
			var failed []string
			for _, result := range results {
				record := batchRecord{File: result.Payload.Source, OK: result.Err == nil, Value: result.Value}
				if result.Err != nil {
					record.Error = result.Err.Error()
					failed = append(failed, result.Payload.Source)
				}
				if trace {
					record.Session = result.Session
				}
				if err := enc.Encode(record); err != nil {
					return err
				}
			}

			if len(failed) > 0 {
				err := fmt.Errorf("%d of %d payloads failed: %s", len(failed), len(results), strings.Join(failed, ", "))
				return &exitError{code: exitRepairFailed, err: err}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "Maximum sessions in flight (0 means one per file)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write records to this file instead of stdout")
	cmd.Flags().BoolVar(&trace, "trace", false, "Include the session trail in each record")
	return cmd
}
