package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/graph"
	pkgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// validateOptions holds flags for the validate command.
type validateOptions struct {
	JSON    bool
	Enable  []string
	Disable []string
	Refresh bool
	Format  string
}

// validateResult is one entry of `validate --json` output.
type validateResult struct {
	File        string             `json:"file"`
	Valid       bool               `json:"valid"`
	Diagnostics []graph.Diagnostic `json:"diagnostics"`
	Cached      bool               `json:"cached"`
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Report structural problems in description files",
		Long: `Validate checks each description against the enabled rules and prints
one line per diagnostic. Use "-" to read from stdin.

Rules: unique_id, positive_weight, name_length, valid_type, symmetry,
weight_symmetry (off by default), segment_adjacency, slot_count,
type_degree (off by default).

Exits non-zero when any diagnostic is found.`,
		Example: `  lanegraph validate city.json
  lanegraph validate --enable weight_symmetry --json city.json
  cat city.yaml | lanegraph validate --format yaml -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print diagnostics as JSON")
	addRuleFlags(cmd, &opts.Enable, &opts.Disable)
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached reports")
	cmd.Flags().StringVar(&opts.Format, "format", string(pkgio.FormatJSON), "stdin format (json or yaml)")

	return cmd
}

// addRuleFlags registers --enable and --disable with rule name completion.
func addRuleFlags(cmd *cobra.Command, enable, disable *[]string) {
	cmd.Flags().StringSliceVar(enable, "enable", nil, "enable rules by name (comma-separated)")
	cmd.Flags().StringSliceVar(disable, "disable", nil, "disable rules by name (comma-separated)")

	names := make([]string, len(graph.Rules))
	for i, r := range graph.Rules {
		names[i] = r.String()
	}
	complete := func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	}
	_ = cmd.RegisterFlagCompletionFunc("enable", complete)
	_ = cmd.RegisterFlagCompletionFunc("disable", complete)
}

func (c *CLI) runValidate(ctx context.Context, stdin io.Reader, out io.Writer, files []string, opts validateOptions) error {
	logger := loggerFromContext(ctx)

	if stdinCount(files) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, `stdin ("-") can only be given once`)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(opts.Enable, opts.Disable)
	popts.Refresh = opts.Refresh

	var (
		results []validateResult
		total   int
		bad     int
	)
	for _, file := range files {
		prog := newProgress(logger)

		desc, err := readDescription(file, pkgio.Format(opts.Format), stdin)
		if err != nil {
			return err
		}
		report, hit, err := runner.ValidateWithCacheInfo(ctx, desc, popts)
		if err != nil {
			return err
		}
		prog.done("validated", "file", file, "diagnostics", len(report.Diagnostics), "cached", hit)

		total += len(report.Diagnostics)
		if !report.Valid {
			bad++
		}

		if opts.JSON {
			results = append(results, validateResult{
				File:        file,
				Valid:       report.Valid,
				Diagnostics: report.Diagnostics,
				Cached:      hit,
			})
			continue
		}
		printReport(file, desc, report, hit)
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	}

	if total > 0 {
		return errors.New(errors.ErrCodeInvalidDescription,
			"%d diagnostic(s) in %d of %d file(s)", total, bad, len(files))
	}
	return nil
}

// printReport prints the human-readable outcome for one file.
func printReport(file string, desc *graph.Description, report *pipeline.Report, cached bool) {
	if report.Valid {
		printSuccess("%s", file)
	} else {
		printError("%s: %d diagnostic(s)", file, len(report.Diagnostics))
		printDiagnostics(report.Diagnostics)
	}
	printStats(len(desc.Nodes), countLinks(desc), cached)
}

// readDescription loads path, or stdin in the given format when path is "-".
func readDescription(path string, format pkgio.Format, stdin io.Reader) (*graph.Description, error) {
	if path == "-" {
		if format == "" {
			format = pkgio.FormatJSON
		}
		desc, err := pkgio.Read(stdin, format)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return desc, nil
	}
	return pkgio.ImportFile(path)
}

func stdinCount(files []string) int {
	n := 0
	for _, f := range files {
		if f == "-" {
			n++
		}
	}
	return n
}

// countLinks counts present neighbour references in desc.
func countLinks(desc *graph.Description) int {
	n := 0
	for _, node := range desc.Nodes {
		for _, nb := range node.Neighbours {
			if nb.Present() {
				n++
			}
		}
	}
	return n
}
