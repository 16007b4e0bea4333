package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/graph"
	pkgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// buildOptions holds flags for the build command.
type buildOptions struct {
	Output     string
	NoValidate bool
	Strict     bool
	Enable     []string
	Disable    []string
	Refresh    bool
	Format     string
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Build the node graph from a description",
		Long: `Build validates a description (unless --no-validate), links every node
to its neighbours, and prints node and link counts.

Diagnostics are warnings unless --strict is set. A neighbour id with no
matching node always fails the build.

With -o, the built graph is written back as a description; the output
format follows the file extension (.json, .yaml, .yml).`,
		Example: `  lanegraph build city.json
  lanegraph build --strict -o city.normalized.yaml city.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Strict = opts.Strict || (!cmd.Flags().Changed("strict") && c.settings().Validate.Strict)
			return c.runBuild(cmd.Context(), cmd.InOrStdin(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "export the built graph to this file")
	cmd.Flags().BoolVar(&opts.NoValidate, "no-validate", false, "skip validation")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on any diagnostic")
	addRuleFlags(cmd, &opts.Enable, &opts.Disable)
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached reports")
	cmd.Flags().StringVar(&opts.Format, "format", string(pkgio.FormatJSON), "stdin format (json or yaml)")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, stdin io.Reader, file string, opts buildOptions) error {
	logger := loggerFromContext(ctx)

	// Check the output format before doing any work.
	if opts.Output != "" {
		if _, err := pkgio.FormatFromPath(opts.Output); err != nil {
			return err
		}
	}

	desc, err := readDescription(file, pkgio.Format(opts.Format), stdin)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(opts.Enable, opts.Disable)
	popts.Strict = opts.Strict
	popts.SkipValidate = opts.NoValidate
	popts.Refresh = opts.Refresh

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, desc, popts)
	if errors.Is(err, errors.ErrCodeInvalidDescription) && result != nil {
		printReport(file, desc, result.Report, result.CacheInfo.ReportHit)
		return err
	}
	if err != nil {
		return err
	}
	prog.done("build complete", "file", file)

	if result.Report != nil && !result.Report.Valid {
		printWarning("%s: %d diagnostic(s)", file, len(result.Report.Diagnostics))
		printDiagnostics(result.Report.Diagnostics)
	}
	printSuccess("Built %s", file)
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.ReportHit)
	printTypeCounts(result.Graph)

	if opts.Output != "" {
		if err := pkgio.ExportFile(graph.Describe(result.Graph), opts.Output); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		printFile(opts.Output)
	} else {
		printNextStep("Browse it", "lanegraph inspect "+file)
	}
	return nil
}

// printTypeCounts prints node counts per type, known types first.
func printTypeCounts(g roadnet.Graph) {
	counts := g.CountByType()
	var extra []roadnet.NodeType
	for t := range counts {
		if !t.Valid() {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	types := append(slices.Clone(roadnet.NodeTypes), extra...)
	for _, t := range types {
		if n := counts[t]; n > 0 {
			printKeyValue(t.String(), fmt.Sprint(n))
		}
	}
}
