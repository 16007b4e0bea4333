package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/graph"
	pkgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// inspectCommand creates the interactive node browser command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Browse a built graph node by node",
		Long: `Inspect builds a description and opens a terminal browser listing every
node with its links, slots and diagnostics. With --plain, nodes are printed
one per line instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, diags, err := c.loadGraph(cmd.Context(), cmd.InOrStdin(), args[0], pkgio.Format(format))
			if err != nil {
				return err
			}
			if plain {
				printPlain(cmd.OutOrStdout(), g, diags)
				return nil
			}

			model := NewInspectModel(filepath.Base(args[0]), g, diags)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print nodes without the interactive browser")
	cmd.Flags().StringVar(&format, "format", string(pkgio.FormatJSON), "stdin format (json or yaml)")

	return cmd
}

// loadGraph reads and builds file leniently, returning any diagnostics.
func (c *CLI) loadGraph(ctx context.Context, stdin io.Reader, file string, format pkgio.Format) (roadnet.Graph, []graph.Diagnostic, error) {
	desc, err := readDescription(file, format, stdin)
	if err != nil {
		return nil, nil, err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer runner.Close()

	opts := c.pipelineOptions(nil, nil)
	opts.Strict = false
	result, err := runner.Execute(ctx, desc, opts)
	if err != nil {
		return nil, nil, err
	}
	var diags []graph.Diagnostic
	if result.Report != nil {
		diags = result.Report.Diagnostics
	}
	return result.Graph, diags, nil
}

// printPlain writes one line per node followed by its diagnostics.
func printPlain(w io.Writer, g roadnet.Graph, diags []graph.Diagnostic) {
	byNode := make(map[int][]string)
	for _, d := range diags {
		byNode[d.NodeID] = append(byNode[d.NodeID], d.Message)
	}
	for _, n := range g {
		fmt.Fprintln(w, n)
		for _, msg := range byNode[n.ID] {
			fmt.Fprintln(w, "  ! "+msg)
		}
	}
}
