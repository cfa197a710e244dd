package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/scheme"
	"github.com/matzehuels/flowlayout/pkg/watch"
)

// repositionMode selects what reposition does with a finished layout.
type repositionMode struct {
	output   string
	toStdout bool
	dryRun   bool
	watch    bool
}

// repositionCommand creates the reposition command, the main entry point.
func (c *CLI) repositionCommand() *cobra.Command {
	var (
		mode   repositionMode
		suffix string
	)

	cmd := &cobra.Command{
		Use:     "reposition <process.json>",
		Aliases: []string{"layout"},
		Short:   "Compute node coordinates for a process schema",
		Long: `Compute node coordinates for a process schema.

The document is read, every node reachable from the start node is placed on
a grid, and x/y are written onto those nodes. All other content is kept as
is. The result goes to <name>.repositioned.json next to the input unless
--output or --stdout is given. Nothing is written when the document has no
start node or is malformed.

With --watch the layout is redone every time the input changes.`,
		Args: cobra.ExactArgs(1),
	}
	lf := addLayoutFlags(cmd)
	cmd.Flags().StringVarP(&mode.output, "output", "o", "", "output file (default: <input>"+scheme.DefaultSuffix+".json)")
	cmd.Flags().StringVar(&suffix, "suffix", "", "suffix inserted before the extension (default from config)")
	cmd.Flags().BoolVar(&mode.toStdout, "stdout", false, "write the document to standard output")
	cmd.Flags().BoolVar(&mode.dryRun, "dry-run", false, "print the computed cells without writing")
	cmd.Flags().BoolVarP(&mode.watch, "watch", "w", false, "re-run whenever the input changes")
	cmd.MarkFlagsMutuallyExclusive("output", "stdout", "dry-run")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		input := args[0]
		opts := c.pipelineOptions(input)
		lf.apply(&opts)
		if mode.output == "" {
			if suffix == "" {
				suffix = c.cfg.Output.Suffix
			}
			mode.output = scheme.OutputPath(input, suffix)
		}
		return c.runReposition(cmd.Context(), input, opts, mode, lf.noCache)
	}
	return cmd
}

// runReposition lays out input once, or continuously in watch mode.
func (c *CLI) runReposition(ctx context.Context, input string, opts pipeline.Options, mode repositionMode, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	once := func(ctx context.Context, data []byte) error {
		res, err := runner.Execute(ctx, data, opts)
		if err != nil {
			return err
		}
		return c.emit(res, mode)
	}

	if !mode.watch {
		data, err := scheme.ReadSource(input)
		if err != nil {
			return err
		}
		return once(ctx, data)
	}

	printInfo("Watching %s (Ctrl+C to stop)", input)
	return watch.File(ctx, input, once, watch.Options{Logger: loggerFromContext(ctx)})
}

// emit delivers a finished layout the way mode asks.
func (c *CLI) emit(res *pipeline.Result, mode repositionMode) error {

	switch {
	case mode.toStdout:
		_, err := os.Stdout.Write(res.Output)
		return err
	case mode.dryRun:
		doc, err := res.Document()
		if err != nil {
			return err
		}
		printCells(doc, res.Layout)
		return nil
	}

	if err := scheme.WriteBytes(mode.output, res.Output); err != nil {
		return err
	}
	printSuccess("Layout complete")
	printFile(mode.output)
	printStats(res.Stats.NodeCount, res.Stats.Placed, res.Stats.Warnings, res.CacheInfo.LayoutHit)
	if unreached := len(res.Layout.Unreached); unreached > 0 {
		printDetail("%d node(s) not reachable from %s were left in place", unreached, res.Layout.StartID)
	}
	return nil
}

// printCells prints the placement table for a dry run.
func printCells(doc *scheme.Document, res *layout.Result) {
	printInfo("Start node %s, %d placed, %d unreached", res.StartID, len(res.Placements), len(res.Unreached))
	printNewline()
	printTable(inspectRows(doc, res))
}
