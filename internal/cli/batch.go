package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// batchResult is the outcome for one input of a batch.
type batchResult struct {
	input  string
	output string
	result *pipeline.Result
	err    error
}

// batchCommand creates the batch command for laying out many documents.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		jobs   int
		suffix string
	)

	cmd := &cobra.Command{
		Use:   "batch <process.json>...",
		Short: "Lay out many process schemas in parallel",
		Long: `Lay out many process schemas in parallel.

Each document is handled on its own: a document that fails leaves no output
and does not stop the others. The command fails if any document failed.`,
		Args: cobra.MinimumNArgs(1),
	}
	lf := addLayoutFlags(cmd)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "documents processed at once")
	cmd.Flags().StringVar(&suffix, "suffix", "", "suffix inserted before the extension (default from config)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if suffix == "" {
			suffix = c.cfg.Output.Suffix
		}
		ctx := cmd.Context()
		runner, err := c.newRunner(ctx, lf.noCache)
		if err != nil {
			return err
		}
		defer runner.Close()

		results := c.runBatch(ctx, runner, args, suffix, jobs, lf)
		return reportBatch(results)
	}
	return cmd
}

// runBatch lays out every input with at most jobs running at once. The
// results are in input order.
func (c *CLI) runBatch(ctx context.Context, runner *pipeline.Runner, inputs []string, suffix string, jobs int, lf *layoutFlags) []batchResult {
	prog := newProgress(loggerFromContext(ctx))
	results := make([]batchResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, input := range inputs {
		out := scheme.OutputPath(input, suffix)
		opts := c.pipelineOptions(input)
		lf.apply(&opts)
		g.Go(func() error {
			res, err := runner.RepositionFile(ctx, input, out, opts)
			results[i] = batchResult{input: input, output: out, result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	prog.done(fmt.Sprintf("Processed %d document(s)", len(inputs)))
	return results
}

// reportBatch prints one line per input and fails if any input failed.
func reportBatch(results []batchResult) error {
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			printError("%s: %s (%s)", r.input, errors.UserMessage(r.err), errorCode(r.err))
			continue
		}
		printSuccess("%s", r.input)
		printFile(r.output)
		st := r.result.Stats
		printStats(st.NodeCount, st.Placed, st.Warnings, r.result.CacheInfo.LayoutHit)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

// errorCode names the error's code, or INTERNAL_ERROR for uncoded errors.
func errorCode(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}
