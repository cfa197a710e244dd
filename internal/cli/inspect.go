package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// inspectHeader names the columns of the inspect table.
var inspectHeader = []string{"ID", "Kind", "Role", "Level", "Column", "X", "Y"}

// inspectCommand creates the inspect command for browsing a computed layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect <process.json>",
		Short: "Show where each node of a process schema is placed",
		Long: `Show where each node of a process schema is placed.

Lists every node with its grid cell, its role in the flow and its computed
coordinates, without writing anything. Runs an interactive browser when
attached to a terminal; use --plain for a static table.`,
		Args: cobra.ExactArgs(1),
	}
	lf := addLayoutFlags(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print a static table")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts := c.pipelineOptions(args[0])
		lf.apply(&opts)
		ctx := cmd.Context()

		data, err := scheme.ReadSource(args[0])
		if err != nil {
			return err
		}
		runner, err := c.newRunner(ctx, lf.noCache)
		if err != nil {
			return err
		}
		defer runner.Close()

		laid, err := runner.Layout(ctx, data, opts)
		if err != nil {
			return err
		}
		doc, err := laid.Document()
		if err != nil {
			return err
		}

		if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
			printCells(doc, laid.Layout)
			return nil
		}
		return runInspect(ctx, args[0], doc, laid.Layout)
	}
	return cmd
}

// runInspect runs the interactive browser until the user quits.
func runInspect(ctx context.Context, title string, doc *scheme.Document, res *layout.Result) error {
	m := NewInspectModel(title, doc, res)
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// inspectRows returns the inspect table with the header as the first row.
// Placed nodes come first in visit order, followed by unreached nodes in
// document order.
func inspectRows(doc *scheme.Document, res *layout.Result) [][]string {
	rows := [][]string{inspectHeader}
	for _, p := range res.Placements {
		rows = append(rows, []string{
			p.ID,
			p.Kind.String(),
			p.Role.String(),
			strconv.Itoa(p.Cell.Level),
			strconv.Itoa(p.Cell.Column),
			fmtCoord(p.Point.X),
			fmtCoord(p.Point.Y),
		})
	}

	unreached := make(map[string]bool, len(res.Unreached))
	for _, id := range res.Unreached {
		unreached[id] = true
	}
	for _, n := range doc.Nodes {
		if !unreached[n.ID] {
			continue
		}
		delete(unreached, n.ID)
		x, y := "-", "-"
		if px, py, ok := n.Position(); ok {
			x, y = fmtCoord(px), fmtCoord(py)
		}
		rows = append(rows, []string{n.ID, n.Kind.String(), layout.RoleUnreached.String(), "-", "-", x, y})
	}
	return rows
}

func fmtCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// targetsOf maps node ids to their outgoing targets for the detail pane.
func targetsOf(doc *scheme.Document) map[string][]string {
	out := make(map[string][]string, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, seen := out[n.ID]; !seen {
			out[n.ID] = n.Targets
		}
	}
	return out
}

// summary is the one-line description shown above the table.
func summary(res *layout.Result) string {
	return fmt.Sprintf("start %s · %d placed · %d unreached · %d warnings",
		res.StartID, len(res.Placements), len(res.Unreached), len(res.Warnings))
}
