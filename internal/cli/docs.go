package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/docs"
)

// Defaults for the docs command.
const (
	defaultDocsRoot   = "src"
	defaultDocsOutput = "build/corezoid-documentation-for-ai.txt"
)

// docsCommand creates the docs command that merges Markdown files into one.
func (c *CLI) docsCommand() *cobra.Command {
	var (
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "docs [dir]",
		Short: "Merge a tree of Markdown files into one document",
		Long: `Merge a tree of Markdown files into one document.

Every .md file under dir (default "src") is appended in path order under a
heading derived from its name, after a header with the generation time and
file count.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := defaultDocsRoot
			if len(args) == 1 {
				root = args[0]
			}
			prog := newProgress(c.Logger)
			n, err := docs.WriteFile(root, output, docs.Options{Title: title, Logger: c.Logger})
			if err != nil {
				return err
			}
			prog.done("Collected documentation")
			printSuccess("Merged %d file(s)", n)
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", defaultDocsOutput, "output file")
	cmd.Flags().StringVar(&title, "title", docs.DefaultTitle, "document title")
	return cmd
}
