package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/staticres/internal/bundle"
	"github.com/agentic-research/staticres/internal/inspect"
)

var (
	treeJSON  bool
	treeQuery string
)

var treeCmd = &cobra.Command{
	Use:   "tree [pattern]",
	Short: "Show the namespace tree a pattern would generate",
	Args:  patternArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := bundles(args)
		if err != nil {
			return err
		}
		for _, b := range bs {
			ns, _, err := bundle.NewScanner(b, log).Scan(b)
			if err != nil {
				return fmt.Errorf("bundle %q: %w", b.Name, err)
			}
			m := inspect.Manifest(ns, b.Pattern)
			if !treeJSON && treeQuery == "" {
				fmt.Fprintln(cmd.OutOrStdout(), inspect.Tree(m))
				continue
			}
			out, err := inspect.JSON(m, treeQuery)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

func init() {
	fs := treeCmd.Flags()
	addBundleFlags(fs)
	fs.BoolVar(&treeJSON, "json", false, "Print the tree as JSON")
	fs.StringVarP(&treeQuery, "query", "q", "", "JSONPath filter applied to the JSON tree (implies --json)")
	rootCmd.AddCommand(treeCmd)
}
