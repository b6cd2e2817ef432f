package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/staticres/internal/bundle"
	"github.com/agentic-research/staticres/internal/config"
)

var genCmd = &cobra.Command{
	Use:   "gen [pattern]",
	Short: "Generate Go source embedding the files matched by a pattern",
	Example: `  staticres gen "tests/**" --name Res --package assets -o assets/res.go
  staticres gen "icons/*.svg" --name icons --backend inline -o -
  staticres gen --config staticres.hcl`,
	Args: patternArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := bundles(args)
		if err != nil {
			return err
		}
		if len(bs) == 1 {
			_, err := bundle.Run(bs[0], log, cmd.OutOrStdout())
			return err
		}
		// One broken bundle does not stop the others in a config file.
		failed := 0
		for _, b := range bs {
			if _, err := bundle.Run(b, log, cmd.OutOrStdout()); err != nil {
				log.Errorf("%v", err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d bundles failed", failed, len(bs))
		}
		return nil
	},
}

func init() {
	fs := genCmd.Flags()
	addBundleFlags(fs)
	fs.StringVarP(&flagBundle.Output, "output", "o", "", "Output file, - for stdout (default <name>_staticres.go in --dir)")
	fs.StringVarP(&flagBundle.Package, "package", "p", "", "Package clause of the generated file (default: output directory name)")
	fs.Var(newEnumValue(&flagBundle.Backend, "backend", config.BackendEmbed, config.BackendEmbed, config.BackendInline),
		"backend", "How bytes are embedded (embed, inline)")
	fs.BoolVar(&flagBundle.Strict, "strict", false, "Fail when two sibling names map to the same identifier")
	rootCmd.AddCommand(genCmd)
}
