package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentic-research/staticres/internal/config"
	"github.com/agentic-research/staticres/internal/logging"
)

var (
	logLevel  string
	logFormat string
	verbose   bool

	configPath string
	flagBundle config.Bundle

	log = logging.NewNop()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level=debug")
}

var rootCmd = &cobra.Command{
	Use:   "staticres",
	Short: "staticres: embed files matched by a glob as nested Go declarations",
	Long: `staticres walks the files matched by a glob pattern, mirrors their directory
hierarchy as nested struct fields and generates Go source that embeds every
file's bytes at build time. It is meant to run from go:generate:

  //go:generate staticres gen "tests/**" --name Res`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if verbose {
			level = "debug"
		}
		l, err := logging.New(logging.Config{Level: level, Format: logFormat, Output: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

// addBundleFlags binds the flags that describe a single bundle.
func addBundleFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&configPath, "config", "c", "", "Bundle configuration file (.hcl, .yaml); replaces the pattern argument")
	fs.StringVarP(&flagBundle.Name, "name", "n", "", "Name of the generated root declaration")
	fs.StringVarP(&flagBundle.Dir, "dir", "C", ".", "Directory the pattern is matched against")
	fs.Var(newEnumValue(&flagBundle.Visibility, "visibility", "", config.VisibilityExported, config.VisibilityUnexported),
		"visibility", "Root visibility (exported, unexported); defaults to the case of --name")
}

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	target  *string
	kind    string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(target *string, kind, def string, allowed ...string) *enumValue {
	*target = def
	return &enumValue{target: target, kind: kind, allowed: allowed}
}

func (e *enumValue) String() string { return *e.target }

func (e *enumValue) Set(s string) error {
	if !slices.Contains(e.allowed, s) {
		return fmt.Errorf("%w: must be one of %s", config.ErrMalformedInvocation, strings.Join(e.allowed, ", "))
	}
	*e.target = s
	return nil
}

func (e *enumValue) Type() string { return e.kind }

// bundles resolves the command line into the bundles to run: every bundle of
// --config, or the single bundle described by the pattern argument and
// flags.
func bundles(args []string) ([]config.Bundle, error) {
	if configPath != "" {
		f, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return f.Bundles, nil
	}
	b := flagBundle
	b.Pattern = args[0]
	b.ApplyDefaults()
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return []config.Bundle{b}, nil
}

// patternArgs requires exactly one pattern, or none with --config.
func patternArgs(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		if len(args) != 0 {
			return fmt.Errorf("%w: --config and a pattern argument are mutually exclusive", config.ErrMalformedInvocation)
		}
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: exactly one pattern is expected, got %d", config.ErrMalformedInvocation, len(args))
	}
	return nil
}

// Main runs the root command and returns the process exit code.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// Execute runs the root command and exits.
func Execute() {
	os.Exit(Main())
}
