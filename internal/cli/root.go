package cli

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Seed    int64  // 0 = time-seeded
	Workers int    // max concurrent image copies
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cocoprep CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cocoprep",
		Short: "COCO dataset preparation toolkit",
		Long: `Prepare object-detection datasets from COCO annotation exports:
materialize annotated images into a dataset directory, or partition a
dataset into training/validation/test subsets (proportional or
class-balanced).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().Int64Var(&opts.Seed, "seed", 0, "random seed for reproducible splits (0 = time-seeded)")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", runtime.NumCPU(), "max concurrent image copies")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewSplitBalancedCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging sets the default slog handler. Logs go to stderr so JSON
// output on stdout stays parseable.
func configureLogging(verbose bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// rand returns the randomness source implied by --seed, or nil for the
// operations' time-seeded default.
func (o *RootOptions) rand() *rand.Rand {
	if o.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(o.Seed))
}

// newFormatter builds the command's output formatter from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}
}
