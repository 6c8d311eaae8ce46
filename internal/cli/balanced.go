package cli

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MarkusFox/coco-object-detection/internal/dataset"
)

// BalancedCmdOptions holds flags for the split-balanced command.
type BalancedCmdOptions struct {
	*RootOptions
	PerClass int
	Config   string
}

// NewSplitBalancedCommand creates the split-balanced command.
func NewSplitBalancedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BalancedCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "split-balanced <annotations.json> <output-dir>",
		Short: "Partition a dataset with a per-category cap on test images",
		Long: `Partition a COCO dataset into training and test subsets, capping the
number of test images each category contributes.

Images are scanned in uniform random order; an annotated image joins the
test subset while every one of its categories is still below the cap.
Remaining annotated images go to training. Images without annotations are
excluded from both subsets.

Example:
  cocoprep split-balanced exports/annotations.json datasets/eval --per-class 7`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplitBalanced(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.PerClass, "per-class", dataset.DefaultTestPerClass, "test images per category")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML presets file (flags override its values)")

	return cmd
}

func runSplitBalanced(opts *BalancedCmdOptions, jsonFile, outputDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	runID := uuid.NewString()

	perClass := opts.PerClass
	workers := opts.Workers
	if opts.Config != "" {
		presets, err := LoadPresets(opts.Config)
		if err != nil {
			_ = formatter.Error("BAD_OPTIONS", err.Error(), runID)
			return NewExitError(ExitCommandError, err.Error())
		}
		if presets.PerClass > 0 && !cmd.Flags().Changed("per-class") {
			perClass = presets.PerClass
		}
		if presets.Workers > 0 && !cmd.Flags().Changed("workers") {
			workers = presets.Workers
		}
	}

	slog.Info("balanced split", "run_id", runID, "annotations", jsonFile,
		"output", outputDir, "per_class", perClass)

	report, err := dataset.SplitBalanced(jsonFile, outputDir, dataset.BalancedOptions{
		TestPerClass: perClass,
		Rand:         opts.rand(),
		Workers:      workers,
	})
	if err != nil {
		return handleOpError(formatter, runID, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report, runID)
	}
	fmt.Fprintf(formatter.Writer, "%d images found!\n", report.TotalImages)
	fmt.Fprintf(formatter.Writer, "%d Training, %d Test - Images, %d without annotations (%s copied)\n",
		report.Training.Images, report.Test.Images, report.Unannotated,
		humanize.Bytes(uint64(report.BytesCopied)))
	return nil
}
