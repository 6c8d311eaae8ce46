package cli

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MarkusFox/coco-object-detection/internal/dataset"
)

// SplitCmdOptions holds flags for the split command.
type SplitCmdOptions struct {
	*RootOptions
	Split         []float64
	Supercategory string
	Config        string
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SplitCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "split <annotations.json> <output-dir>",
		Short: "Partition a dataset into training/validation/test by fractions",
		Long: `Partition a COCO dataset into training, validation and test subsets.

Images are assigned by a uniform random permutation sliced by the given
fractions; the test subset absorbs any rounding remainder. Each subset gets
its own annotation file and image directory under <output-dir>.

With --supercategory, every category collapses into a single synthetic
category of that name and all annotations are rewritten to it.

Example:
  cocoprep split exports/annotations.json datasets/run1 --split 0.8,0.1,0.1
  cocoprep split exports/annotations.json datasets/run2 --supercategory object --seed 42`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Float64SliceVar(&opts.Split, "split", []float64{0.7, 0.15, 0.15}, "train,validation,test fractions (must sum to 1)")
	cmd.Flags().StringVar(&opts.Supercategory, "supercategory", "", "collapse all categories into one with this name")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML presets file (flags override its values)")

	return cmd
}

func runSplit(opts *SplitCmdOptions, jsonFile, outputDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	runID := uuid.NewString()

	fractions := opts.Split
	supercategory := opts.Supercategory
	workers := opts.Workers
	if opts.Config != "" {
		presets, err := LoadPresets(opts.Config)
		if err != nil {
			_ = formatter.Error("BAD_OPTIONS", err.Error(), runID)
			return NewExitError(ExitCommandError, err.Error())
		}
		if presets.Split != nil && !cmd.Flags().Changed("split") {
			fractions = presets.Split
		}
		if presets.Supercategory != "" && !cmd.Flags().Changed("supercategory") {
			supercategory = presets.Supercategory
		}
		if presets.Workers > 0 && !cmd.Flags().Changed("workers") {
			workers = presets.Workers
		}
	}
	if len(fractions) != 3 {
		msg := fmt.Sprintf("--split needs exactly 3 fractions, got %d", len(fractions))
		_ = formatter.Error("BAD_SPLIT", msg, runID)
		return NewExitError(ExitCommandError, msg)
	}

	slog.Info("split dataset", "run_id", runID, "annotations", jsonFile,
		"output", outputDir, "fractions", fractions, "supercategory", supercategory)

	report, err := dataset.Split(jsonFile, outputDir, dataset.SplitOptions{
		Fractions:     [3]float64{fractions[0], fractions[1], fractions[2]},
		Supercategory: supercategory,
		Rand:          opts.rand(),
		Workers:       workers,
	})
	if err != nil {
		return handleOpError(formatter, runID, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report, runID)
	}
	fmt.Fprintf(formatter.Writer, "%d images found!\n", report.TotalImages)
	fmt.Fprintf(formatter.Writer, "%d Training, %d Validation, %d Test - Images (%s copied)\n",
		report.Training.Images, report.Validation.Images, report.Test.Images,
		humanize.Bytes(uint64(report.BytesCopied)))
	return nil
}
