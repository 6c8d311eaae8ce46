package cli

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MarkusFox/coco-object-detection/internal/dataset"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <annotations.json> <output-dir>",
		Short: "Materialize a dataset from a COCO annotation export",
		Long: `Materialize a dataset directory from a COCO annotation export.

Copies every image referenced by the annotation file into
<output-dir>/images/ and places a copy of the annotation file alongside.
The output directory must not exist yet.

Example:
  cocoprep create exports/annotations.json datasets/traffic`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runCreate(opts *RootOptions, jsonFile, outputDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	runID := uuid.NewString()
	slog.Info("create dataset", "run_id", runID, "annotations", jsonFile, "output", outputDir)

	report, err := dataset.Materialize(jsonFile, outputDir, dataset.CopyOptions{Workers: opts.Workers})
	if err != nil {
		return handleOpError(formatter, runID, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report, runID)
	}
	fmt.Fprintf(formatter.Writer, "Created %s: %d images (%s)\n",
		report.OutputDir, report.Images, humanize.Bytes(uint64(report.BytesCopied)))
	return nil
}
