package dataset

import (
	"log/slog"
	"path/filepath"
)

// Report summarizes a materialize run.
type Report struct {
	Images      int    `json:"images"`
	BytesCopied int64  `json:"bytes_copied"`
	OutputDir   string `json:"output_dir"`
}

// Materialize copies every image referenced by the annotation file into
// outputDir/images/ and places a copy of the annotation file alongside.
//
// The output directory must not exist yet; a collision returns
// ErrCodeOutputExists without touching anything. A missing source image
// aborts the run mid-way, leaving the directories and partial copies on
// disk.
func Materialize(jsonFile, outputDir string, opts CopyOptions) (*Report, error) {
	if err := requireInputFile(jsonFile); err != nil {
		return nil, err
	}
	if err := claimOutputDir(outputDir, "images"); err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(jsonFile)
	if err != nil {
		return nil, err
	}
	slog.Info("materializing dataset", "images", len(snap.Images), "output", outputDir)

	copied, err := copyImages(snap.Images, filepath.Join(outputDir, "images"), opts.Workers)
	if err != nil {
		return nil, err
	}

	n, err := copyFile(jsonFile, filepath.Join(outputDir, filepath.Base(jsonFile)))
	if err != nil {
		return nil, &PrepError{Code: ErrCodeWriteFailed, Message: "copy annotation file", Path: jsonFile, Err: err}
	}

	return &Report{
		Images:      len(snap.Images),
		BytesCopied: copied + n,
		OutputDir:   outputDir,
	}, nil
}
