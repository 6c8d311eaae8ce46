package dataset

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/MarkusFox/coco-object-detection/internal/coco"
)

// copyFile copies a single file and returns the number of bytes written.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// copyImages copies every image's source file into destDir, naming each copy
// after the record's file_name. Workers bounds the number of in-flight
// copies; 1 or less copies sequentially. The first failure cancels every
// copy not yet started; in-flight copies finish, and whatever was already
// written stays on disk.
func copyImages(images []coco.Image, destDir string, workers int) (int64, error) {
	if workers < 1 {
		workers = 1
	}
	var copied atomic.Int64

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for _, img := range images {
		img := img
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := img.SourcePath()
			if err != nil {
				return &PrepError{Code: ErrCodeBadRecord, Message: "image record", Err: err}
			}
			name, err := img.FileName()
			if err != nil {
				return &PrepError{Code: ErrCodeBadRecord, Message: "image record", Err: err}
			}
			n, err := copyFile(src, filepath.Join(destDir, name))
			if err != nil {
				return &PrepError{Code: ErrCodeCopyFailed, Message: "copy image", Path: src, Err: err}
			}
			copied.Add(n)
			return nil
		})
	}
	err := g.Wait()
	return copied.Load(), err
}

// requireInputFile checks that path names an existing regular file. A stat
// failure that is not "does not exist" (permissions, a file in the middle of
// the path) is reported as such rather than as a missing file.
func requireInputFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &PrepError{Code: ErrCodeInputMissing, Message: "annotation file not found", Path: path, Err: err}
	case err != nil:
		return &PrepError{Code: ErrCodeInputMissing, Message: "stat annotation file", Path: path, Err: err}
	case info.IsDir():
		return &PrepError{Code: ErrCodeInputMissing, Message: "annotation path is a directory", Path: path}
	}
	return nil
}

// claimOutputDir creates dir and the given subdirectories. It refuses to
// touch a directory that already exists; every operation shares this
// collision policy.
func claimOutputDir(dir string, subdirs ...string) error {
	if _, err := os.Stat(dir); err == nil {
		return &PrepError{Code: ErrCodeOutputExists, Message: "output directory already exists", Path: dir}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &PrepError{Code: ErrCodeWriteFailed, Message: "stat output directory", Path: dir, Err: err}
	}
	for _, sub := range append([]string{""}, subdirs...) {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return &PrepError{Code: ErrCodeWriteFailed, Message: "create output directory", Path: filepath.Join(dir, sub), Err: err}
		}
	}
	return nil
}

// loadSnapshot wraps coco.Load failures as malformed-record errors.
func loadSnapshot(path string) (*coco.Snapshot, error) {
	snap, err := coco.Load(path)
	if err != nil {
		return nil, &PrepError{Code: ErrCodeBadRecord, Message: "load annotations", Path: path, Err: err}
	}
	return snap, nil
}

// writeSubset writes one per-split annotation file.
func writeSubset(path string, images []coco.Image, annotations []coco.Annotation, categories []coco.Category) error {
	snap := &coco.Snapshot{Images: images, Annotations: annotations, Categories: categories}
	if err := snap.Save(path); err != nil {
		return &PrepError{Code: ErrCodeWriteFailed, Message: "write subset annotations", Path: path, Err: err}
	}
	return nil
}
