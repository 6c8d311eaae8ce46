package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/MarkusFox/coco-object-detection/internal/coco"
)

// Subset names double as directory and JSON file names.
const (
	SubsetTraining   = "training"
	SubsetValidation = "validation"
	SubsetTest       = "test"
)

// SubsetReport summarizes one output subset.
type SubsetReport struct {
	Images      int `json:"images"`
	Annotations int `json:"annotations"`
}

// SplitReport summarizes a proportional split run.
type SplitReport struct {
	TotalImages int          `json:"total_images"`
	Training    SubsetReport `json:"training"`
	Validation  SubsetReport `json:"validation"`
	Test        SubsetReport `json:"test"`
	BytesCopied int64        `json:"bytes_copied"`
	OutputDir   string       `json:"output_dir"`
}

// Split partitions the dataset into training, validation and test subsets by
// the configured fractions. Each subset gets a JSON file next to a directory
// of its image copies:
//
//	outputDir/{training,validation,test}.json
//	outputDir/{training,validation,test}/<file_name>
//
// Subset sizes are floor(N*train) and floor(N*val); test absorbs the
// rounding remainder. The permutation is uniform; inject opts.Rand for a
// reproducible partition.
func Split(jsonFile, outputDir string, opts SplitOptions) (*SplitReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := requireInputFile(jsonFile); err != nil {
		return nil, err
	}
	if err := claimOutputDir(outputDir, SubsetTraining, SubsetValidation, SubsetTest); err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(jsonFile)
	if err != nil {
		return nil, err
	}
	if err := snap.Complete(); err != nil {
		return nil, &PrepError{Code: ErrCodeBadRecord, Message: "load annotations", Path: jsonFile, Err: err}
	}

	shuffled := shuffleImages(snap.Images, rng(opts.Rand))
	numTrain, numVal, numTest := subsetSizes(len(shuffled), opts.Fractions)
	slog.Info("splitting dataset",
		"total", len(shuffled), "training", numTrain, "validation", numVal, "test", numTest)

	subsets := map[string][]coco.Image{
		SubsetTraining:   shuffled[:numTrain],
		SubsetValidation: shuffled[numTrain : numTrain+numVal],
		SubsetTest:       shuffled[numTrain+numVal:],
	}

	annotations, categories := snap.Annotations, snap.Categories
	if opts.Supercategory != "" {
		annotations, categories = collapseCategories(annotations, opts.Supercategory)
	}

	report := &SplitReport{TotalImages: len(shuffled), OutputDir: outputDir}
	for _, name := range []string{SubsetTraining, SubsetValidation, SubsetTest} {
		images := subsets[name]
		ids, err := coco.ImageIDSet(images)
		if err != nil {
			return nil, &PrepError{Code: ErrCodeBadRecord, Message: "image record", Err: err}
		}
		filtered, err := filterAnnotations(annotations, ids)
		if err != nil {
			return nil, err
		}
		if err := writeSubset(filepath.Join(outputDir, name+".json"), images, filtered, categories); err != nil {
			return nil, err
		}
		sub := SubsetReport{Images: len(images), Annotations: len(filtered)}
		switch name {
		case SubsetTraining:
			report.Training = sub
		case SubsetValidation:
			report.Validation = sub
		case SubsetTest:
			report.Test = sub
		}
	}

	for _, name := range []string{SubsetTraining, SubsetValidation, SubsetTest} {
		copied, err := copyImages(subsets[name], filepath.Join(outputDir, name), opts.Workers)
		report.BytesCopied += copied
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}

// subsetSizes computes the three block sizes. Training and validation floor;
// test takes whatever remains, so the three always sum to n.
func subsetSizes(n int, fractions [3]float64) (numTrain, numVal, numTest int) {
	numTrain = int(float64(n) * fractions[0])
	numVal = int(float64(n) * fractions[1])
	numTest = n - numTrain - numVal
	return numTrain, numVal, numTest
}

// shuffleImages returns a uniform permutation of images. The input slice is
// left in its original order.
func shuffleImages(images []coco.Image, r *rand.Rand) []coco.Image {
	out := make([]coco.Image, len(images))
	copy(out, images)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// filterAnnotations keeps the annotations whose image_id is in ids.
// Annotations referencing images outside the set are dropped silently, which
// also filters out orphans.
func filterAnnotations(annotations []coco.Annotation, ids map[int64]struct{}) ([]coco.Annotation, error) {
	out := make([]coco.Annotation, 0, len(annotations))
	for i, anno := range annotations {
		imgID, err := anno.ImageID()
		if err != nil {
			return nil, &PrepError{Code: ErrCodeBadRecord, Message: fmt.Sprintf("annotation %d", i), Err: err}
		}
		if _, ok := ids[imgID]; ok {
			out = append(out, anno)
		}
	}
	return out, nil
}

// collapseCategories rewrites every annotation onto a single synthetic
// category and returns the one-element category list to ship with every
// subset. Both returned slices are fresh; the input annotations are never
// mutated.
func collapseCategories(annotations []coco.Annotation, label string) ([]coco.Annotation, []coco.Category) {
	rewritten := make([]coco.Annotation, len(annotations))
	for i, anno := range annotations {
		rewritten[i] = anno.WithCategoryID(1)
	}
	categories := []coco.Category{{
		"id":            json.Number("1"),
		"name":          label,
		"supercategory": "",
		"color":         "#df3ccd",
		"metadata":      map[string]any{},
	}}
	return rewritten, categories
}
