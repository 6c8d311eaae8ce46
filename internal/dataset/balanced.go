package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/MarkusFox/coco-object-detection/internal/coco"
)

// BalancedReport summarizes a balanced split run.
type BalancedReport struct {
	TotalImages int          `json:"total_images"`
	Training    SubsetReport `json:"training"`
	Test        SubsetReport `json:"test"`

	// Unannotated counts images with no annotations; they appear in neither
	// subset.
	Unannotated int `json:"unannotated_images"`

	// TestPerCategory maps category id to the number of test images carrying
	// that category. Greedy assignment can leave a category below the cap
	// when too few qualifying images remain after others saturate.
	TestPerCategory map[int64]int `json:"test_per_category"`

	BytesCopied int64  `json:"bytes_copied"`
	OutputDir   string `json:"output_dir"`
}

// SplitBalanced partitions the dataset into training and test subsets with a
// per-category cap on test images. Images are scanned in uniformly shuffled
// order: an annotated image joins the test subset while every one of its
// categories is still below the cap, and counts once toward each of them.
// Annotated images that no longer qualify go to training. Images with no
// annotations are excluded from both subsets.
//
// The configured TestPerClass drives both test selection and the saturation
// check, and a pre-existing output directory is refused just like the other
// operations.
func SplitBalanced(jsonFile, outputDir string, opts BalancedOptions) (*BalancedReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := requireInputFile(jsonFile); err != nil {
		return nil, err
	}
	if err := claimOutputDir(outputDir, SubsetTraining, SubsetTest); err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(jsonFile)
	if err != nil {
		return nil, err
	}
	if err := snap.Complete(); err != nil {
		return nil, &PrepError{Code: ErrCodeBadRecord, Message: "load annotations", Path: jsonFile, Err: err}
	}

	categoriesByImage, err := categoriesByImage(snap.Annotations)
	if err != nil {
		return nil, err
	}

	// Counters start at zero for every category in the snapshot. Category
	// ids seen only in annotations still count via the map's zero value.
	counts := make(map[int64]int, len(snap.Categories))
	for i, cat := range snap.Categories {
		id, err := cat.ID()
		if err != nil {
			return nil, &PrepError{Code: ErrCodeBadRecord, Message: fmt.Sprintf("category %d", i), Err: err}
		}
		counts[id] = 0
	}

	perClass := opts.testPerClass()
	shuffled := shuffleImages(snap.Images, rng(opts.Rand))

	var training, test []coco.Image
	unannotated := 0
	for i, img := range shuffled {
		id, err := img.ID()
		if err != nil {
			return nil, &PrepError{Code: ErrCodeBadRecord, Message: fmt.Sprintf("image %d", i), Err: err}
		}
		cats := categoriesByImage[id]
		if len(cats) == 0 {
			unannotated++
			continue
		}
		if anyAtCap(cats, counts, perClass) {
			training = append(training, img)
			continue
		}
		test = append(test, img)
		for _, c := range cats {
			counts[c]++
		}
	}
	slog.Info("balanced split",
		"total", len(shuffled), "training", len(training), "test", len(test),
		"unannotated", unannotated, "per_class", perClass)

	report := &BalancedReport{
		TotalImages:     len(shuffled),
		Unannotated:     unannotated,
		TestPerCategory: counts,
		OutputDir:       outputDir,
	}
	subsets := map[string][]coco.Image{
		SubsetTraining: training,
		SubsetTest:     test,
	}
	for _, name := range []string{SubsetTraining, SubsetTest} {
		images := subsets[name]
		ids, err := coco.ImageIDSet(images)
		if err != nil {
			return nil, &PrepError{Code: ErrCodeBadRecord, Message: "image record", Err: err}
		}
		filtered, err := filterAnnotations(snap.Annotations, ids)
		if err != nil {
			return nil, err
		}
		if err := writeSubset(filepath.Join(outputDir, name+".json"), images, filtered, snap.Categories); err != nil {
			return nil, err
		}
		sub := SubsetReport{Images: len(images), Annotations: len(filtered)}
		if name == SubsetTraining {
			report.Training = sub
		} else {
			report.Test = sub
		}
	}

	for _, name := range []string{SubsetTraining, SubsetTest} {
		copied, err := copyImages(subsets[name], filepath.Join(outputDir, name), opts.Workers)
		report.BytesCopied += copied
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}

// categoriesByImage maps each image id to the distinct category ids of its
// annotations, preserving first-seen order.
func categoriesByImage(annotations []coco.Annotation) (map[int64][]int64, error) {
	seen := make(map[int64]map[int64]struct{})
	out := make(map[int64][]int64)
	for i, anno := range annotations {
		imgID, err := anno.ImageID()
		if err != nil {
			return nil, &PrepError{Code: ErrCodeBadRecord, Message: fmt.Sprintf("annotation %d", i), Err: err}
		}
		catID, err := anno.CategoryID()
		if err != nil {
			return nil, &PrepError{Code: ErrCodeBadRecord, Message: fmt.Sprintf("annotation %d", i), Err: err}
		}
		if seen[imgID] == nil {
			seen[imgID] = make(map[int64]struct{})
		}
		if _, dup := seen[imgID][catID]; dup {
			continue
		}
		seen[imgID][catID] = struct{}{}
		out[imgID] = append(out[imgID], catID)
	}
	return out, nil
}

// anyAtCap reports whether any of the categories has already reached the
// per-category test cap.
func anyAtCap(cats []int64, counts map[int64]int, perClass int) bool {
	for _, c := range cats {
		if counts[c] >= perClass {
			return true
		}
	}
	return false
}
