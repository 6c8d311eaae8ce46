package dataset

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// balancedFixture builds a dataset with perClass*2 images for each of the
// given categories plus extra unannotated images.
func balancedFixture(t *testing.T, categories []int64, perCategory, unannotated int) (jsonFile, outputDir string) {
	t.Helper()
	tmpDir := t.TempDir()
	var images []fixtureImage
	id := int64(1)
	for _, c := range categories {
		for i := 0; i < perCategory; i++ {
			images = append(images, fixtureImage{id: id, cats: []int64{c}})
			id++
		}
	}
	for i := 0; i < unannotated; i++ {
		images = append(images, fixtureImage{id: id})
		id++
	}
	return writeFixture(t, tmpDir, images), filepath.Join(tmpDir, "out")
}

func TestSplitBalancedFillsEveryCategory(t *testing.T) {
	jsonFile, outputDir := balancedFixture(t, []int64{1, 2}, 20, 3)

	report, err := SplitBalanced(jsonFile, outputDir, BalancedOptions{
		Rand: rand.New(rand.NewSource(11)),
	})
	require.NoError(t, err)

	// Single-category images cannot starve each other, so both categories
	// reach the default cap exactly.
	assert.Equal(t, 7, report.TestPerCategory[1])
	assert.Equal(t, 7, report.TestPerCategory[2])
	assert.Equal(t, 14, report.Test.Images)
	assert.Equal(t, 26, report.Training.Images)
	assert.Equal(t, 3, report.Unannotated)

	testSnap := loadSubset(t, filepath.Join(outputDir, "test.json"))
	assert.Len(t, testSnap.Annotations, 14)
	requireAnnotationsMatchImages(t, testSnap)

	trainSnap := loadSubset(t, filepath.Join(outputDir, "training.json"))
	requireAnnotationsMatchImages(t, trainSnap)
}

func TestSplitBalancedIsAPartitionOfAnnotatedImages(t *testing.T) {
	jsonFile, outputDir := balancedFixture(t, []int64{1, 2, 3}, 10, 4)

	report, err := SplitBalanced(jsonFile, outputDir, BalancedOptions{
		TestPerClass: 2,
		Rand:         rand.New(rand.NewSource(4)),
	})
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, name := range []string{"training", "test"} {
		snap := loadSubset(t, filepath.Join(outputDir, name+".json"))
		for id := range subsetIDs(t, snap) {
			seen[id]++
		}
	}

	// 30 annotated images split across the two subsets exactly once each;
	// the 4 unannotated images appear in neither.
	require.Len(t, seen, 30)
	for id, count := range seen {
		assert.Equal(t, 1, count, "image %d assigned %d times", id, count)
	}
	assert.Equal(t, 4, report.Unannotated)
}

func TestSplitBalancedHonorsConfiguredCap(t *testing.T) {
	// A non-default cap must drive both test selection and the saturation
	// check, not just one of them.
	jsonFile, outputDir := balancedFixture(t, []int64{1}, 12, 0)

	report, err := SplitBalanced(jsonFile, outputDir, BalancedOptions{
		TestPerClass: 3,
		Rand:         rand.New(rand.NewSource(2)),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.TestPerCategory[1])
	assert.Equal(t, 3, report.Test.Images)
	assert.Equal(t, 9, report.Training.Images)
}

func TestSplitBalancedMultiCategoryImageCountsOnceEach(t *testing.T) {
	tmpDir := t.TempDir()
	jsonFile := writeFixture(t, tmpDir, []fixtureImage{
		{id: 1, cats: []int64{1, 2}},
		{id: 2, cats: []int64{1}},
		{id: 3, cats: []int64{2}},
	})
	outputDir := filepath.Join(tmpDir, "out")

	report, err := SplitBalanced(jsonFile, outputDir, BalancedOptions{
		TestPerClass: 5,
		Rand:         rand.New(rand.NewSource(8)),
	})
	require.NoError(t, err)

	// All three images qualify; the multi-category image increments both
	// counters once.
	assert.Equal(t, 3, report.Test.Images)
	assert.Equal(t, 2, report.TestPerCategory[1])
	assert.Equal(t, 2, report.TestPerCategory[2])
}

func TestSplitBalancedSkipsSaturatedToTraining(t *testing.T) {
	jsonFile, outputDir := balancedFixture(t, []int64{1}, 5, 0)

	report, err := SplitBalanced(jsonFile, outputDir, BalancedOptions{
		TestPerClass: 1,
		Rand:         rand.New(rand.NewSource(6)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Test.Images)
	assert.Equal(t, 4, report.Training.Images)
}

func TestSplitBalancedUnannotatedExcludedFromOutputs(t *testing.T) {
	jsonFile, outputDir := balancedFixture(t, []int64{1}, 3, 2)

	_, err := SplitBalanced(jsonFile, outputDir, BalancedOptions{
		TestPerClass: 2,
		Rand:         rand.New(rand.NewSource(9)),
	})
	require.NoError(t, err)

	copied := 0
	for _, name := range []string{"training", "test"} {
		entries, err := os.ReadDir(filepath.Join(outputDir, name))
		require.NoError(t, err)
		copied += len(entries)
	}
	// Only the 3 annotated images were copied anywhere.
	assert.Equal(t, 3, copied)
}

func TestSplitBalancedRefusesExistingOutput(t *testing.T) {
	// All three operations share the same collision policy: a pre-existing
	// output directory is refused, never reused.
	jsonFile, outputDir := balancedFixture(t, []int64{1}, 3, 0)
	require.NoError(t, os.MkdirAll(outputDir, 0o755))

	_, err := SplitBalanced(jsonFile, outputDir, BalancedOptions{})
	require.Error(t, err)
	assert.True(t, IsOutputExists(err))
}

func TestCategoriesByImage(t *testing.T) {
	tmpDir := t.TempDir()
	jsonFile := writeFixture(t, tmpDir, []fixtureImage{
		{id: 1, cats: []int64{1, 2, 1}},
		{id: 2, cats: []int64{2}},
	})

	snap, err := loadSnapshot(jsonFile)
	require.NoError(t, err)

	byImage, err := categoriesByImage(snap.Annotations)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, byImage[1], "duplicate categories collapse to one entry")
	assert.Equal(t, []int64{2}, byImage[2])
}
