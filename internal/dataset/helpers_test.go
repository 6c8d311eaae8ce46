package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkusFox/coco-object-detection/internal/coco"
)

// fixtureImage describes one image in a test dataset: its id and the
// category ids it is annotated with (one annotation per category, empty for
// an unannotated image).
type fixtureImage struct {
	id   int64
	cats []int64
}

// writeFixture materializes dummy image files under dir and an annotation
// export referencing them. Stored paths carry the redundant leading
// separator the tool strips, so the images resolve via absolute paths.
func writeFixture(t *testing.T, dir string, images []fixtureImage) string {
	t.Helper()

	snap := &coco.Snapshot{
		Images:      []coco.Image{},
		Annotations: []coco.Annotation{},
		Categories:  []coco.Category{},
	}
	seenCats := map[int64]bool{}
	annoID := int64(1)
	for _, fi := range images {
		name := fmt.Sprintf("img_%03d.png", fi.id)
		full := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(full, []byte("pixels-"+name), 0644))
		snap.Images = append(snap.Images, coco.Image{
			"id":        jsonInt(fi.id),
			"file_name": name,
			"path":      "/" + full,
		})
		for _, c := range fi.cats {
			snap.Annotations = append(snap.Annotations, coco.Annotation{
				"id":          jsonInt(annoID),
				"image_id":    jsonInt(fi.id),
				"category_id": jsonInt(c),
			})
			annoID++
			if !seenCats[c] {
				seenCats[c] = true
				snap.Categories = append(snap.Categories, coco.Category{
					"id":   jsonInt(c),
					"name": fmt.Sprintf("class-%d", c),
				})
			}
		}
	}

	jsonPath := filepath.Join(dir, "annotations.json")
	require.NoError(t, snap.Save(jsonPath))
	return jsonPath
}

func jsonInt(v int64) json.Number {
	return json.Number(strconv.FormatInt(v, 10))
}

// loadSubset reads a per-split annotation file written by an operation.
func loadSubset(t *testing.T, path string) *coco.Snapshot {
	t.Helper()
	snap, err := coco.Load(path)
	require.NoError(t, err)
	return snap
}

// subsetIDs collects the image ids from a subset snapshot.
func subsetIDs(t *testing.T, snap *coco.Snapshot) map[int64]bool {
	t.Helper()
	ids := make(map[int64]bool, len(snap.Images))
	for _, img := range snap.Images {
		id, err := img.ID()
		require.NoError(t, err)
		require.False(t, ids[id], "image id %d appears twice in one subset", id)
		ids[id] = true
	}
	return ids
}

// requireAnnotationsMatchImages checks the per-subset referential invariant:
// every annotation references an image present in the same subset.
func requireAnnotationsMatchImages(t *testing.T, snap *coco.Snapshot) {
	t.Helper()
	ids := subsetIDs(t, snap)
	for _, anno := range snap.Annotations {
		imgID, err := anno.ImageID()
		require.NoError(t, err)
		require.True(t, ids[imgID], "annotation references image %d outside its subset", imgID)
	}
}
