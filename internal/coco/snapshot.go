package coco

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is one COCO annotation export: the unit of input and output for
// every dataset operation. It carries the three arrays this tool reads and
// writes; info, licenses and panoptic segment_info are out of scope.
type Snapshot struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// Load reads an annotation export wholesale. Numbers decode as json.Number
// so ids and any pass-through numeric fields keep their representation.
//
// An export without an images array is rejected here because no operation
// can do anything without it. Missing annotations or categories arrays are
// tolerated at load time; operations that need them call Complete.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap.Images == nil {
		return nil, fmt.Errorf("decode %s: missing \"images\" array", path)
	}
	return &snap, nil
}

// Complete reports whether the snapshot carries all three arrays. The
// splitters require it since their outputs always include all three.
func (s *Snapshot) Complete() error {
	if s.Images == nil {
		return fmt.Errorf("missing \"images\" array")
	}
	if s.Annotations == nil {
		return fmt.Errorf("missing \"annotations\" array")
	}
	if s.Categories == nil {
		return fmt.Errorf("missing \"categories\" array")
	}
	return nil
}

// Save writes the snapshot as a single-line JSON document, mirroring the
// shape of the input exports. Nil slices are written as empty arrays so
// consumers always see all three keys.
func (s *Snapshot) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	out := *s
	if out.Images == nil {
		out.Images = []Image{}
	}
	if out.Annotations == nil {
		out.Annotations = []Annotation{}
	}
	if out.Categories == nil {
		out.Categories = []Category{}
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ImageIDSet collects the ids of the given images. Every dataset operation
// filters annotations by membership in such a set.
func ImageIDSet(images []Image) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{}, len(images))
	for i, img := range images {
		id, err := img.ID()
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}
