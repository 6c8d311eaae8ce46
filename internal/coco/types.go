package coco

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Image is a COCO image record. Beyond the accessed fields (id, file_name,
// path) the record is opaque and round-trips unchanged.
type Image map[string]any

// Annotation is a COCO annotation record. Only image_id and category_id are
// interpreted; everything else passes through.
type Annotation map[string]any

// Category is a COCO category record.
type Category map[string]any

// ID returns the image's integer id.
func (img Image) ID() (int64, error) {
	return intField(img, "id")
}

// FileName returns the image's file_name, the base name used for copies.
func (img Image) FileName() (string, error) {
	return stringField(img, "file_name")
}

// SourcePath returns the on-disk location of the image file. The stored path
// begins with a redundant leading separator (or drive marker) that must be
// stripped before use; SourcePath drops that first character.
func (img Image) SourcePath() (string, error) {
	p, err := stringField(img, "path")
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", fmt.Errorf("field %q: empty path", "path")
	}
	return p[1:], nil
}

// ImageID returns the id of the image this annotation belongs to.
func (a Annotation) ImageID() (int64, error) {
	return intField(a, "image_id")
}

// CategoryID returns the id of the category this annotation is labeled with.
func (a Annotation) CategoryID() (int64, error) {
	return intField(a, "category_id")
}

// WithCategoryID returns a copy of the annotation with category_id replaced.
// The receiver is left untouched so shared snapshots never observe a
// partially rewritten annotation list.
func (a Annotation) WithCategoryID(id int64) Annotation {
	out := make(Annotation, len(a))
	for k, v := range a {
		out[k] = v
	}
	out["category_id"] = json.Number(strconv.FormatInt(id, 10))
	return out
}

// ID returns the category's integer id.
func (c Category) ID() (int64, error) {
	return intField(c, "id")
}

// Name returns the category's name.
func (c Category) Name() (string, error) {
	return stringField(c, "name")
}

func intField(m map[string]any, key string) (int64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing %q field", key)
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return i, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		// Records constructed in code rather than decoded from JSON.
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing %q field", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: unexpected type %T", key, v)
	}
	return s, nil
}
