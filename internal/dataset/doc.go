// Package dataset implements the three preparation operations over COCO
// annotation exports:
//
//   - Materialize: copy every referenced image plus the annotation file into
//     a fresh dataset directory.
//   - Split: random proportional partition into training/validation/test,
//     with optional collapse of all categories into a single supercategory.
//   - SplitBalanced: greedy per-category capped test subset; remaining
//     annotated images go to training, unannotated images to neither.
//
// Each operation is a self-contained batch job. The only shared resource is
// the filesystem: an operation refuses to run if its output directory
// already exists, and a failure mid-copy leaves partial output behind with
// no rollback. Randomness is injectable for reproducible splits.
package dataset
