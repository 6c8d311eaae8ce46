// Package coco models the subset of the COCO annotation schema this tool
// touches: the top-level images, annotations and categories arrays linked by
// integer ids.
//
// Records are map-backed rather than struct-backed on purpose. The dataset
// operations only ever read a handful of fields (ids, file names, paths) and
// must pass everything else through to the output files untouched, including
// fields this tool has never heard of. Decoding with json.Number keeps the
// numeric representation intact across a load/save round trip.
package coco
