package dataset

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultFractions is the conventional 70/15/15 train/validation/test split.
var DefaultFractions = [3]float64{0.7, 0.15, 0.15}

// DefaultTestPerClass is the balanced splitter's per-category test cap.
const DefaultTestPerClass = 7

// CopyOptions controls the image copy phase shared by all operations.
type CopyOptions struct {
	// Workers bounds the number of in-flight copies. Values below 1 mean
	// sequential copying.
	Workers int
}

// SplitOptions configures the proportional splitter.
type SplitOptions struct {
	// Fractions are the train, validation and test shares, in that order.
	Fractions [3]float64

	// Supercategory, when non-empty, collapses all categories into a single
	// synthetic category with this name and rewrites every annotation to it.
	Supercategory string

	// Rand is the randomness source for the image permutation. Nil means
	// time-seeded; inject a fixed source for reproducible splits.
	Rand *rand.Rand

	// Workers bounds concurrent image copies.
	Workers int
}

// Validate checks the split fractions. The sum must equal 1.0 under exact
// float comparison with left-to-right addition; there is no tolerance.
func (o *SplitOptions) Validate() error {
	for i, f := range o.Fractions {
		if f < 0 {
			return &PrepError{
				Code:    ErrCodeBadSplit,
				Message: fmt.Sprintf("fraction %d is negative (%v)", i, f),
			}
		}
	}
	if o.Fractions[0]+o.Fractions[1]+o.Fractions[2] != 1.0 {
		return &PrepError{
			Code:    ErrCodeBadSplit,
			Message: fmt.Sprintf("fractions %v must sum to 1", o.Fractions),
		}
	}
	return nil
}

// BalancedOptions configures the class-balanced splitter.
type BalancedOptions struct {
	// TestPerClass caps how many test images each category contributes.
	// Zero means DefaultTestPerClass. The same cap drives both test
	// selection and the saturation check.
	TestPerClass int

	// Rand is the randomness source for the image permutation. Nil means
	// time-seeded.
	Rand *rand.Rand

	// Workers bounds concurrent image copies.
	Workers int
}

// Validate checks the per-category cap. Zero is the means-default sentinel
// resolved by testPerClass, so only negative values are rejected.
func (o *BalancedOptions) Validate() error {
	if o.TestPerClass < 0 {
		return &PrepError{
			Code:    ErrCodeBadOptions,
			Message: fmt.Sprintf("test images per class must be non-negative (got %d)", o.TestPerClass),
		}
	}
	return nil
}

func (o *BalancedOptions) testPerClass() int {
	if o.TestPerClass == 0 {
		return DefaultTestPerClass
	}
	return o.TestPerClass
}

// rng returns the injected source or a time-seeded one.
func rng(r *rand.Rand) *rand.Rand {
	if r != nil {
		return r
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
