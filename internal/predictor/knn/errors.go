package knn

import (
	"fmt"

	"github.com/go-sod/knn/internal/geom"
)

var (
	// ErrDimensionMismatch is returned when points of different dimension meet.
	ErrDimensionMismatch = geom.ErrDimNotEqual
	ErrInvalidK          = fmt.Errorf("k must be positive and not exceed the reference set size")
	ErrInvalidMethod     = fmt.Errorf("invalid aggregation method")
	ErrNoUniqueMode      = fmt.Errorf("no unique mode")
	ErrLabelsMismatch    = fmt.Errorf("reference points and labels differ in length")
	ErrIndexOutOfRange   = fmt.Errorf("neighbor index out of range")
	ErrInvalidLabel      = fmt.Errorf("label is not a finite number")
	ErrInvalidModePolicy = fmt.Errorf("invalid mode policy")
	// ErrNonFinite is returned for points with a NaN or infinite coordinate.
	ErrNonFinite = geom.ErrNonFinite
)
