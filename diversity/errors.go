package diversity

import "errors"

var (
	// ErrUnknownMetric is returned when a metric name is neither supported
	// nor the precomputed sentinel.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrEmptyTable is returned when every count in a table is zero.
	ErrEmptyTable = errors.New("the provided table is empty")

	// ErrTooManyDimensions is returned when more embedding dimensions are
	// requested than there are samples.
	ErrTooManyDimensions = errors.New("too many dimensions")

	// ErrInvalidTable is returned for malformed feature tables.
	ErrInvalidTable = errors.New("invalid feature table")

	// ErrNonPositiveComposition is returned when the aitchison metric meets
	// a zero or negative part after the pseudocount is added.
	ErrNonPositiveComposition = errors.New("composition has non-positive parts")

	// ErrInvalidDistanceMatrix is returned for malformed distance matrices.
	ErrInvalidDistanceMatrix = errors.New("invalid distance matrix")
)
