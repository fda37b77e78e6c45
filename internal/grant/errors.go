package grant

import "errors"

// Sentinel errors shared across the pipeline. The processor maps most of
// these to soft skip outcomes; only ErrPathwayMissing is a hard item failure.
var (
	ErrCitizenNotFound        = errors.New("citizen not found")
	ErrPathwayMissing         = errors.New("citizen has no pathway tree")
	ErrGrantNotFound          = errors.New("grant reference not found in pathway")
	ErrFieldValuesUnavailable = errors.New("grant field values unavailable")
)
