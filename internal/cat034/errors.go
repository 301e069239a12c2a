package cat034

import "errors"

// Structural errors returned by the codec. Callers match them with errors.Is;
// the returned errors wrap these with the offending offset or value.
var (
	ErrCategoryInvalid = errors.New("category invalid")
	ErrSizeInvalid     = errors.New("data block size invalid")
	ErrValueRange      = errors.New("value out of range")
)
