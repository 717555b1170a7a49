package describe

import "errors"

var (
	ErrUnknownScheme      = errors.New("unknown database URL scheme")
	ErrBackendNotIncluded = errors.New("backend not included in this build")
	ErrDescribeFailed     = errors.New("describe failed")
)
