package input

import "errors"

var (
	ErrNoSource     = errors.New("expected a source or source_file key")
	ErrAbsolutePath = errors.New("absolute paths will only work on the current machine")
	ErrBarePath     = errors.New("paths with no directory component cannot be resolved reliably; include the directory")
	ErrNoBuildRoot  = errors.New("QUERYBIND_BUILD_ROOT is not set; it is required to resolve file-based query sources")
)
