package offline

import "errors"

var (
	ErrNoBuildRoot     = errors.New("QUERYBIND_BUILD_ROOT is not set; it is required to locate the offline snapshot")
	ErrNoSnapshot      = errors.New("no offline snapshot found; set DATABASE_URL or run `querybind prepare` against a live database")
	ErrQueryNotFound   = errors.New("query not found in the offline snapshot; run `querybind prepare` against a live database to regenerate it")
	ErrSnapshotVersion = errors.New("offline snapshot format is not supported by this build")
)
