package describe

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// knownSchemes maps every scheme the tool recognizes to its canonical
// backend tag, whether or not that backend is present in this build. It is
// what lets an error say which backend a URL would have needed.
var knownSchemes = map[string]string{
	"postgres":   "postgres",
	"postgresql": "postgres",
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"mssql":      "mssql",
	"sqlserver":  "mssql",
}

var (
	registryMu sync.RWMutex
	byTag      = map[string]Backend{}
	byScheme   = map[string]Backend{}
)

// Register makes a backend available for selection. It is intended to be
// called from the init function of a backend package; registering the same
// tag or scheme twice panics.
func Register(b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()

	tag := b.Tag()
	if _, dup := byTag[tag]; dup {
		panic(fmt.Sprintf("describe: backend %q registered twice", tag))
	}
	byTag[tag] = b

	for _, scheme := range b.Schemes() {
		if _, dup := byScheme[scheme]; dup {
			panic(fmt.Sprintf("describe: scheme %q registered twice", scheme))
		}
		byScheme[scheme] = b
	}
}

// Backends returns the tags of all registered backends, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ForURL selects the backend for a connection URL by its scheme. A scheme
// the tool has never heard of and a scheme whose backend was left out of
// the build produce distinct errors.
func ForURL(rawURL string) (Backend, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	registryMu.RLock()
	b, ok := byScheme[u.Scheme]
	registryMu.RUnlock()
	if ok {
		return b, nil
	}

	if tag, known := knownSchemes[u.Scheme]; known {
		return nil, fmt.Errorf(
			"%w: database URL has the scheme of a %s database but this build does not include the %s backend",
			ErrBackendNotIncluded, tag, tag)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownScheme, u.Scheme)
}

// ForTag selects a backend by its canonical tag. It is the offline path's
// counterpart to ForURL: cached query data names the backend that produced
// it, and that backend must be present to interpret the data.
func ForTag(tag string) (Backend, error) {
	registryMu.RLock()
	b, ok := byTag[tag]
	registryMu.RUnlock()
	if ok {
		return b, nil
	}
	return nil, fmt.Errorf(
		"%w: found cached query data for %q but this build does not include that backend",
		ErrBackendNotIncluded, tag)
}
