// Package offline persists query descriptions so builds without database
// access can replay them. One file per described query accumulates under the
// build root; `querybind prepare` merges them into a single snapshot that
// offline builds read.
package offline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	version "github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/querybind/querybind/describe"
)

const (
	// SnapshotVersion is the on-disk format version. Snapshots from another
	// major version are rejected rather than misread.
	SnapshotVersion = "1.0.0"

	// SnapshotFile is the merged snapshot, one per build root.
	SnapshotFile = "querybind-data.json"

	cacheDirName    = ".querybind"
	entryFilePrefix = "query-"
)

// Entry is one cached describe result. SourceText is stored in full so
// lookup is an exact byte comparison, never a hash-only match.
type Entry struct {
	BackendTag  string               `json:"backend"`
	SourceHash  string               `json:"hash"`
	SourceText  string               `json:"query"`
	Description describe.Description `json:"describe"`
}

// NewEntry builds the cache entry for a successful live describe.
func NewEntry(backendTag, sourceText string, desc *describe.Description) Entry {
	return Entry{
		BackendTag:  backendTag,
		SourceHash:  HashSource(sourceText),
		SourceText:  sourceText,
		Description: *desc,
	}
}

// Snapshot is the merged offline data for one build, keyed by source hash.
type Snapshot struct {
	Version string           `json:"version"`
	Queries map[string]Entry `json:"queries"`
}

// Lookup finds the entry for the exact source text. The stored text is
// compared byte for byte after the hash match, so a near match can never be
// returned.
func (s *Snapshot) Lookup(sourceText string) (*Entry, error) {
	entry, ok := s.Queries[HashSource(sourceText)]
	if !ok || entry.SourceText != sourceText {
		return nil, ErrQueryNotFound
	}
	return &entry, nil
}

// HashSource returns the identity digest of the exact source text.
func HashSource(sourceText string) string {
	sum := sha256.Sum256([]byte(sourceText))
	return hex.EncodeToString(sum[:])
}

// Store reads and writes cache files under one build root.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore requires a build root; locating cache files without one is a
// configuration error, not a silent fallback.
func NewStore(fs afero.Fs, buildRoot string) (*Store, error) {
	if buildRoot == "" {
		return nil, ErrNoBuildRoot
	}
	return &Store{fs: fs, root: buildRoot}, nil
}

func (s *Store) cacheDir() string {
	return filepath.Join(s.root, cacheDirName)
}

func (s *Store) snapshotPath() string {
	return filepath.Join(s.root, SnapshotFile)
}

// Save writes the per-query cache file. The file name derives from the
// source hash, so concurrent builds describing the same query write the
// same bytes to the same file and converge instead of colliding.
func (s *Store) Save(entry Entry) error {
	if err := s.fs.MkdirAll(s.cacheDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	path := filepath.Join(s.cacheDir(), entryFilePrefix+entry.SourceHash+".json")
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Merge folds every per-query cache file into the snapshot file and returns
// the merged snapshot. Entries for queries that no longer exist are carried
// along; they are orphaned, not deleted.
func (s *Store) Merge() (*Snapshot, error) {
	infos, err := afero.ReadDir(s.fs, s.cacheDir())
	if err != nil {
		return nil, fmt.Errorf("no cache entries to merge under %s: %w", s.cacheDir(), err)
	}

	snap := &Snapshot{
		Version: SnapshotVersion,
		Queries: map[string]Entry{},
	}
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !strings.HasPrefix(name, entryFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(s.cacheDir(), name))
		if err != nil {
			return nil, fmt.Errorf("failed to read cache entry %s: %w", name, err)
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse cache entry %s: %w", name, err)
		}
		snap.Queries[entry.SourceHash] = entry
	}

	if len(snap.Queries) == 0 {
		return nil, fmt.Errorf("no cache entries to merge under %s", s.cacheDir())
	}

	data, err := marshalSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := afero.WriteFile(s.fs, s.snapshotPath(), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	return snap, nil
}

// Load reads the merged snapshot for offline builds.
func (s *Store) Load() (*Snapshot, error) {
	exists, err := afero.Exists(s.fs, s.snapshotPath())
	if err != nil {
		return nil, fmt.Errorf("failed to locate snapshot: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w at %s", ErrNoSnapshot, s.snapshotPath())
	}

	data, err := afero.ReadFile(s.fs, s.snapshotPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.snapshotPath(), err)
	}
	if err := checkVersion(snap.Version); err != nil {
		return nil, err
	}
	return &snap, nil
}

// checkVersion gates on the snapshot format's major version.
func checkVersion(got string) error {
	want := version.Must(version.NewVersion(SnapshotVersion))
	have, err := version.NewVersion(got)
	if err != nil {
		return fmt.Errorf("%w: snapshot declares version %q", ErrSnapshotVersion, got)
	}
	if have.Segments()[0] != want.Segments()[0] {
		return fmt.Errorf("%w: snapshot version %s, this build reads %s", ErrSnapshotVersion, have, want)
	}
	return nil
}

// marshalSnapshot renders the snapshot with sorted keys so repeated merges
// produce identical files.
func marshalSnapshot(snap *Snapshot) ([]byte, error) {
	// encoding/json sorts map keys already; MarshalIndent keeps the file
	// diffable under version control.
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}
