// Package artifacts resolves module references against a compiler output
// directory.
//
// Forge writes one JSON artifact per contract under a directory named after
// the source file:
//
//	out/TokenModule.sol/TokenModule.json
//
// Hardhat nests the same layout below the source path. Both are supported.
// A reference "src/modules/TokenModule.sol:TokenModule" is matched by its
// source file name; a bare "TokenModule" resolves to the first match in
// sorted path order.
package artifacts

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/pkg/abi"
	"github.com/cannon-dev/cannon/pkg/router"
)

// Store reads artifacts from a compiler output directory.
// Decoded artifacts are cached until their file changes.
// Store is safe for concurrent use.
type Store struct {
	dir string

	mu    sync.Mutex
	index []string
	cache map[string]cached
}

type cached struct {
	modTime  time.Time
	size     int64
	artifact *abi.Artifact
}

// NewStore creates a store reading from dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string]cached),
	}
}

// Dir returns the artifacts directory.
func (s *Store) Dir() string {
	return s.dir
}

// Artifact implements router.ArtifactSource.
func (s *Store) Artifact(ref string) (*abi.Artifact, bool, error) {
	path, err := s.Find(ref)
	if err != nil {
		return nil, false, err
	}
	if path == "" {
		return nil, false, nil
	}

	art, err := s.load(path)
	if err != nil {
		return nil, false, err
	}
	return art, true, nil
}

// Find returns the artifact file for ref, or "" when none matches.
func (s *Store) Find(ref string) (string, error) {
	index, err := s.files()
	if err != nil {
		return "", err
	}

	name := router.ModuleName(ref)
	source := filepath.Base(filepath.FromSlash(router.ModulePath(ref)))
	wantFile := name + ".json"

	for _, path := range index {
		if filepath.Base(path) != wantFile {
			continue
		}
		if router.ModulePath(ref) != "" && filepath.Base(filepath.Dir(path)) != source {
			continue
		}
		return path, nil
	}
	return "", nil
}

// Modules lists the contract names with an artifact, sorted and unique.
func (s *Store) Modules() ([]string, error) {
	index, err := s.files()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(index))
	var names []string
	for _, path := range index {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate drops the file index so the next lookup rescans the directory.
// Cached artifacts are kept and revalidated against their file.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
}

func (s *Store) files() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index, nil
	}

	var index []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if isArtifactFile(path) {
			index = append(index, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				Wrap(err).
				WithDetail("artifacts directory " + s.dir + " does not exist").
				WithSuggestion("Run 'forge build' or pass --compile")
		}
		return nil, errors.New("E141").Wrap(err)
	}

	sort.Strings(index)
	if index == nil {
		index = []string{}
	}
	s.index = index
	return index, nil
}

// isArtifactFile reports whether path is a contract artifact: a JSON file
// directly inside a "<File>.sol" directory. Hardhat debug files and
// artifacts of secondary compiler versions ("Name.0.8.19.json") are skipped.
func isArtifactFile(path string) bool {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".json") || strings.HasSuffix(base, ".dbg.json") {
		return false
	}
	if strings.Contains(strings.TrimSuffix(base, ".json"), ".") {
		return false
	}
	return strings.HasSuffix(filepath.Base(filepath.Dir(path)), ".sol")
}

func (s *Store) load(path string) (*abi.Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.New("E141").Wrap(err).WithDetail(path)
	}

	s.mu.Lock()
	c, ok := s.cache[path]
	s.mu.Unlock()
	if ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.artifact, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E141").Wrap(err).WithDetail(path)
	}
	art, err := abi.DecodeArtifact(data)
	if err != nil {
		return nil, errors.New("E141").Wrap(err).WithDetail(path)
	}

	s.mu.Lock()
	s.cache[path] = cached{modTime: info.ModTime(), size: info.Size(), artifact: art}
	s.mu.Unlock()

	return art, nil
}
