// Package pathtree models a user's vault as a flat set of slash-delimited
// paths and derives the folder/file hierarchy from it. Folders have no
// independent existence: a path is a folder exactly when other paths nest
// under it. All structural operations work on the plaintext path set
// client-side; the server only ever sees the serialized set as an opaque
// blob.
package pathtree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/avolkovs/keepsake/internal/common"
)

// PathSet is an ordered set of vault paths. The zero value is not usable;
// construct with NewPathSet or ParseSet.
type PathSet struct {
	paths map[string]struct{}
}

// NewPathSet builds a set from the given paths, dropping duplicates.
func NewPathSet(paths []string) *PathSet {
	s := &PathSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
	return s
}

// ParseSet parses the serialized form produced by Serialize: a JSON array of
// path strings.
func ParseSet(serialized string) (*PathSet, error) {
	var paths []string
	if err := json.Unmarshal([]byte(serialized), &paths); err != nil {
		return nil, fmt.Errorf("parsing path list: %w", err)
	}
	return NewPathSet(paths), nil
}

// Serialize renders the set as a sorted JSON array of path strings. Sorting
// keeps the serialized form stable across runs, so identical sets produce
// identical blobs.
func (s *PathSet) Serialize() (string, error) {
	data, err := json.Marshal(s.List())
	if err != nil {
		return "", fmt.Errorf("serializing path list: %w", err)
	}
	return string(data), nil
}

// List returns the paths in sorted order.
func (s *PathSet) List() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of paths in the set.
func (s *PathSet) Len() int {
	return len(s.paths)
}

// Contains reports whether path is present as an exact entry.
func (s *PathSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// IsFolder reports whether path is a folder, i.e. at least one entry nests
// under it. The check anchors on the '/' boundary so "foo" never matches
// "foobar/x".
func (s *PathSet) IsFolder(path string) bool {
	prefix := path + "/"
	for p := range s.paths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Add inserts a new file path. Returns common.ErrorConflict if the exact
// path already exists.
func (s *PathSet) Add(path string) error {
	if _, ok := s.paths[path]; ok {
		return common.ErrorConflict
	}
	s.paths[path] = struct{}{}
	return nil
}

// Remove deletes path from the set. A file path is removed by exact match; a
// folder path removes every entry nested under it. Returns
// common.ErrorNotFound when neither matches anything.
func (s *PathSet) Remove(path string) error {
	if _, ok := s.paths[path]; ok {
		delete(s.paths, path)
		return nil
	}

	prefix := path + "/"
	removed := false
	for p := range s.paths {
		if strings.HasPrefix(p, prefix) {
			delete(s.paths, p)
			removed = true
		}
	}
	if !removed {
		return common.ErrorNotFound
	}
	return nil
}

// Rename substitutes oldPath with newPath. For a file it replaces the single
// exact entry; for a folder it rewrites the oldPath+"/" prefix of every
// nested entry. Returns common.ErrorNotFound when oldPath matches nothing
// and common.ErrorConflict when any rewritten path already exists.
func (s *PathSet) Rename(oldPath, newPath string) error {
	pairs := s.RenamePairs(oldPath, newPath)
	if len(pairs) == 0 {
		return common.ErrorNotFound
	}

	for _, pair := range pairs {
		if _, ok := s.paths[pair.New]; ok {
			return common.ErrorConflict
		}
	}

	for _, pair := range pairs {
		delete(s.paths, pair.Old)
		s.paths[pair.New] = struct{}{}
	}
	return nil
}

// RenamePair is one old→new path substitution produced by a rename.
type RenamePair struct {
	Old string
	New string
}

// RenamePairs computes the substitutions a Rename(oldPath, newPath) would
// perform, without mutating the set. The synchronizer uses this to move
// remote content before committing the local rename. An empty result means
// oldPath matches nothing.
func (s *PathSet) RenamePairs(oldPath, newPath string) []RenamePair {
	if _, ok := s.paths[oldPath]; ok {
		return []RenamePair{{Old: oldPath, New: newPath}}
	}

	prefix := oldPath + "/"
	var pairs []RenamePair
	for p := range s.paths {
		if strings.HasPrefix(p, prefix) {
			pairs = append(pairs, RenamePair{Old: p, New: newPath + "/" + p[len(prefix):]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Old < pairs[j].Old })
	return pairs
}

// FolderEntries returns the entries equal to or nested under path, sorted.
// Used by folder removal to enumerate content blobs to delete.
func (s *PathSet) FolderEntries(path string) []string {
	prefix := path + "/"
	var out []string
	for p := range s.paths {
		if p == path || strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// SanitizeSegment normalizes one path segment: lower-cases, trims, and strips
// every character outside [a-z0-9_-]. Returns common.ErrInvalidName when
// nothing survives.
func SanitizeSegment(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", common.ErrInvalidName
	}
	return b.String(), nil
}

// SanitizePath sanitizes every segment of a slash-delimited path. Empty
// segments (leading, trailing or doubled slashes) are rejected.
func SanitizePath(path string) (string, error) {
	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		clean, err := SanitizeSegment(seg)
		if err != nil {
			return "", fmt.Errorf("segment %q: %w", seg, err)
		}
		out = append(out, clean)
	}
	return strings.Join(out, "/"), nil
}
