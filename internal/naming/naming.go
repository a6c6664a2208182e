// Package naming guarantees unique, deterministic, human-meaningful output
// column names across a whole extraction run. A Registry is the sole
// authority for name uniqueness; it is owned by the pipeline and passed to
// the components that allocate names, never shared through package state.
package naming

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// clipSuffix is appended to scratch rasters by the clipping stage and
// stripped again when deriving column names.
const clipSuffix = "_clip"

// Registry tracks every column name allocated during a run. Append-only:
// once a name is handed out it stays reserved until Reset.
type Registry struct {
	used map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]struct{})}
}

// UniqueName returns base if it is unused, otherwise the first unused of
// base_1, base_2, and so on. The returned name is registered immediately.
func (r *Registry) UniqueName(base string) string {
	name := base
	for k := 1; ; k++ {
		if _, taken := r.used[name]; !taken {
			break
		}
		name = base + "_" + strconv.Itoa(k)
	}
	r.used[name] = struct{}{}
	return name
}

// Used reports whether a name has been allocated.
func (r *Registry) Used(name string) bool {
	_, ok := r.used[name]
	return ok
}

// Reset forgets all allocated names. Call between runs when reusing a
// registry.
func (r *Registry) Reset() {
	r.used = make(map[string]struct{})
}

// SortBySuffix orders names by the run of digits at the end of each name,
// numerically, so "B2" sorts before "B10". Names without a trailing digit
// sort as if their suffix were 1. The sort is stable; the input is not
// modified.
func SortBySuffix(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.SliceStable(out, func(i, j int) bool {
		return trailingNumber(out[i]) < trailingNumber(out[j])
	})
	return out
}

func trailingNumber(name string) int {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return 1
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return 1
	}
	return n
}

// BaseNameFromClip recovers a raster's logical name from a scratch filename:
// the directory and extension are dropped and a trailing "_clip" marker is
// stripped when present.
func BaseNameFromClip(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, clipSuffix)
}

// ClipFileName derives the scratch filename the clipping stage writes for a
// raster source, mirroring BaseNameFromClip.
func ClipFileName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + clipSuffix + ".tif"
}
