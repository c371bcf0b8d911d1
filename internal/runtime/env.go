// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"slices"
	"strings"
)

// ScopedEnv returns base with the names in unset and the keys of overrides
// removed, followed by the overrides in sorted order. base is not modified.
func ScopedEnv(base []string, overrides map[string]string, unset []string) []string {
	drop := make(map[string]struct{}, len(overrides)+len(unset))
	for k := range overrides {
		drop[k] = struct{}{}
	}
	for _, k := range unset {
		drop[k] = struct{}{}
	}

	result := make([]string, 0, len(base)+len(overrides))
	for _, e := range base {
		name, _, ok := strings.Cut(e, "=")
		if ok {
			if _, skip := drop[name]; skip {
				continue
			}
		}
		result = append(result, e)
	}

	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		result = append(result, k+"="+overrides[k])
	}
	return result
}
