package team

import "sort"

// sortedKeys returns the keys of deps following order; keys missing from
// order come first, sorted, so they are reported deterministically.
func sortedKeys(deps map[string][]string, order []string) []string {
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	var unknown, known []string
	for k := range deps {
		if _, ok := pos[k]; ok {
			known = append(known, k)
		} else {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	sort.Slice(known, func(i, j int) bool { return pos[known[i]] < pos[known[j]] })
	return append(unknown, known...)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func copyDeps(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func copyPlan(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, level := range in {
		out[i] = append([]string(nil), level...)
	}
	return out
}
