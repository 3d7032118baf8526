package arcfind

import "strings"

// matchesSuffix is a path-suffix test, not an exact match: "a/b/file.txt"
// matches the target "file.txt".
func matchesSuffix(name, target string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.HasSuffix(strings.ToLower(name), strings.ToLower(target))
	}
	return strings.HasSuffix(name, target)
}

// evalPredicates tries predicates in order and stops at the first hit.
func evalPredicates(preds []Predicate, data []byte) (Predicate, any, bool) {
	for _, p := range preds {
		if value, ok := p.Match(data); ok {
			return p, value, true
		}
	}
	return Predicate{}, nil, false
}
