package entities

import "sort"

// PermissionSet is a sorted, deduplicated set of permission codes. It is an
// immutable snapshot: callers compute it once per authentication event (or
// explicitly recompute after a grant change they made) and carry it as a
// value. Mid-session grant changes by other actors are not reflected until
// the next computation.
type PermissionSet []string

// NewPermissionSet builds a set from arbitrary codes, deduplicating and
// sorting lexicographically.
func NewPermissionSet(codes ...string) PermissionSet {
	seen := make(map[string]struct{}, len(codes))
	set := make(PermissionSet, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		set = append(set, code)
	}
	sort.Strings(set)
	return set
}

// Has reports whether the set contains the given code.
func (s PermissionSet) Has(code string) bool {
	i := sort.SearchStrings(s, code)
	return i < len(s) && s[i] == code
}
