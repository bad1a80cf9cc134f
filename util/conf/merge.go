package conf

// MergeDefaults namespaces the keys of the given maps with ns and
// merges them into a single map. Later maps win on key collisions.
func MergeDefaults[M ~map[string]V, V any](ns string, maps ...M) M {
	fullCap := 0
	for _, m := range maps {
		fullCap += len(m)
	}

	merged := make(M, fullCap)
	for _, m := range maps {
		for key, val := range m {
			if ns == "" {
				merged[key] = val
				continue
			}
			merged[ns+"."+key] = val
		}
	}

	return merged
}
