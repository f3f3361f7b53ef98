// Package diffkeys computes key-set differences between a source file
// and a target file, the first step of every synchronization run.
package diffkeys

// Result holds the outcome of a source/target key comparison.
type Result struct {
	// Missing are keys present in source but absent in target,
	// in source order (downstream insertion honors source ordering).
	Missing []string
	// Redundant are keys present in target but absent in source,
	// in target order.
	Redundant []string
}

// Diff computes the set difference between source and target keys.
// Duplicate keys within one side are counted once.
func Diff(source, target []string) Result {
	inSource := make(map[string]bool, len(source))
	for _, k := range source {
		inSource[k] = true
	}
	inTarget := make(map[string]bool, len(target))
	for _, k := range target {
		inTarget[k] = true
	}

	var res Result
	seen := make(map[string]bool)
	for _, k := range source {
		if !inTarget[k] && !seen[k] {
			res.Missing = append(res.Missing, k)
			seen[k] = true
		}
	}
	seen = make(map[string]bool)
	for _, k := range target {
		if !inSource[k] && !seen[k] {
			res.Redundant = append(res.Redundant, k)
			seen[k] = true
		}
	}
	return res
}

// InSync reports whether the two key sets are identical.
func (r Result) InSync() bool {
	return len(r.Missing) == 0 && len(r.Redundant) == 0
}
