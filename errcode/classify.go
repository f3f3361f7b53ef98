package errcode

import "strings"

// Rule is the prefix rule inferred for one section.
type Rule struct {
	// Section indexes into File.Sections.
	Section int
	Header  string
	// Prefixes are the numeric prefixes this section claims; a code
	// belongs here when any of them prefixes it.
	Prefixes []string
	// Named is true when the rule came from a header heuristic rather
	// than from the prefixes observed among the section's entries.
	Named bool
}

// Move records one misplaced entry and where it belongs.
type Move struct {
	Code string
	From int
	To   int
}

// Ambiguity records a code claimed by several equally specific
// sections, none of which is its current one. Such codes are reported
// and left where they are rather than moved on a coin flip.
type Ambiguity struct {
	Code     string
	Sections []int
}

// Result is the outcome of classifying one file.
type Result struct {
	Rules     []Rule
	Moves     []Move
	Ambiguous []Ambiguity
}

// namedPrefixes maps well-known header substrings to the numeric prefix
// convention of the corresponding functional module.
var namedPrefixes = []struct {
	substr string
	prefix string
}{
	{"系统", "1002"},
	{"会员", "1003"},
	{"运营", "1005"},
	{"信息", "1006"},
}

// verificationPrefixes are the code prefixes that mark verification
// entries; every "报错" section claims both.
var verificationPrefixes = []string{"000", "620"}

// Classify infers a prefix rule per section and computes which entries
// sit under the wrong header. An entry matching several sections goes
// to the one with the fewest total prefixes (the most specific); when
// that still leaves a tie the entry stays put, and if its own section
// is not among the tied candidates the tie is surfaced as an Ambiguity.
func Classify(f *File) Result {
	var res Result
	for i, s := range f.Sections {
		res.Rules = append(res.Rules, ruleFor(i, s))
	}

	for from, s := range f.Sections {
		for _, e := range s.Entries {
			var candidates []int
			for _, r := range res.Rules {
				if matchesRule(r, e.Code) {
					candidates = append(candidates, r.Section)
				}
			}
			if len(candidates) == 0 {
				continue
			}

			best := narrowest(res.Rules, candidates)
			if len(best) == 1 {
				if best[0] != from {
					res.Moves = append(res.Moves, Move{Code: e.Code, From: from, To: best[0]})
				}
				continue
			}
			if containsInt(best, from) {
				continue
			}
			res.Ambiguous = append(res.Ambiguous, Ambiguity{Code: e.Code, Sections: best})
		}
	}
	return res
}

// Apply moves every misplaced entry into its classified section: the
// entry leaves its current list and is appended to the target list.
// Final ordering is restored by the rebuild sort.
func (r Result) Apply(f *File) {
	if len(r.Moves) == 0 {
		return
	}
	target := make(map[string]int, len(r.Moves))
	for _, m := range r.Moves {
		target[m.Code] = m.To
	}

	moved := make(map[int][]Entry)
	for i := range f.Sections {
		var kept []Entry
		for _, e := range f.Sections[i].Entries {
			if to, ok := target[e.Code]; ok && to != i {
				moved[to] = append(moved[to], e)
				continue
			}
			kept = append(kept, e)
		}
		f.Sections[i].Entries = kept
	}
	for to, entries := range moved {
		f.Sections[to].Entries = append(f.Sections[to].Entries, entries...)
	}
}

func ruleFor(i int, s Section) Rule {
	r := Rule{Section: i, Header: s.Header}

	for _, np := range namedPrefixes {
		if strings.Contains(s.Header, np.substr) {
			r.Prefixes = []string{np.prefix}
			r.Named = true
			return r
		}
	}

	if strings.Contains(s.Header, "报错") {
		r.Prefixes = append([]string(nil), verificationPrefixes...)
		r.Named = true
		return r
	}

	// No heuristic applies: the section claims the 4-digit prefixes it
	// empirically holds.
	seen := make(map[string]bool)
	for _, e := range s.Entries {
		p := e.Code
		if len(p) > 4 {
			p = p[:4]
		}
		if !seen[p] {
			seen[p] = true
			r.Prefixes = append(r.Prefixes, p)
		}
	}
	return r
}

func matchesRule(r Rule, code string) bool {
	for _, p := range r.Prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// narrowest filters candidates down to the sections with the fewest
// total prefixes.
func narrowest(rules []Rule, candidates []int) []int {
	min := -1
	for _, c := range candidates {
		if n := len(rules[c].Prefixes); min == -1 || n < min {
			min = n
		}
	}
	var best []int
	for _, c := range candidates {
		if len(rules[c].Prefixes) == min {
			best = append(best, c)
		}
	}
	return best
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
