package errcode

import (
	"sort"
	"strings"

	"github.com/eneno295/multilang-tools/literal"
)

// DefaultIndent is used when a file's indentation cannot be inferred.
const DefaultIndent = "  "

// detectIndent captures the leading whitespace of the first entry line.
func detectIndent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, `"`) {
			continue
		}
		if indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]; indent != "" {
			return indent
		}
	}
	return DefaultIndent
}

// codeLess orders numeric code strings ascending by value. Codes are
// digit strings of possibly different lengths, so shorter sorts first.
func codeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// Render rebuilds the file text: declaration, section header comments,
// entries ascending by code within each section, blank line between
// sections, comma on every entry but the last. Rendering rendered
// output is byte-identical.
func (f *File) Render() string {
	indent := detectIndent(f.raw)
	total := 0
	for _, s := range f.Sections {
		total += len(s.Entries)
	}

	var b strings.Builder
	b.WriteString("const " + f.VarName + " = {\n")

	emitted := 0
	first := true
	for _, s := range f.Sections {
		if s.Header == "" && len(s.Entries) == 0 {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false
		if s.Header != "" {
			b.WriteString(indent + "// " + s.Header + "\n")
		}

		entries := make([]Entry, len(s.Entries))
		copy(entries, s.Entries)
		sort.Slice(entries, func(i, j int) bool {
			return codeLess(entries[i].Code, entries[j].Code)
		})
		for _, e := range entries {
			emitted++
			b.WriteString(indent + literal.QuoteKey(e.Code) + ": " + literal.QuoteValue(e.Message))
			if emitted < total {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// Organize classifies the file, moves misplaced entries to their
// sections, and rebuilds the text. The Result reports every move and
// any codes left in place because their section was ambiguous.
func Organize(f *File) (string, Result) {
	res := Classify(f)
	res.Apply(f)
	return f.Render(), res
}

// InsertMissing adds every source entry absent from target, with the
// message taken from values (codes absent from values are skipped).
// Each entry lands in the target section whose header matches its
// source section, created at the end when the target lacks it; entries
// already present in the target are left alone, so target-only codes
// survive. Final ordering comes from the rebuild sort.
func InsertMissing(target, source *File, values map[string]string) int {
	inserted := 0
	for _, ss := range source.Sections {
		for _, e := range ss.Entries {
			if _, ok := target.Get(e.Code); ok {
				continue
			}
			v, ok := values[e.Code]
			if !ok {
				continue
			}
			sec := target.sectionByHeader(ss.Header)
			sec.Entries = append(sec.Entries, Entry{Code: e.Code, Message: v})
			inserted++
		}
	}
	return inserted
}

// sectionByHeader finds the section with the given header, appending a
// new one when none exists.
func (f *File) sectionByHeader(header string) *Section {
	for i := range f.Sections {
		if f.Sections[i].Header == header {
			return &f.Sections[i]
		}
	}
	f.Sections = append(f.Sections, Section{Header: header})
	return &f.Sections[len(f.Sections)-1]
}

// Merge builds a rebuild of a target file: the source's section layout
// with messages taken from values. Codes absent from values are dropped
// (no translation exists for them yet); named sections survive empty so
// the layout stays recognizable.
func Merge(source *File, values map[string]string) *File {
	out := &File{VarName: source.VarName, raw: source.raw}
	for _, s := range source.Sections {
		ns := Section{Header: s.Header, Line: s.Line}
		for _, e := range s.Entries {
			if v, ok := values[e.Code]; ok {
				ns.Entries = append(ns.Entries, Entry{Code: e.Code, Message: v})
			}
		}
		if ns.Header == "" && len(ns.Entries) == 0 {
			continue
		}
		out.Sections = append(out.Sections, ns)
	}
	if len(out.Sections) == 0 {
		out.Sections = []Section{{}}
	}
	return out
}
