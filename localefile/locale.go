// Package localefile implements reading and rewriting of translation
// locale files — hand-authored object literals of the form:
//
//	export default {
//	    games: {
//	        name: "足球",
//	    },
//	    "title": 'Hello',
//	}
//
// Every string-valued leaf becomes one entry keyed by its dot-joined
// path ("games.name"). Object values are recursed into; other value
// kinds are ignored. Parsing never hard-fails: malformed files degrade
// to a regex scan, and in the worst case to an empty entry list.
package localefile

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/eneno295/multilang-tools/literal"
)

// Entry is one translatable leaf of a locale file.
type Entry struct {
	// Key is the dot-joined path from the root, unique within a file.
	Key string
	// LeafKey is the last path segment, the key used when writing
	// new literal syntax.
	LeafKey string
	// Value is the string value.
	Value string
	// Line is the 1-based line the leaf appears on.
	Line int
}

// File is a parsed locale file.
type File struct {
	// Entries lists all string leaves in document order.
	Entries []Entry
	// Tree is the structural parse, nil when only the regex fallback
	// succeeded.
	Tree *literal.Object
	// Wrapper is the declaration prefix before the opening brace,
	// e.g. "export default" or "const messages =".
	Wrapper string

	raw   string
	index map[string]int
}

var wrapperPattern = regexp.MustCompile(`(?m)^\s*(export\s+default|module\.exports\s*=|(?:const|var|let)\s+[A-Za-z_$][\w$]*\s*=)`)

// DefaultWrapper is used when a file carries no recognizable wrapper.
const DefaultWrapper = "export default"

// Parse parses locale file content. On total parse failure it returns
// a File with no entries rather than an error.
func Parse(content string) *File {
	f := &File{raw: content, index: make(map[string]int)}

	f.Wrapper = DefaultWrapper
	if m := wrapperPattern.FindStringSubmatch(content); m != nil {
		f.Wrapper = strings.Join(strings.Fields(m[1]), " ")
	}

	if obj, err := literal.Parse(content); err == nil {
		f.Tree = obj
		f.collect(obj, "")
		return f
	}

	// Structural parse failed: recover flat pairs by regex scan.
	for _, p := range literal.ScanPairs(content) {
		f.add(Entry{Key: p.Key, LeafKey: leafKey(p.Key), Value: p.Str, Line: p.Line})
	}
	return f
}

// ParseFile reads and parses a locale file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

func (f *File) collect(obj *literal.Object, prefix string) {
	for _, p := range obj.Pairs {
		path := p.Key
		if prefix != "" {
			path = prefix + "." + p.Key
		}
		switch p.Kind {
		case literal.KindString:
			f.add(Entry{Key: path, LeafKey: p.Key, Value: p.Str, Line: p.Line})
		case literal.KindObject:
			f.collect(p.Obj, path)
		}
		// KindOther leaves are not translatable; skip.
	}
}

func (f *File) add(e Entry) {
	if _, dup := f.index[e.Key]; dup {
		return
	}
	f.index[e.Key] = len(f.Entries)
	f.Entries = append(f.Entries, e)
}

// Keys returns all entry keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.Entries))
	for i, e := range f.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the entry for key.
func (f *File) Get(key string) (Entry, bool) {
	idx, ok := f.index[key]
	if !ok {
		return Entry{}, false
	}
	return f.Entries[idx], true
}

// Raw returns the original file content.
func (f *File) Raw() string {
	return f.raw
}

// leafKey returns the last dot segment of a key path.
func leafKey(key string) string {
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

// parentPath returns the key path one level up, "" at the root.
func parentPath(key string) string {
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		return key[:idx]
	}
	return ""
}

// depth returns the nesting level of a key: dot segments minus one.
func depth(key string) int {
	return strings.Count(key, ".")
}
