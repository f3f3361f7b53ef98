// Package errcode implements reading, classifying and rewriting of
// numeric error-code tables — hand-authored object literals of the form:
//
//	const errCode = {
//	    // 系统模块
//	    "1002000001": "系统错误",
//	    // 会员模块
//	    "1003000001": "会员不存在",
//	}
//
// Entries are grouped into sections delimited by comment lines whose
// text contains "模块" or "报错". Hand-maintained tables drift over
// time, with new codes appended under the wrong comment block; the
// classifier in this package detects misplaced entries by their
// numeric-prefix convention and the organize path moves them back.
package errcode

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/eneno295/multilang-tools/literal"
)

// Entry is one code-to-message pair.
type Entry struct {
	// Code is the numeric key, kept as a string.
	Code string
	// Message is the human-readable text.
	Message string
	// Line is the 1-based line the entry appears on.
	Line int
}

// Section is a contiguous comment-delimited block of entries. Sections
// partition the file's entry list.
type Section struct {
	// Header is the delimiting comment's text without the "//" marker,
	// empty for the unnamed block before the first section comment.
	Header string
	// Line is the 1-based line of the header comment, 0 when unnamed.
	Line    int
	Entries []Entry
}

// File is a parsed error-code file.
type File struct {
	Sections []Section
	// VarName is the declared variable name, "errCode" by default.
	VarName string

	raw   string
	index map[string]int // code -> flat position
}

// DefaultVarName is used when the file carries no recognizable
// declaration.
const DefaultVarName = "errCode"

var (
	// entryPattern matches one `"<digits>": "<message>"` line, with any
	// of the three quote styles around the message.
	entryPattern = regexp.MustCompile("^\"(\\d+)\"\\s*:\\s*([\"'`])((?:\\\\.|[^\\\\])*?)([\"'`])\\s*,?\\s*$")
	varPattern   = regexp.MustCompile(`(?:const|var|let)\s+([A-Za-z_$][\w$]*)\s*=`)
)

// sectionHeader reports whether a trimmed line is a section-delimiting
// comment and returns its text.
func sectionHeader(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, "//") {
		return "", false
	}
	text := strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
	if strings.Contains(text, "模块") || strings.Contains(text, "报错") {
		return text, true
	}
	return "", false
}

// Parse parses error-code file content. The scan is line-based: only
// `"<digits>": "<message>"` lines are recognized as entries, and
// section boundaries are human-authored comments, not braces. Malformed
// lines are skipped, so total parse failure degrades to an empty file
// rather than an error.
func Parse(content string) *File {
	f := &File{
		VarName:  DefaultVarName,
		Sections: []Section{{}},
		raw:      content,
		index:    make(map[string]int),
	}
	if m := varPattern.FindStringSubmatch(content); m != nil {
		f.VarName = m[1]
	}

	flat := 0
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if header, ok := sectionHeader(trimmed); ok {
			f.Sections = append(f.Sections, Section{Header: header, Line: i + 1})
			continue
		}
		m := entryPattern.FindStringSubmatch(trimmed)
		if m == nil || m[2] != m[4] {
			continue
		}
		code := m[1]
		if _, dup := f.index[code]; dup {
			continue
		}
		f.index[code] = flat
		flat++
		cur := len(f.Sections) - 1
		f.Sections[cur].Entries = append(f.Sections[cur].Entries, Entry{
			Code:    code,
			Message: literal.Unescape(m[3]),
			Line:    i + 1,
		})
	}

	// Drop the unnamed leading section when it collected nothing.
	if len(f.Sections) > 1 && f.Sections[0].Header == "" && len(f.Sections[0].Entries) == 0 {
		f.Sections = f.Sections[1:]
	}
	return f
}

// ParseFile reads and parses an error-code file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Codes returns every code in document order.
func (f *File) Codes() []string {
	var codes []string
	for _, s := range f.Sections {
		for _, e := range s.Entries {
			codes = append(codes, e.Code)
		}
	}
	return codes
}

// Get returns the entry for code.
func (f *File) Get(code string) (Entry, bool) {
	for _, s := range f.Sections {
		for _, e := range s.Entries {
			if e.Code == code {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Messages returns a code-to-message map of every entry.
func (f *File) Messages() map[string]string {
	out := make(map[string]string)
	for _, s := range f.Sections {
		for _, e := range s.Entries {
			out[e.Code] = e.Message
		}
	}
	return out
}

// Raw returns the original file content.
func (f *File) Raw() string {
	return f.raw
}

// sectionOf returns the index of the section currently holding code.
func (f *File) sectionOf(code string) int {
	for i, s := range f.Sections {
		for _, e := range s.Entries {
			if e.Code == code {
				return i
			}
		}
	}
	return -1
}
