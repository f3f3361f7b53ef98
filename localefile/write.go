package localefile

import (
	"sort"
	"strings"

	"github.com/eneno295/multilang-tools/literal"
)

// ---------------------------------------------------------------------------
// Formatting primitives
// ---------------------------------------------------------------------------

// DefaultIndent is used when a file's indentation cannot be inferred.
const DefaultIndent = "  "

// DetectIndent infers the file's base indentation unit: the leading
// whitespace of the first non-empty line that is not a comment, a
// brace, or the wrapper declaration.
func DetectIndent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") ||
			strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "}") {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if indent != "" {
			return indent
		}
	}
	return DefaultIndent
}

// FormatKey renders a key for output. Keys are always double-quoted.
func FormatKey(key string) string {
	return literal.QuoteKey(key)
}

// FormatValue renders a string value, double-quoted unless it contains
// an embedded double quote (backtick-wrapped then), newlines as \n.
func FormatValue(v string) string {
	return literal.QuoteValue(v)
}

// CleanTrailingCommas strips the comma from the last entry of every
// brace scope: for each closing-brace line, the nearest preceding
// non-blank, non-comment line loses its trailing comma.
func CleanTrailingCommas(content string) string {
	lines := strings.Split(content, "\n")
	for i := range lines {
		t := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(t, "}") && !strings.HasPrefix(t, "]") {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			s := strings.TrimSpace(lines[j])
			if s == "" || strings.HasPrefix(s, "//") {
				continue
			}
			trimmed := strings.TrimRight(lines[j], " \t")
			lines[j] = strings.TrimSuffix(trimmed, ",")
			break
		}
	}
	return strings.Join(lines, "\n")
}

// ---------------------------------------------------------------------------
// Full-structure rebuild ("organize")
// ---------------------------------------------------------------------------

// Render rebuilds the entire file text from the parsed tree: wrapper,
// one key per line, comments re-attached to their keys, no trailing
// commas. Rendering already-rendered content is byte-identical.
func (f *File) Render() string {
	indent := DetectIndent(f.raw)
	if f.Tree == nil {
		return renderFlat(f, indent)
	}
	return RenderTree(f.Tree, f.Wrapper, indent)
}

// RenderTree rebuilds file text from an object tree.
func RenderTree(tree *literal.Object, wrapper, indent string) string {
	var b strings.Builder
	b.WriteString(wrapper + " {\n")
	renderObject(&b, tree, indent, 1)
	b.WriteString("}\n")
	return b.String()
}

func renderObject(b *strings.Builder, obj *literal.Object, unit string, level int) {
	pad := strings.Repeat(unit, level)
	for i, p := range obj.Pairs {
		for _, c := range p.Comments {
			b.WriteString(pad + "// " + c + "\n")
		}
		switch p.Kind {
		case literal.KindString:
			b.WriteString(pad + FormatKey(p.Key) + ": " + FormatValue(p.Str))
		case literal.KindObject:
			b.WriteString(pad + FormatKey(p.Key) + ": {\n")
			renderObject(b, p.Obj, unit, level+1)
			b.WriteString(pad + "}")
		case literal.KindOther:
			b.WriteString(pad + FormatKey(p.Key) + ": " + p.Raw)
		}
		if i < len(obj.Pairs)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	for _, c := range obj.TrailingComments {
		b.WriteString(pad + "// " + c + "\n")
	}
}

// renderFlat rebuilds from the flat entry list when no structural tree
// survived parsing. Dot-joined keys are emitted as-is.
func renderFlat(f *File, indent string) string {
	var b strings.Builder
	b.WriteString(f.Wrapper + " {\n")
	for i, e := range f.Entries {
		b.WriteString(indent + FormatKey(e.Key) + ": " + FormatValue(e.Value))
		if i < len(f.Entries)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// Merge builds a rebuild tree for a target file: the source file's
// structure and comments, with leaf values taken from values. Leaves
// whose key is absent from values are dropped (no translation exists
// for them yet); objects left empty are dropped with them. Non-string
// pairs are carried over verbatim.
func Merge(source *File, values map[string]string) *literal.Object {
	if source.Tree == nil {
		return nil
	}
	return mergeObject(source.Tree, "", values)
}

func mergeObject(obj *literal.Object, prefix string, values map[string]string) *literal.Object {
	out := &literal.Object{TrailingComments: obj.TrailingComments}
	for _, p := range obj.Pairs {
		path := p.Key
		if prefix != "" {
			path = prefix + "." + p.Key
		}
		switch p.Kind {
		case literal.KindString:
			v, ok := values[path]
			if !ok {
				continue
			}
			cp := *p
			cp.Str = v
			out.Pairs = append(out.Pairs, &cp)
		case literal.KindObject:
			sub := mergeObject(p.Obj, path, values)
			if len(sub.Pairs) == 0 {
				continue
			}
			cp := *p
			cp.Obj = sub
			out.Pairs = append(out.Pairs, &cp)
		case literal.KindOther:
			cp := *p
			out.Pairs = append(out.Pairs, &cp)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Line-splice insertion (translate path)
// ---------------------------------------------------------------------------

type insertion struct {
	after int // 0-based index of the line to insert after
	seq   int
	lines []string
}

// InsertMissing splices the missing keys into the target file's text,
// at positions congruent with where the keys sit in the source file.
// values maps each key to the text to insert (usually the translation);
// keys absent from values are skipped. The bool result is false when
// splicing is impossible (the target has no structural parse) and the
// caller should fall back to a full rebuild.
func InsertMissing(target, source *File, values map[string]string, missing []string) (string, bool) {
	if target.Tree == nil || source.Tree == nil {
		return "", false
	}

	unit := DetectIndent(target.raw)
	lines := strings.Split(target.raw, "\n")
	var inserts []insertion
	handled := make(map[string]bool)
	seq := 0

	for _, key := range missing {
		if handled[key] {
			continue
		}
		if _, ok := values[key]; !ok {
			continue
		}

		// Deepest ancestor scope that exists in the target.
		anchorPath, rest := deepestScope(target.Tree, key)
		tgtScope := scopeAt(target.Tree, anchorPath)
		srcScope := scopeAt(source.Tree, anchorPath)
		if tgtScope == nil || srcScope == nil {
			return "", false
		}

		head := rest[0]
		after := anchorLineFor(srcScope, tgtScope, head) - 1
		level := strings.Count(joinPath(anchorPath, head), ".") + 1

		var text []string
		if len(rest) == 1 {
			// Plain leaf insert.
			text = []string{strings.Repeat(unit, level) + FormatKey(head) + ": " + FormatValue(values[key]) + ","}
			handled[key] = true
		} else {
			// The whole subtree under head is absent: emit it as a
			// block from the source structure.
			rootPath := joinPath(anchorPath, head)
			sp := srcScope.Get(head)
			if sp == nil || sp.Kind != literal.KindObject {
				return "", false
			}
			text = buildSubtree(sp, rootPath, values, unit, level)
			if len(text) == 0 {
				continue
			}
			text[len(text)-1] += ","
			for _, e := range source.Entries {
				if e.Key == rootPath || strings.HasPrefix(e.Key, rootPath+".") {
					handled[e.Key] = true
				}
			}
		}

		// Comma discipline: the line we splice after must end with a
		// comma unless it is an opening brace.
		if after >= 0 && after < len(lines) {
			t := strings.TrimRight(lines[after], " \t")
			if !strings.HasSuffix(t, "{") && !strings.HasSuffix(t, ",") && strings.TrimSpace(t) != "" {
				lines[after] = t + ","
			}
		}

		inserts = append(inserts, insertion{after: after, seq: seq, lines: text})
		seq++
	}

	if len(inserts) == 0 {
		return target.raw, true
	}

	// Apply bottom-up so earlier anchors stay valid; at the same anchor,
	// later insertions go in first so source order is preserved.
	sort.Slice(inserts, func(i, j int) bool {
		if inserts[i].after != inserts[j].after {
			return inserts[i].after > inserts[j].after
		}
		return inserts[i].seq > inserts[j].seq
	})
	for _, ins := range inserts {
		at := ins.after + 1
		if at > len(lines) {
			at = len(lines)
		}
		lines = append(lines[:at], append(append([]string{}, ins.lines...), lines[at:]...)...)
	}

	return CleanTrailingCommas(strings.Join(lines, "\n")), true
}

// buildSubtree renders the source pair's object subtree, keeping only
// leaves present in values, with comments carried along.
func buildSubtree(p *literal.Pair, path string, values map[string]string, unit string, level int) []string {
	pad := strings.Repeat(unit, level)
	var inner []string
	for _, child := range p.Obj.Pairs {
		childPath := path + "." + child.Key
		switch child.Kind {
		case literal.KindString:
			v, ok := values[childPath]
			if !ok {
				continue
			}
			for _, c := range child.Comments {
				inner = append(inner, pad+unit+"// "+c)
			}
			inner = append(inner, pad+unit+FormatKey(child.Key)+": "+FormatValue(v)+",")
		case literal.KindObject:
			sub := buildSubtree(child, childPath, values, unit, level+1)
			inner = append(inner, sub...)
		}
	}
	if len(inner) == 0 {
		return nil
	}
	// Strip the comma from the last inner line; the caller decides the
	// block's own trailing comma.
	inner[len(inner)-1] = strings.TrimSuffix(inner[len(inner)-1], ",")

	var out []string
	for _, c := range p.Comments {
		out = append(out, pad+"// "+c)
	}
	out = append(out, pad+FormatKey(p.Key)+": {")
	out = append(out, inner...)
	out = append(out, pad+"}")
	return out
}

// deepestScope walks key's ancestor chain and returns the deepest path
// that exists as an object scope in tree, plus the remaining segments.
func deepestScope(tree *literal.Object, key string) (string, []string) {
	segs := strings.Split(key, ".")
	cur := tree
	for i, seg := range segs {
		p := cur.Get(seg)
		if p == nil || p.Kind != literal.KindObject {
			return strings.Join(segs[:i], "."), segs[i:]
		}
		cur = p.Obj
	}
	// The full key already exists as a scope; treat the leaf segment
	// as the remainder (shouldn't happen for missing leaf keys).
	return strings.Join(segs[:len(segs)-1], "."), segs[len(segs)-1:]
}

// scopeAt navigates tree to the object at path ("" is the root).
func scopeAt(tree *literal.Object, path string) *literal.Object {
	if path == "" {
		return tree
	}
	cur := tree
	for _, seg := range strings.Split(path, ".") {
		p := cur.Get(seg)
		if p == nil || p.Kind != literal.KindObject {
			return nil
		}
		cur = p.Obj
	}
	return cur
}

// anchorLineFor returns the 1-based target line after which a new
// entry for key should be inserted: the end of the last source-order
// sibling preceding key that exists in the target scope, or the
// scope's opening brace line when none do.
func anchorLineFor(srcScope, tgtScope *literal.Object, key string) int {
	last := tgtScope.Line
	for _, sp := range srcScope.Pairs {
		if sp.Key == key {
			break
		}
		tp := tgtScope.Get(sp.Key)
		if tp == nil {
			continue
		}
		if tp.Kind == literal.KindObject && tp.Obj.EndLine > 0 {
			last = tp.Obj.EndLine
		} else {
			last = tp.Line
		}
	}
	return last
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
