package literal

import (
	"fmt"
	"regexp"
	"strings"
)

// ValueKind tags the value of a key-value pair.
type ValueKind int

const (
	// KindString is a string-valued pair (the only translatable kind).
	KindString ValueKind = iota
	// KindObject is a nested object.
	KindObject
	// KindOther is a number, boolean, null, or array — kept so the
	// surrounding structure survives a rebuild, never translated.
	KindOther
)

// Pair is one key-value entry of an object literal.
type Pair struct {
	// Key is the decoded key text.
	Key string
	// KeyQuote is the original key delimiter, 0 for bare keys.
	KeyQuote byte
	// Line is the 1-based line the key appears on.
	Line int
	// Comments are the comment lines immediately preceding the key.
	Comments []string

	Kind ValueKind
	// Str holds the value for KindString.
	Str string
	// StrQuote is the original value delimiter for KindString.
	StrQuote byte
	// Obj holds the value for KindObject.
	Obj *Object
	// Raw holds the source-ish text for KindOther.
	Raw string
}

// Object is an ordered object literal.
type Object struct {
	Pairs []*Pair
	// TrailingComments are comments after the last pair, before "}".
	TrailingComments []string
	// Line and EndLine are the 1-based lines of "{" and "}".
	Line    int
	EndLine int
}

// Get returns the pair for key, or nil.
func (o *Object) Get(key string) *Pair {
	for _, p := range o.Pairs {
		if p.Key == key {
			return p
		}
	}
	return nil
}

// Parse parses content as a single object literal, skipping any
// "export default" / "module.exports =" / "const x =" wrapper before
// the first opening brace. It returns an error when no well-formed
// object can be read; callers that must never hard-fail combine this
// with ScanPairs.
func Parse(content string) (*Object, error) {
	p := &parser{s: NewScanner(content)}
	p.next()

	// Skip wrapper tokens until the first "{".
	for p.tok.Kind != TokenLBrace {
		if p.tok.Kind == TokenEOF {
			return nil, fmt.Errorf("no object literal found")
		}
		p.next()
	}

	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	return obj, nil
}

type parser struct {
	s   *Scanner
	tok Token
	// pending collects comments seen since the last pair.
	pending []string
}

// next advances to the next non-comment token, accumulating comments.
func (p *parser) next() {
	for {
		p.tok = p.s.Next()
		if p.tok.Kind == TokenComment {
			p.pending = append(p.pending, p.tok.Text)
			continue
		}
		return
	}
}

func (p *parser) takeComments() []string {
	c := p.pending
	p.pending = nil
	return c
}

// parseObject parses "{ pair, pair, ... }" with p.tok on the opening
// brace, leaving p.tok on the token after the closing brace.
func (p *parser) parseObject() (*Object, error) {
	obj := &Object{Line: p.tok.Line}
	p.next() // consume "{"

	for {
		switch p.tok.Kind {
		case TokenRBrace:
			obj.TrailingComments = p.takeComments()
			obj.EndLine = p.tok.Line
			p.next()
			return obj, nil
		case TokenEOF:
			return nil, fmt.Errorf("line %d: unexpected end of input in object", p.tok.Line)
		case TokenComma:
			// Stray or trailing comma.
			p.next()
			continue
		}

		pair, err := p.parsePair()
		if err != nil {
			return nil, err
		}
		obj.Pairs = append(obj.Pairs, pair)
	}
}

func (p *parser) parsePair() (*Pair, error) {
	if p.tok.Kind != TokenString && p.tok.Kind != TokenIdent {
		return nil, fmt.Errorf("line %d: expected key, got %q", p.tok.Line, p.tok.Text)
	}

	pair := &Pair{
		Key:      p.tok.Text,
		KeyQuote: p.tok.Quote,
		Line:     p.tok.Line,
		Comments: p.takeComments(),
	}
	p.next()

	if p.tok.Kind != TokenColon {
		return nil, fmt.Errorf("line %d: expected ':' after key %q", p.tok.Line, pair.Key)
	}
	p.next()

	switch p.tok.Kind {
	case TokenString:
		pair.Kind = KindString
		pair.Str = p.tok.Text
		pair.StrQuote = p.tok.Quote
		p.next()
	case TokenLBrace:
		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		pair.Kind = KindObject
		pair.Obj = obj
	case TokenLBracket:
		raw, err := p.skipArray()
		if err != nil {
			return nil, err
		}
		pair.Kind = KindOther
		pair.Raw = raw
	case TokenIdent:
		pair.Kind = KindOther
		pair.Raw = p.tok.Text
		p.next()
	default:
		return nil, fmt.Errorf("line %d: unexpected value for key %q", p.tok.Line, pair.Key)
	}

	if p.tok.Kind == TokenComma {
		p.next()
	}
	return pair, nil
}

// skipArray consumes a balanced [...] value, returning a flattened
// textual form. Array contents are opaque to the reconciliation logic.
func (p *parser) skipArray() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		switch p.tok.Kind {
		case TokenEOF:
			return "", fmt.Errorf("line %d: unexpected end of input in array", p.tok.Line)
		case TokenLBracket:
			depth++
			b.WriteByte('[')
		case TokenRBracket:
			depth--
			b.WriteByte(']')
			if depth == 0 {
				p.next()
				return b.String(), nil
			}
		case TokenString:
			b.WriteString(strconvQuote(p.tok.Text))
		default:
			b.WriteString(p.tok.Text)
		}
		p.next()
	}
}

func strconvQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

// ---------------------------------------------------------------------------
// Regex fallback for files too malformed to parse structurally
// ---------------------------------------------------------------------------

// pairPattern matches 'key': 'value', "key": "value" and `key`: `value`
// lines, with any mix of the three quote styles.
var pairPattern = regexp.MustCompile("([\"'`])((?:\\\\.|[^\\\\])*?)([\"'`])\\s*:\\s*([\"'`])((?:\\\\.|[^\\\\])*?)([\"'`])")

// ScanPairs regex-scans raw text for quoted key/value pairs. It is the
// last-resort strategy: structure and nesting are lost, but simple flat
// entries are still recovered from otherwise unparseable files.
func ScanPairs(content string) []*Pair {
	var pairs []*Pair
	line := 1
	for _, rawLine := range strings.Split(content, "\n") {
		for _, m := range pairPattern.FindAllStringSubmatch(rawLine, -1) {
			// Opening and closing delimiters must agree.
			if m[1] != m[3] || m[4] != m[6] {
				continue
			}
			pairs = append(pairs, &Pair{
				Key:      Unescape(m[2]),
				KeyQuote: m[1][0],
				Line:     line,
				Kind:     KindString,
				Str:      Unescape(m[5]),
				StrQuote: m[4][0],
			})
		}
		line++
	}
	return pairs
}

// Unescape decodes the common backslash escapes of object-literal
// strings; unknown escapes drop the backslash.
func Unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i+1])
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
