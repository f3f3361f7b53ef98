// Package literal implements parsing of the restricted object-literal
// dialect used by hand-authored error-code and locale files:
//
//	export default {
//	    // navigation
//	    nav: {
//	        "home": 'Home',
//	        title: `He said "hi"`,
//	    },
//	}
//
// The grammar covers quoted and bare keys, single/double/backtick-quoted
// string values, nested braces, trailing commas, and line/block comments.
// Parsing is a tagged-token scanner plus a recursive-descent parser —
// file text is never evaluated as code.
package literal

import (
	"strings"
	"unicode"
)

// TokenKind tags a scanned token.
type TokenKind int

const (
	// TokenEOF marks the end of input.
	TokenEOF TokenKind = iota
	// TokenLBrace is "{".
	TokenLBrace
	// TokenRBrace is "}".
	TokenRBrace
	// TokenLBracket is "[".
	TokenLBracket
	// TokenRBracket is "]".
	TokenRBracket
	// TokenColon is ":".
	TokenColon
	// TokenComma is ",".
	TokenComma
	// TokenString is a quoted string; Quote records the delimiter.
	TokenString
	// TokenIdent is a bare identifier, number, or keyword.
	TokenIdent
	// TokenComment is a // or /* */ comment; Text holds the trimmed body.
	TokenComment
	// TokenOther is any byte the grammar does not know (=, ;, etc.).
	TokenOther
)

// Token is one scanned lexical unit.
type Token struct {
	Kind TokenKind
	// Text is the decoded token text (unescaped for strings,
	// trimmed for comments).
	Text string
	// Quote is the original string delimiter: '"', '\'' or '`'.
	Quote byte
	// Line is the 1-based line the token starts on.
	Line int
}

// Scanner walks input text and produces tokens.
type Scanner struct {
	src  string
	pos  int
	line int
}

// NewScanner creates a scanner over src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Next returns the next token. Comments are returned as tokens so the
// parser can attach them to the key that follows.
func (s *Scanner) Next() Token {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return Token{Kind: TokenEOF, Line: s.line}
	}

	startLine := s.line
	c := s.src[s.pos]

	switch c {
	case '{':
		s.pos++
		return Token{Kind: TokenLBrace, Text: "{", Line: startLine}
	case '}':
		s.pos++
		return Token{Kind: TokenRBrace, Text: "}", Line: startLine}
	case '[':
		s.pos++
		return Token{Kind: TokenLBracket, Text: "[", Line: startLine}
	case ']':
		s.pos++
		return Token{Kind: TokenRBracket, Text: "]", Line: startLine}
	case ':':
		s.pos++
		return Token{Kind: TokenColon, Text: ":", Line: startLine}
	case ',':
		s.pos++
		return Token{Kind: TokenComma, Text: ",", Line: startLine}
	case '"', '\'', '`':
		return s.scanString(c)
	case '/':
		if s.pos+1 < len(s.src) {
			switch s.src[s.pos+1] {
			case '/':
				return s.scanLineComment()
			case '*':
				return s.scanBlockComment()
			}
		}
		s.pos++
		return Token{Kind: TokenOther, Text: "/", Line: startLine}
	}

	if isIdentByte(c) {
		return s.scanIdent()
	}

	s.pos++
	return Token{Kind: TokenOther, Text: string(c), Line: startLine}
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' {
			s.line++
			s.pos++
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' {
			s.pos++
			continue
		}
		break
	}
}

// scanString reads a quoted string, decoding the common escape
// sequences. Backtick strings may span lines; their raw text is kept
// (only the delimiter is dropped).
func (s *Scanner) scanString(quote byte) Token {
	startLine := s.line
	s.pos++ // opening quote

	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == quote {
			s.pos++
			return Token{Kind: TokenString, Text: b.String(), Quote: quote, Line: startLine}
		}
		if c == '\n' {
			s.line++
			if quote != '`' {
				// Unterminated single-line string: stop at the
				// newline so the rest of the file still scans.
				return Token{Kind: TokenString, Text: b.String(), Quote: quote, Line: startLine}
			}
			b.WriteByte(c)
			s.pos++
			continue
		}
		if c == '\\' && s.pos+1 < len(s.src) {
			next := s.src[s.pos+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'', '`':
				b.WriteByte(next)
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			s.pos += 2
			continue
		}
		b.WriteByte(c)
		s.pos++
	}
	// Unterminated string at EOF.
	return Token{Kind: TokenString, Text: b.String(), Quote: quote, Line: startLine}
}

func (s *Scanner) scanLineComment() Token {
	startLine := s.line
	s.pos += 2 // "//"
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
	return Token{Kind: TokenComment, Text: strings.TrimSpace(s.src[start:s.pos]), Line: startLine}
}

func (s *Scanner) scanBlockComment() Token {
	startLine := s.line
	s.pos += 2 // "/*"
	start := s.pos
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
			text := strings.TrimSpace(s.src[start:s.pos])
			s.pos += 2
			return Token{Kind: TokenComment, Text: text, Line: startLine}
		}
		if s.src[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
	return Token{Kind: TokenComment, Text: strings.TrimSpace(s.src[start:]), Line: startLine}
}

func (s *Scanner) scanIdent() Token {
	startLine := s.line
	start := s.pos
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	return Token{Kind: TokenIdent, Text: s.src[start:s.pos], Line: startLine}
}

// isIdentByte reports whether c can appear in a bare key, number, or
// keyword. Dots and dashes are allowed so keys like "a.b-c" scan as one
// token; unicode letters are handled byte-wise (any high byte is
// accepted, which is enough for UTF-8 identifiers).
func isIdentByte(c byte) bool {
	if c >= 0x80 {
		return true
	}
	return unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) ||
		c == '_' || c == '$' || c == '.' || c == '-' || c == '+'
}
