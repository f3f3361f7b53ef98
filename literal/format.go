package literal

import "strings"

// QuoteKey renders a key for output. Keys are always double-quoted.
func QuoteKey(key string) string {
	return `"` + key + `"`
}

// QuoteValue renders a string value. Values are double-quoted unless
// they contain an embedded double quote, in which case a backtick
// delimiter is used instead of escaping (escaped quotes corrupt too
// easily under later hand edits). Embedded newlines become literal \n.
func QuoteValue(v string) string {
	if strings.Contains(v, `"`) {
		return "`" + strings.ReplaceAll(v, "\n", `\n`) + "`"
	}
	s := strings.ReplaceAll(v, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
