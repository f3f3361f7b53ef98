// Package langcode normalizes language codes to the form the external
// translation service expects and provides display metadata for the CLI.
//
// The service accepts two-letter lowercase codes ("es") or RFC3066-like
// pairs ("zh-CN"). A few codes are special-cased because the service
// handles them inconsistently: Tagalog/Filipino and the Bengali variants.
package langcode

import "strings"

// Meta describes language display metadata.
type Meta struct {
	Name string
}

// registry contains canonical language metadata. Locale variants fall
// back to the base language in Resolve().
var registry = map[string]Meta{
	"ar":    {Name: "العربية"},
	"bn":    {Name: "বাংলা"},
	"cs":    {Name: "Čeština"},
	"de":    {Name: "Deutsch"},
	"en":    {Name: "English"},
	"en-GB": {Name: "English (UK)"},
	"en-US": {Name: "English (US)"},
	"es":    {Name: "Español"},
	"fil":   {Name: "Filipino"},
	"fr":    {Name: "Français"},
	"hi":    {Name: "हिन्दी"},
	"id":    {Name: "Bahasa Indonesia"},
	"it":    {Name: "Italiano"},
	"ja":    {Name: "日本語"},
	"ko":    {Name: "한국어"},
	"ms":    {Name: "Bahasa Melayu"},
	"nl":    {Name: "Nederlands"},
	"pl":    {Name: "Polski"},
	"pt":    {Name: "Português"},
	"pt-BR": {Name: "Português (Brasil)"},
	"ru":    {Name: "Русский"},
	"th":    {Name: "ไทย"},
	"tl":    {Name: "Tagalog"},
	"tr":    {Name: "Türkçe"},
	"uk":    {Name: "Українська"},
	"vi":    {Name: "Tiếng Việt"},
	"zh":    {Name: "中文"},
	"zh-CN": {Name: "简体中文"},
	"zh-TW": {Name: "繁體中文"},
}

// canonicalize lowercases the base subtag and uppercases the region,
// accepting both "pt_BR" and "pt-BR" spellings.
func canonicalize(code string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Normalize converts a language code to the external service's format.
// The zero value of a code ("") normalizes to "".
func Normalize(code string) string {
	c := canonicalize(code)

	switch c {
	// The service knows Tagalog but not the "fil" macro code.
	case "fil", "fil-PH", "tl-PH":
		return "tl"
	// Bengali regional variants are only accepted as the base code.
	case "bn-BD", "bn-IN":
		return "bn"
	}

	// Keep known region pairs; collapse unknown regions to the base.
	if strings.Contains(c, "-") {
		if _, ok := registry[c]; ok {
			return c
		}
		return strings.SplitN(c, "-", 2)[0]
	}
	return c
}

// Resolve returns best-effort display metadata for a language code,
// supporting variants like pt_BR, pt-BR, and base-language fallbacks.
func Resolve(code string) Meta {
	if m, ok := registry[code]; ok {
		return m
	}
	c := canonicalize(code)
	if m, ok := registry[c]; ok {
		return m
	}
	if parts := strings.SplitN(c, "-", 2); len(parts) == 2 {
		if m, ok := registry[parts[0]]; ok {
			return m
		}
	}
	return Meta{Name: code}
}
