package casing

import (
	"strings"
	"unicode"
)

// ToConstantCase converts an identifier to SCREAMING_SNAKE_CASE.
//
// An underscore is inserted at every word boundary that is not at the start
// of the identifier. A boundary is an uppercase letter that follows a
// lowercase letter or digit, or the last letter of an uppercase run that is
// followed by a lowercase letter. An acronym therefore stays one word:
// "USDToken" becomes "USD_TOKEN", not "U_S_D_TOKEN".
func ToConstantCase(name string) string {
	if name == "" {
		return ""
	}

	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				b.WriteByte('_')
			case unicode.IsUpper(prev) && nextLower:
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}

	return b.String()
}

// ToLowerCamelCase lower-cases the first character and leaves the rest as is.
func ToLowerCamelCase(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ToPascalCase joins whitespace, '-' or '_' separated words, upper-casing the
// first letter of each word. The rest of every word is kept.
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		result.WriteString(string(runes))
	}
	return result.String()
}

// IsIdentifier reports whether s is a valid Solidity identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' && r != '$' {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return false
		}
	}
	return true
}
