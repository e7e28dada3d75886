// Package normalizers provides string normalization functions for customer matching
package normalizers

import (
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("nphone", NormalizePhone)
	Register("digits_only", DigitsOnly)
	Register("fold_accents", FoldAccents)
	Register("ncustomer", CustomerName)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// NormalizePhone removes all non-digit characters from a phone number
func NormalizePhone(s string) string {
	return DigitsOnly(s)
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// accentFold maps the accented letters that actually occur in the customer
// exports to their base letters. This is a fixed table on purpose: a full
// Unicode decomposition would also rewrite characters the matcher should
// leave alone.
var accentFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c',
	'ñ': 'n',
}

// FoldAccents replaces accented lowercase letters with their base letters.
// Input should already be lowercased.
func FoldAccents(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if base, ok := accentFold[r]; ok {
			result.WriteRune(base)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// CustomerName normalizes a customer name for matching
// - Lowercase and trim
// - Fold accented letters to their base letters
// - Drop everything except letters, digits and spaces
// - Collapse whitespace runs to a single space
//
// Applying it twice yields the same result as applying it once.
func CustomerName(s string) string {
	s = FoldAccents(strings.ToLower(strings.TrimSpace(s)))

	var result strings.Builder
	result.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			result.WriteRune(r)
			prevSpace = false
		} else if unicode.IsSpace(r) {
			if !prevSpace && result.Len() > 0 {
				result.WriteRune(' ')
				prevSpace = true
			}
		}
	}

	return strings.TrimSpace(result.String())
}
