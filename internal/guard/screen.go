package guard

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// hiddenRunes are characters that render invisibly or reorder displayed
// text. Any of them can make a query read differently to a human than to
// the pattern rules, so all of them reject.
var hiddenRunes = map[rune]string{
	'\u200B': "zero width space",
	'\u200C': "zero width non-joiner",
	'\u200D': "zero width joiner",
	'\u200E': "left-to-right mark",
	'\u200F': "right-to-left mark",
	'\u2060': "word joiner",
	'\u180E': "mongolian vowel separator",
	'\uFEFF': "byte order mark",
	'\u202A': "left-to-right embedding",
	'\u202B': "right-to-left embedding",
	'\u202C': "pop directional formatting",
	'\u202D': "left-to-right override",
	'\u202E': "right-to-left override",
	'\u2066': "left-to-right isolate",
	'\u2067': "right-to-left isolate",
	'\u2068': "first strong isolate",
	'\u2069': "pop directional isolate",
}

// confusables maps Cyrillic and Greek letters to the Latin letter they
// imitate. The sanitized text substitutes the Latin form so a disguised
// keyword still matches the pattern rules.
var confusables = map[rune]rune{
	// Cyrillic
	'а': 'a', 'А': 'A', 'В': 'B', 'с': 'c', 'С': 'C',
	'е': 'e', 'Е': 'E', 'Н': 'H', 'і': 'i', 'І': 'I',
	'К': 'K', 'М': 'M', 'о': 'o', 'О': 'O', 'р': 'p',
	'Р': 'P', 'Т': 'T', 'х': 'x', 'Х': 'X', 'у': 'y',
	'У': 'Y',
	// Greek
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'ο': 'o',
	'Ρ': 'P', 'Τ': 'T', 'Χ': 'X', 'Υ': 'Y', 'Ζ': 'Z',
}

// screenQuery inspects a query for character-level smuggling before any
// pattern rule runs. It returns one aggregated signal per finding kind and
// the sanitized text the pattern rules must match against: hidden and
// control characters stripped, confusables replaced by their Latin forms.
func screenQuery(input string) ([]Signal, string) {
	var sanitized strings.Builder
	hidden := make(map[rune]bool)
	controls := make(map[rune]bool)
	swapped := make(map[rune]bool)
	tagChars := 0
	invalid := false

	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		i += size

		switch {
		case r == utf8.RuneError && size == 1:
			invalid = true
		case hiddenRunes[r] != "":
			hidden[r] = true
		case r >= 0xE0001 && r <= 0xE007F:
			// Tag characters spell out text invisible in most renderers.
			tagChars++
		case bannedControl(r):
			controls[r] = true
		case confusables[r] != 0:
			swapped[r] = true
			sanitized.WriteRune(confusables[r])
		default:
			sanitized.WriteRune(r)
		}
	}

	var signals []Signal
	if invalid {
		signals = append(signals, smugglingSignal("Query contains invalid UTF-8 bytes"))
	}
	if len(hidden) > 0 {
		signals = append(signals, smugglingSignal(
			"Query contains hidden characters: "+describeHidden(hidden)))
	}
	if tagChars > 0 {
		signals = append(signals, smugglingSignal(
			fmt.Sprintf("Query contains %d Unicode tag characters that can carry invisible text", tagChars)))
	}
	if len(controls) > 0 {
		signals = append(signals, smugglingSignal(
			"Query contains control characters: "+describeRunes(controls)))
	}
	if len(swapped) > 0 {
		signals = append(signals, Signal{
			ID:          "confusable_script",
			Category:    "obfuscation",
			Severity:    "audit",
			Confidence:  0.60,
			Description: "Query mixes in Latin look-alike letters: " + describeRunes(swapped),
		})
	}
	return signals, sanitized.String()
}

func smugglingSignal(description string) Signal {
	return Signal{
		ID:          "unicode_smuggling",
		Category:    "obfuscation",
		Severity:    "block",
		Confidence:  0.90,
		Description: description,
	}
}

// bannedControl reports control characters other than tab, newline, and
// carriage return, covering C0, DEL, and C1.
func bannedControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r <= 0x1F || (r >= 0x7F && r <= 0x9F)
}

func describeHidden(set map[rune]bool) string {
	parts := make([]string, 0, len(set))
	for r := range set {
		parts = append(parts, fmt.Sprintf("%s (U+%04X)", hiddenRunes[r], r))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func describeRunes(set map[rune]bool) string {
	parts := make([]string, 0, len(set))
	for r := range set {
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
