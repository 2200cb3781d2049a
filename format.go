package opuspdf

import (
	"strings"
	"unicode"
)

// ExtendedDateString returns d in EDTF level 0 (YYYY, YYYY-MM or YYYY-MM-DD),
// keeping only the precision that is known. Returns "" for a nil date.
func ExtendedDateString(d *Date) string {
	return d.String()
}

// PersonsString joins persons as "First Last, First Last".
// With shortenFirstNames, every first name is reduced to initials followed
// by a period, e.g. "Rachel K" becomes "R. K.". A missing first name yields
// the last name alone.
func PersonsString(persons []Person, shortenFirstNames bool) string {
	names := make([]string, 0, len(persons))
	for _, p := range persons {
		first := p.FirstName
		if shortenFirstNames {
			first = initials(first)
		}
		names = append(names, strings.TrimSpace(first+" "+p.LastName))
	}
	return strings.Join(names, ", ")
}

// initials keeps the first character of each word and appends a period
// unless one already follows.
func initials(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		if !isWordRune(runes[i]) {
			b.WriteRune(runes[i])
			continue
		}
		b.WriteRune(runes[i])
		j := i + 1
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		if j >= len(runes) || runes[j] != '.' {
			b.WriteByte('.')
		}
		i = j - 1
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
