package location

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	LabelUndetermined        = "Не определено"
	LabelAddressUndetermined = "Адрес не определен"

	regionSuffix = " область"
)

// Scan order matters: the first hit wins.
var (
	regions = []string{"Брестская", "Витебская", "Гомельская", "Гродненская", "Минская", "Могилёвская"}
	cities  = []string{"Минск", "Витебск", "Могилев", "Гомель", "Брест", "Гродно"}
)

// Resolve maps a free-text address to a city or region label. A city match
// is preferred over a region match. Only an empty address counts as missing;
// whitespace is an address that matches nothing.
func Resolve(address string) string {
	if address == "" {
		return LabelAddressUndetermined
	}

	region := FindRegion(address)
	city := FindCity(address)

	switch {
	case city != "":
		return city
	case region != "":
		return region + regionSuffix
	default:
		return LabelUndetermined
	}
}

func FindRegion(address string) string {
	for _, region := range regions {
		if strings.Contains(address, region) {
			return region
		}
	}

	return ""
}

// FindCity only accepts whole-word occurrences, otherwise "Брест" would match
// inside "Брестская".
func FindCity(address string) string {
	for _, city := range cities {
		if containsWord(address, city) {
			return city
		}
	}

	return ""
}

func containsWord(s, word string) bool {
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			return false
		}

		start := offset + i
		end := start + len(word)

		if !letterBefore(s, start) && !letterAfter(s, end) {
			return true
		}

		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}

	return false
}

func letterBefore(s string, i int) bool {
	if i == 0 {
		return false
	}

	r, _ := utf8.DecodeLastRuneInString(s[:i])

	return unicode.IsLetter(r)
}

func letterAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}

	r, _ := utf8.DecodeRuneInString(s[i:])

	return unicode.IsLetter(r)
}
