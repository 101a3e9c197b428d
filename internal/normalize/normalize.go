package normalize

import (
	"net/url"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Ellipsis marks a value cut by Truncate.
const Ellipsis = "..."

// Truncate limits s to maxChars runes. A cut value keeps its prefix and ends
// in Ellipsis, and the result including the marker still fits maxChars.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}

	keep := maxChars - len(Ellipsis)
	if keep <= 0 {
		return Ellipsis[:maxChars]
	}

	runes := []rune(s)
	return string(runes[:keep]) + Ellipsis
}

// TruncateUTF16 is Truncate measured in UTF-16 code units, the unit of
// NVARCHAR column lengths. Characters outside the BMP count as two.
func TruncateUTF16(s string, maxUnits int) string {
	if maxUnits <= 0 {
		return ""
	}
	if utf16Len(s) <= maxUnits {
		return s
	}

	keep := maxUnits - len(Ellipsis)
	if keep <= 0 {
		return Ellipsis[:maxUnits]
	}

	var b strings.Builder
	units := 0
	for _, r := range s {
		w := max(utf16.RuneLen(r), 1)
		if units+w > keep {
			break
		}
		b.WriteRune(r)
		units += w
	}
	return b.String() + Ellipsis
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += max(utf16.RuneLen(r), 1)
	}
	return n
}

// CanonicalURL resolves href against base and drops the fragment. Absolute
// hrefs are kept as they are apart from the fragment; unparsable input is
// returned trimmed.
func CanonicalURL(base, href string) string {
	href = strings.TrimSpace(href)

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	ref.Fragment = ""
	ref.RawFragment = ""

	if ref.IsAbs() {
		return ref.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return baseURL.ResolveReference(ref).String()
}
