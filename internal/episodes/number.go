package episodes

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Strategy extracts an episode number from a filename. arc is the detected
// arc name and may be empty.
type Strategy func(name, arc string) (int, bool)

var twoDigitPattern = regexp.MustCompile(`(\d{2})`)

// ArcToken matches the arc name followed by whitespace and digits,
// case-insensitively: "Jaya 04" yields 4 for arc "Jaya".
func ArcToken(name, arc string) (int, bool) {
	arc = strings.TrimSpace(arc)
	if arc == "" {
		return 0, false
	}
	pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(arc) + `\s+(\d+)`)
	if err != nil {
		return 0, false
	}
	return firstNumber(pattern, name)
}

// FirstTwoDigits matches the first run of two digits anywhere in the name.
func FirstTwoDigits(name, _ string) (int, bool) {
	return firstNumber(twoDigitPattern, name)
}

// DefaultStrategies is the matching order used when none is configured.
var DefaultStrategies = []Strategy{ArcToken, FirstTwoDigits}

// Number runs strategies in order against name and returns the first hit.
func Number(name, arc string, strategies []Strategy) (int, bool) {
	name = Normalize(name)
	arc = Normalize(arc)
	for _, strategy := range strategies {
		if n, ok := strategy(name, arc); ok {
			return n, true
		}
	}
	return 0, false
}

// Normalize returns s in Unicode normalization form C.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// DetectArc derives the arc name from a release filename of the form
// "[<tag>][<n>-<m>] <Arc Name> <nn> [...". It returns "" when the name does
// not follow the convention.
func DetectArc(name, releaseTag string) string {
	if strings.TrimSpace(releaseTag) == "" {
		return ""
	}
	pattern := regexp.MustCompile(`\[` + regexp.QuoteMeta(releaseTag) + `\]\[\d+-\d+\]\s+(.+?)\s+\d+\s+\[`)
	m := pattern.FindStringSubmatch(Normalize(name))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// FormatNumber renders an episode number for reports.
func FormatNumber(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func firstNumber(pattern *regexp.Regexp, name string) (int, bool) {
	m := pattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
