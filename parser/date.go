package parser

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
)

var (
	ordinalPattern = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)

	// embeddedPattern lifts a date-looking substring out of surrounding
	// prose when the whole string does not parse on its own.
	embeddedPattern = regexp.MustCompile(
		`(?i)\b(?:\d{4}-\d{1,2}-\d{1,2}` +
			`|\d{1,2}[/.]\d{1,2}[/.]\d{2,4}` +
			`|[a-z]{3,9}\.? \d{1,2},? ?\d{4}` +
			`|\d{1,2} [a-z]{3,9},? ?\d{4})`,
	)
)

// DateISO fuzzily parses a free-form date string and reports it as a
// calendar date in YYYY-MM-DD form. Surrounding non-date text and the
// usual format zoo are tolerated; anything unparseable reports false so
// a bad date never aborts acquisition.
func DateISO(raw string) (string, bool) {
	cleaned := ordinalPattern.ReplaceAllString(strings.TrimSpace(raw), "$1")
	if cleaned == "" {
		return "", false
	}

	if t, err := dateparse.ParseAny(cleaned); err == nil {
		return t.Format("2006-01-02"), true
	}

	if match := embeddedPattern.FindString(cleaned); match != "" {
		if t, err := dateparse.ParseAny(match); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	return "", false
}
