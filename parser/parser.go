// Package parser recovers typed fields from semi-structured listing
// text and loosely-typed API scalars. Every extractor is fallible:
// failure is reported through the second return value (or a nil
// pointer), never an error, and callers map it to a null field.
package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Price recovers a price from a blob of listing text: currency symbols
// are stripped, the blob is split on whitespace, and the first token
// containing a decimal point that parses as a float wins.
//
// The first-match policy is the contract, imprecision included:
// "Sale $19.99 was $24.99" yields 19.99, and "Buy 2.5 for $10" yields
// 2.5. Do not make it smarter; the stored data would silently change.
func Price(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(text, "$", " ")
	for _, token := range strings.Fields(cleaned) {
		if !strings.Contains(token, ".") {
			continue
		}
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}

// Rating coerces a GraphQL rating scalar, which may arrive as a number,
// a numeric string, or null.
func Rating(raw json.RawMessage) (float64, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err == nil {
			return value, true
		}
	}
	return 0, false
}

// Scalar renders a loosely-typed JSON scalar as its text form: strings
// are unquoted, numbers and booleans keep their literal text, and null
// or absent values become "".
func Scalar(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return trimmed
}

// Stars counts the rating icons inside a card's ".rating" container.
// It returns nil when the card has no rating container and a pointer to
// zero when the container is present but holds no icons.
func Stars(card *goquery.Selection) *int {
	container := card.Find(".rating")
	if container.Length() == 0 {
		return nil
	}
	count := container.Find("svg").Length()
	return &count
}

// CollapseSpace trims a string and folds internal whitespace runs,
// newlines included, into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
