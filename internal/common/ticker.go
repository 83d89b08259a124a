// Package common provides shared utilities across the application.
package common

import (
	"fmt"
	"regexp"
	"strings"
)

// tickerPattern matches valid US equity symbols: 1-5 uppercase letters.
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// NormalizeTicker trims, upper-cases, and validates a single ticker symbol.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("invalid ticker symbol %q: must be 1-5 uppercase letters", raw)
	}
	return ticker, nil
}

// NormalizeTickers validates a ticker list, preserving request order and
// dropping duplicates. Returns an error on the first invalid symbol.
func NormalizeTickers(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	result := make([]string, 0, len(raw))
	for _, r := range raw {
		ticker, err := NormalizeTicker(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[ticker]; ok {
			continue
		}
		seen[ticker] = struct{}{}
		result = append(result, ticker)
	}
	return result, nil
}

// TickerHash returns a small deterministic hash of a ticker, used by the
// synthetic providers to vary output per symbol without wall-clock input.
func TickerHash(ticker string) int {
	sum := 0
	for _, c := range ticker {
		sum += int(c)
	}
	return sum
}
