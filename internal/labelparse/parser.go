// Package labelparse turns raw, multi-language OCR text of a printed
// nutrition facts panel into a partially-filled nutrition estimate via
// keyword and unit pattern matching. All values are rounded to integers at
// parse time; that lossy simplification is part of the data model.
package labelparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

// kJPerKcal converts kilojoule label values to kilocalories.
const kJPerKcal = 4.184

// saltToSodiumMg converts grams of salt to milligrams of sodium
// (NaCl is ~40% sodium by weight).
const saltToSodiumMg = 400

// maxSeparatorNonDigits caps the keyword-to-number distance: colons and
// spaces are fine, "per 100g" fragments and unrelated trailing text are not.
// Digits between keyword and value (a kJ figure before the kcal one) do not
// count against the cap.
const maxSeparatorNonDigits = 15

// valueRe extracts the first number after a keyword, allowing at most
// maxSeparatorNonDigits characters of separator and capturing a trailing
// unit word.
var valueRe = regexp.MustCompile(`^\D{0,15}?(\d+(?:[.,]\d+)?)\s*([a-zµμ]*)`)

// Parse extracts nutrition values from newline-joined recognized text lines.
// Matching is case-insensitive; per line the first matching pattern wins per
// field and an already-populated field is never overwritten. The returned
// estimate may be empty; callers rank candidates by FieldCount.
func Parse(text string) *nutrition.Estimate {
	est := &nutrition.Estimate{}
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if strings.TrimSpace(lower) == "" {
			continue
		}
		parseEnergy(lower, est)
		parseGrams(lower, est)
		parseSodium(lower, est)
		parseMicros(lower, est)
	}
	est.Clamp()
	return est
}

// valueAfter extracts (number, unit) from the text following a keyword.
func valueAfter(window string) (float64, string, bool) {
	m := valueRe.FindStringSubmatch(window)
	if m == nil {
		return 0, "", false
	}
	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, "", false
	}
	return num, m[2], true
}

func roundInt(v float64) int { return int(math.Round(v)) }

func isGramUnit(unit string) bool {
	switch unit {
	case "g", "gr", "gram", "grams", "gramm", "grammes", "gramos", "grammi":
		return true
	}
	return false
}

func isMicrogramUnit(unit string) bool {
	switch unit {
	case "µg", "μg", "mcg", "ug":
		return true
	}
	return false
}

// parseEnergy fills Calories from an energy row. An explicitly kcal-united
// value anywhere after the keyword wins; otherwise the first nearby number
// is taken as kcal when unitless and converted when kJ-united.
func parseEnergy(lower string, est *nutrition.Estimate) {
	if est.Calories != nil {
		return
	}
	loc := energyKeywordRe.FindStringIndex(lower)
	if loc == nil {
		return
	}
	window := lower[loc[1]:]

	if m := kcalValueRe.FindStringSubmatchIndex(window); m != nil &&
		nonDigitCount(window[:m[2]]) <= maxSeparatorNonDigits {
		raw := strings.ReplaceAll(window[m[2]:m[3]], ",", ".")
		if num, err := strconv.ParseFloat(raw, 64); err == nil {
			est.Calories = nutrition.Int(roundInt(num))
			return
		}
	}
	num, unit, ok := valueAfter(window)
	if !ok {
		return
	}
	switch unit {
	case "", "cal":
		est.Calories = nutrition.Int(roundInt(num))
	case "kj":
		est.Calories = nutrition.Int(roundInt(num / kJPerKcal))
	}
}

// nonDigitCount counts the characters in s that are not ASCII digits.
func nonDigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			n++
		}
	}
	return n
}

// parseGrams fills every grams-valued field whose keyword matches the line
// and whose value carries a gram unit.
func parseGrams(lower string, est *nutrition.Estimate) {
	for _, f := range gramFields {
		if f.get(est) != nil {
			continue
		}
		loc := f.keyword.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		num, unit, ok := valueAfter(lower[loc[1]:])
		if !ok || !isGramUnit(unit) {
			continue
		}
		f.set(est, roundInt(num))
	}
}

// parseSodium prefers an explicit sodium milligram value and otherwise
// converts a salt-in-grams row.
func parseSodium(lower string, est *nutrition.Estimate) {
	if est.SodiumMg != nil {
		return
	}
	if loc := sodiumKeywordRe.FindStringIndex(lower); loc != nil {
		if num, unit, ok := valueAfter(lower[loc[1]:]); ok && unit == "mg" {
			est.SodiumMg = nutrition.Int(roundInt(num))
			return
		}
	}
	if loc := saltKeywordRe.FindStringIndex(lower); loc != nil {
		if num, unit, ok := valueAfter(lower[loc[1]:]); ok && isGramUnit(unit) {
			est.SodiumMg = nutrition.Int(roundInt(num * saltToSodiumMg))
		}
	}
}

// parseMicros fills vitamin and mineral fields, trying a milligram match
// first and falling back to a microgram value converted to milligrams.
func parseMicros(lower string, est *nutrition.Estimate) {
	for _, f := range microFields {
		if f.get(est) != nil {
			continue
		}
		loc := f.keyword.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		num, unit, ok := valueAfter(lower[loc[1]:])
		if !ok {
			continue
		}
		switch {
		case unit == "mg":
			f.set(est, roundInt(num))
		case isMicrogramUnit(unit):
			f.set(est, roundInt(num/1000))
		}
	}
}
