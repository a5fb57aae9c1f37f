package dataprocessing

import (
	"math"
	"strings"
	"time"
	"unicode"

	"crpdash/pkg/contracts/domain"
)

// dobLayouts are tried in order against free-text dates of birth
var dobLayouts = []string{
	"2-1-2006",
	"2-1-06",
	"2006-1-2",
	"06-1-2",
}

// ParseAge resolves a date-of-birth cell into an age in whole years
// relative to today. It never fails: anything it cannot interpret yields
// domain.UnknownAge. Ages are not clamped, so a birth year after today's
// gives a negative age.
func ParseAge(cell domain.Cell, today time.Time) domain.Age {
	switch cell.Kind {
	case domain.CellText:
		return ageFromText(cell.Text, today)
	case domain.CellNumber:
		return ageFromNumber(cell.Number, today)
	case domain.CellDate:
		return ageFromDate(cell.Date, today)
	default:
		return domain.UnknownAge
	}
}

func ageFromText(s string, today time.Time) domain.Age {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", "-"))
	if s == "" {
		return domain.UnknownAge
	}

	if digits, ok := decimalDigits(s); ok {
		switch len(digits) {
		case 4:
			return domain.KnownAge(today.Year() - digitsValue(digits))
		case 5:
			return domain.KnownAge(today.Year() - pivotTwoDigitYear(digitsValue(digits[3:])))
		}
	}

	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ageFromDate(t, today)
		}
	}
	return domain.UnknownAge
}

func ageFromNumber(f float64, today time.Time) domain.Age {
	if math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return domain.UnknownAge
	}
	n := int(math.Trunc(f))
	switch {
	case n >= 1900 && n <= today.Year():
		return domain.KnownAge(today.Year() - n)
	case n >= 30 && n <= 99:
		return domain.KnownAge(today.Year() - pivotTwoDigitYear(n))
	}
	return domain.UnknownAge
}

func ageFromDate(birth, today time.Time) domain.Age {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return domain.KnownAge(age)
}

// pivotTwoDigitYear maps 31..99 to the 1900s and everything else to the 2000s
func pivotTwoDigitYear(d int) int {
	if d > 30 {
		return 1900 + d
	}
	return 2000 + d
}

// decimalDigits returns the values of s's runes when every one is a
// decimal digit in any script.
func decimalDigits(s string) ([]int, bool) {
	var out []int
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return nil, false
		}
		out = append(out, digitValue(r))
	}
	return out, len(out) > 0
}

// digitValue relies on every Nd run in the Unicode tables being whole
// sets of ten starting at zero.
func digitValue(r rune) int {
	for _, rg := range unicode.Digit.R16 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) % 10
		}
	}
	for _, rg := range unicode.Digit.R32 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) % 10
		}
	}
	return 0
}

func digitsValue(digits []int) int {
	n := 0
	for _, d := range digits {
		n = n*10 + d
	}
	return n
}
