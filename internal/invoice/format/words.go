package format

import (
	"errors"
	"math"
	"strings"
)

// maxConvertible bounds the amount-in-words converter. Legal invoices above
// this amount are not produced by the subscription flow.
const maxConvertible = 1_000_000

// ErrAmountTooLarge is returned for amounts the converter cannot spell out.
var ErrAmountTooLarge = errors.New("Amount exceeds maximum supported value")

// DefaultCurrencyLabel is the label used when no currency label is provided.
const DefaultCurrencyLabel = "Dirhams"

var unitNames = [10]string{"", "Un", "Deux", "Trois", "Quatre", "Cinq", "Six", "Sept", "Huit", "Neuf"}

var teenNames = [10]string{"Dix", "Onze", "Douze", "Treize", "Quatorze", "Quinze", "Seize", "Dix-Sept", "Dix-Huit", "Dix-Neuf"}

// Index is the tens digit; 7..9 are irregular and handled separately.
var tensNames = [7]string{"", "", "Vingt", "Trente", "Quarante", "Cinquante", "Soixante"}

// AmountInWords spells a tax-inclusive amount in French for the invoice
// document, e.g. 71 -> "Soixante et Onze Dirhams (TTC)".
//
// The amount is rounded to the nearest whole unit first. Negative amounts
// are prefixed with "Moins". Amounts of one million or more are rejected.
//
// This function is PURE:
// - No side effects
// - Fully deterministic
func AmountInWords(amount float64, currencyLabel string) (string, error) {
	label := strings.TrimSpace(currencyLabel)
	if label == "" {
		label = DefaultCurrencyLabel
	}

	n := int(math.Round(amount))
	if n == 0 {
		return "Zéro " + label + " (TTC)", nil
	}
	if n < 0 {
		words, err := AmountInWords(float64(-n), label)
		if err != nil {
			return "", err
		}
		return "Moins " + words, nil
	}
	if n >= maxConvertible {
		return "", ErrAmountTooLarge
	}

	return numberInWords(n) + " " + label + " (TTC)", nil
}

// numberInWords converts 1..999999.
func numberInWords(n int) string {
	thousands := n / 1000
	remainder := n % 1000

	var parts []string
	switch {
	case thousands == 1:
		// 1000-1999 reads as bare "Mille", never "Un Mille".
		parts = append(parts, "Mille")
	case thousands > 1:
		parts = append(parts, hundredsInWords(thousands)+" Mille")
	}
	if remainder > 0 {
		parts = append(parts, hundredsInWords(remainder))
	}

	out := strings.Join(parts, " ")

	// "Cents" only when a round multiple of one hundred is the whole result,
	// e.g. "Deux Cents" but "Mille Deux Cent" and "Deux Cent Cinq".
	if head, ok := strings.CutSuffix(out, " Cent"); ok && isUnitTwoToNine(head) {
		out += "s"
	}
	return out
}

// hundredsInWords converts 1..999. "Cent" is never pluralized here.
func hundredsInWords(n int) string {
	hundreds := n / 100
	rest := n % 100

	var parts []string
	switch {
	case hundreds == 1:
		parts = append(parts, "Cent")
	case hundreds > 1:
		parts = append(parts, unitNames[hundreds]+" Cent")
	}
	if rest > 0 {
		parts = append(parts, subHundredInWords(rest))
	}
	return strings.Join(parts, " ")
}

// subHundredInWords converts 1..99, including the irregular 70s/80s/90s.
func subHundredInWords(n int) string {
	switch {
	case n < 10:
		return unitNames[n]
	case n < 20:
		return teenNames[n-10]
	case n < 70:
		tens := tensNames[n/10]
		unit := n % 10
		switch unit {
		case 0:
			return tens
		case 1:
			// 21/31/41/51/61 take "et Un".
			return tens + " et Un"
		default:
			return tens + "-" + unitNames[unit]
		}
	case n == 71:
		// 71 is "Soixante et Onze", not "Soixante-Dix-Un".
		return "Soixante et Onze"
	case n < 80:
		return "Soixante-" + teenNames[n-70]
	case n == 80:
		return "Quatre-Vingt"
	case n < 90:
		// 81/91 never take "et": "Quatre-Vingt-Un".
		return "Quatre-Vingt-" + unitNames[n-80]
	default:
		return "Quatre-Vingt-" + teenNames[n-90]
	}
}

func isUnitTwoToNine(word string) bool {
	for _, name := range unitNames[2:] {
		if word == name {
			return true
		}
	}
	return false
}
