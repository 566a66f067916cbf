package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// MisplacementDecision is the outcome of comparing a detected item against
// the product expected at a location.
type MisplacementDecision struct {
	DetectedItem       string
	ExpectedItem       string
	CorrectLocation    *string
	DisorderPercentage float64
	Title              string
	Message            string
}

// IsMisplaced decides whether a rack holds a misplaced item. True when the
// disorder signal exceeds the policy threshold, or when a non-empty detected
// label does not match the expected product name. An empty label with low
// disorder is no signal at all.
func (p Policy) IsMisplaced(detectedItem, expectedProduct string, disorderPct float64) bool {
	if disorderPct > p.DisorderThreshold {
		return true
	}
	if strings.TrimSpace(detectedItem) == "" {
		return false
	}
	return !labelsMatch(detectedItem, expectedProduct)
}

// labelsMatch reports whether two product labels refer to the same product:
// equality or either containing the other, compared on the lowercased
// alphanumeric skeleton. Perception labels drop punctuation ("Coca Cola" for
// "Coca-Cola Classic"), so the raw strings can't be compared directly.
func labelsMatch(a, b string) bool {
	na := normalizeLabel(a)
	nb := normalizeLabel(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// normalizeLabel lowercases and strips everything but letters and digits.
func normalizeLabel(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// BuildMisplacementDecision renders the title and message for a confirmed
// misplacement. correctLocation is nil when no catalog entry matched the
// detected item. A blank detected label (pure-disorder misplacement) is
// rendered as "unknown item".
func BuildMisplacementDecision(detectedItem, expectedProduct, shelf, rack string, disorderPct float64, correctLocation *string) MisplacementDecision {
	display := strings.TrimSpace(detectedItem)
	if display == "" {
		display = "unknown item"
	}

	title := fmt.Sprintf("🔄 MISPLACED: %s at %s-%s", display, shelf, rack)
	message := fmt.Sprintf("Wrong item '%s' found at %s-%s. Expected: '%s'",
		display, shelf, rack, expectedProduct)

	if correctLocation != nil {
		message += fmt.Sprintf(" | Correct location: %s", *correctLocation)
	}
	if disorderPct > 0 {
		message += fmt.Sprintf(" | Disorder level: %.1f%%", disorderPct)
	}

	return MisplacementDecision{
		DetectedItem:       detectedItem,
		ExpectedItem:       expectedProduct,
		CorrectLocation:    correctLocation,
		DisorderPercentage: disorderPct,
		Title:              title,
		Message:            message,
	}
}
