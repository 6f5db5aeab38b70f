package scorer

import "strings"

var respectfulWords = []string{
	"frankly", "disagree", "unreasonable", "concerned", "unfair", "respectfully",
}

var profanityMarkers = []string{
	"idiot", "shut up",
}

var legalReferences = []string{
	"attorney general", "massachusetts law",
}

var complianceSignals = []string{
	"i'm willing to", "i remain open to", "i will comply once", "i just need",
}

// IsReasonableResponse downgrades a coercive-authority trigger when the text
// reads as proportionate, legitimate communication: quoting cited material,
// respectful disagreement without profanity, a legal reference, or conditional
// willingness to comply while the raw score stays below 0.8. It applies to the
// coercive-authority category only; the decision engine enforces that scoping.
func IsReasonableResponse(text string, modelScore float64) bool {
	lowered := strings.ToLower(text)

	if containsQuotedMaterial(text) {
		return true
	}

	for _, word := range respectfulWords {
		if strings.Contains(lowered, word) {
			clean := true
			for _, marker := range profanityMarkers {
				if strings.Contains(lowered, marker) {
					clean = false
					break
				}
			}
			if clean {
				return true
			}
		}
	}

	for _, reference := range legalReferences {
		if strings.Contains(lowered, reference) {
			return true
		}
	}

	if modelScore < 0.8 {
		for _, signal := range complianceSignals {
			if strings.Contains(lowered, signal) {
				return true
			}
		}
	}

	return false
}

func containsQuotedMaterial(text string) bool {
	if strings.Contains(text, "“") && strings.Contains(text, "”") {
		return true
	}
	return strings.Count(text, `"`) >= 2
}
