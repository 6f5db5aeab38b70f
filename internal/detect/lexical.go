package detect

import (
	"regexp"
	"strings"
	"sync"
)

// LexicalDetector matches raw message text against the lexicon phrase lists.
// It is pure string matching: no I/O, no panics past its boundary, and blank
// text never matches anything.
type LexicalDetector struct {
	mu            sync.RWMutex
	lex           Lexicon
	legalPatterns []*regexp.Regexp
}

func NewLexicalDetector(lex Lexicon) *LexicalDetector {
	d := &LexicalDetector{}
	d.Reload(lex)
	return d
}

// Reload swaps the phrase lists. Used by the lexicon file watcher.
func (d *LexicalDetector) Reload(lex Lexicon) {
	patterns := make([]*regexp.Regexp, 0, len(lex.LegalJustifications))
	for _, phrase := range lex.LegalJustifications {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(phrase)+`\b`))
	}

	d.mu.Lock()
	d.lex = lex
	d.legalPatterns = patterns
	d.mu.Unlock()
}

// ContainsLegalJustification reports whether the text asserts a legal right.
// A match exempts the message from every further check, even an otherwise
// abusive one. Whole-phrase, word-boundary anchored.
func (d *LexicalDetector) ContainsLegalJustification(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, pattern := range d.legalPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// MatchesExplicitThreat reports whether the text contains an explicit threat
// phrase. A match short-circuits the pipeline straight to a threat warning.
func (d *LexicalDetector) MatchesExplicitThreat(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return containsAny(lowered, d.lex.ExplicitThreats)
}

// IsInappropriateLanguage reports whether the text contains abusive terms or
// threatening phrasings. The result feeds the decision engine; it does not
// short-circuit on its own.
func (d *LexicalDetector) IsInappropriateLanguage(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return containsAny(lowered, d.lex.AbusiveTerms) || containsAny(lowered, d.lex.ThreatPhrasings)
}

// ThreatReferences returns the reference phrases the similarity detector
// compares against for implicit threats.
func (d *LexicalDetector) ThreatReferences() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	refs := make([]string, len(d.lex.ThreatReferences))
	copy(refs, d.lex.ThreatReferences)
	return refs
}

func containsAny(lowered string, phrases []string) bool {
	for _, phrase := range phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
