package detect

import (
	"encoding/json"
	"fmt"
	"os"
)

// Lexicon holds the static phrase lists the lexical detector matches against.
// The defaults cover the bilingual workplace vocabulary the monitor was tuned
// for; a JSON file can override individual lists without rebuilding.
type Lexicon struct {
	LegalJustifications []string `json:"legal_justifications"`
	ExplicitThreats     []string `json:"explicit_threats"`
	AbusiveTerms        []string `json:"abusive_terms"`
	ThreatPhrasings     []string `json:"threat_phrasings"`
	ThreatReferences    []string `json:"threat_references"`
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		LegalJustifications: []string{
			"attorney general",
			"massachusetts law",
			"direito trabalhista",
			"direitos trabalhistas",
			"direito à privacidade",
			"right to privacy",
			"fair labor division",
			"consentimento",
			"consentimento expresso",
			"formal complaint",
			"complaint with the attorney general",
			"complaint with attorney general",
			"complaint with fair labor division",
			"file a complaint",
			"file a formal complaint",
			"direito de recusar",
			"não consinto",
			"não dou consentimento",
			"i do not consent",
			"i have not consented",
			"i never signed",
			"i never agreed",
			"right to keep personal property free from monitoring",
			"direito de manter propriedade pessoal livre de monitoramento",
		},
		ExplicitThreats: []string{
			"vou te demitir",
			"você está demitido",
			"isso vai custar caro",
			"vai se arrepender",
			"te coloco na rua",
			"não vai mais trabalhar aqui",
		},
		AbusiveTerms: []string{
			"idiota", "burro", "imbecil", "estúpido", "palhaço", "otário",
			"babaca", "retardado", "ignorante", "nojento", "vergonha", "ridículo",
		},
		ThreatPhrasings: []string{
			"vou te demitir", "você está demitido", "te mandar embora",
			"vai ser demitido", "te tirar da empresa", "vou acabar com você",
			"isso vai ter consequências", "isso não vai ficar assim",
		},
		ThreatReferences: []string{
			"vou te demitir", "isso vai custar caro", "vai se arrepender",
			"vai ter consequências", "isso não vai ficar assim", "isso pode custar o emprego",
			"posso acabar com sua carreira", "isso vai te prejudicar", "vai pagar caro por isso",
			"tome cuidado com o que está fazendo", "sei onde você mora",
		},
	}
}

// LoadLexicon reads a JSON lexicon file. Lists absent from the file keep their
// built-in defaults.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon file: %w", err)
	}

	var override Lexicon
	if err := json.Unmarshal(data, &override); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon file %s: %w", path, err)
	}

	merged := DefaultLexicon()
	if override.LegalJustifications != nil {
		merged.LegalJustifications = override.LegalJustifications
	}
	if override.ExplicitThreats != nil {
		merged.ExplicitThreats = override.ExplicitThreats
	}
	if override.AbusiveTerms != nil {
		merged.AbusiveTerms = override.AbusiveTerms
	}
	if override.ThreatPhrasings != nil {
		merged.ThreatPhrasings = override.ThreatPhrasings
	}
	if override.ThreatReferences != nil {
		merged.ThreatReferences = override.ThreatReferences
	}
	return merged, nil
}
