package detect

import "testing"

func TestLegalJustificationExemptsEvenAbusiveText(t *testing.T) {
	detector := NewLexicalDetector(DefaultLexicon())

	text := "I do not consent to this, you idiot"
	if !detector.ContainsLegalJustification(text) {
		t.Fatalf("expected legal justification match for %q", text)
	}
}

func TestLegalJustificationRequiresWholePhrase(t *testing.T) {
	detector := NewLexicalDetector(DefaultLexicon())

	cases := []struct {
		text string
		want bool
	}{
		{"we should file a complaint about this", true},
		{"não dou consentimento para monitoramento", true},
		{"the profile a complaintiff mentioned", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range cases {
		if got := detector.ContainsLegalJustification(tc.text); got != tc.want {
			t.Errorf("ContainsLegalJustification(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestMatchesExplicitThreat(t *testing.T) {
	detector := NewLexicalDetector(DefaultLexicon())

	cases := []struct {
		text string
		want bool
	}{
		{"vou te demitir amanhã", true},
		{"VOCÊ ESTÁ DEMITIDO", true},
		{"bom dia, tudo bem?", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := detector.MatchesExplicitThreat(tc.text); got != tc.want {
			t.Errorf("MatchesExplicitThreat(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestIsInappropriateLanguage(t *testing.T) {
	detector := NewLexicalDetector(DefaultLexicon())

	cases := []struct {
		text string
		want bool
	}{
		{"você é um idiota", true},
		{"isso não vai ficar assim", true},
		{"obrigado pela ajuda", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := detector.IsInappropriateLanguage(tc.text); got != tc.want {
			t.Errorf("IsInappropriateLanguage(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestReloadSwapsPhraseLists(t *testing.T) {
	detector := NewLexicalDetector(DefaultLexicon())
	if detector.MatchesExplicitThreat("you are sacked") {
		t.Fatal("unexpected match before reload")
	}

	custom := DefaultLexicon()
	custom.ExplicitThreats = []string{"you are sacked"}
	detector.Reload(custom)

	if !detector.MatchesExplicitThreat("YOU ARE SACKED, leave now") {
		t.Fatal("expected match after reload")
	}
	if detector.MatchesExplicitThreat("vou te demitir") {
		t.Fatal("old list should be replaced, not merged")
	}
}
