package subtitles

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', ')', ']', '}', '»':
		return true
	}
	return false
}

// endsSentence : dernier rune utile terminal, guillemets et parenthèses fermantes ignorés.
// Exemple : `il a dit "stop."` -> true.
func endsSentence(s string) bool {
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		switch {
		case r == utf8.RuneError && size == 1:
			continue // octet invalide
		case unicode.IsSpace(r) || isCloser(r):
			continue
		default:
			return isTerminator(r)
		}
	}
	return false
}

// normalizeSpaces : un seul espace entre les mots, aucun en début/fin.
func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanSeg convertit les "\n" (réels ou échappés) en espaces puis normalise.
func cleanSeg(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	return normalizeSpaces(s)
}
