package subtitles

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sentencePiece est un morceau de texte d'event coupé en fin de phrase.
type sentencePiece struct {
	Text       string
	EndRune    int  // runes consommées depuis le début du texte (exclusif, blancs suivants inclus)
	Terminated bool // true si le morceau finit par . ! ou ?
}

// splitSentences coupe s après chaque terminator suivi d'un blanc.
// Un terminator collé à la suite ("2.6", "a.b") ne coupe pas. Les closers qui
// suivent le terminator restent dans le morceau. Compte en runes, sans []rune.
func splitSentences(s string) []sentencePiece {
	var (
		out      []sentencePiece
		body     strings.Builder // texte courant
		tail     strings.Builder // terminators + closers en attente
		pending  bool
		consumed int
	)

	flush := func(terminated bool) {
		if text := normalizeSpaces(body.String() + tail.String()); text != "" {
			out = append(out, sentencePiece{Text: text, EndRune: consumed, Terminated: terminated})
		}
		body.Reset()
		tail.Reset()
		pending = false
	}

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		consumed++

		switch {
		case pending && unicode.IsSpace(r):
			// fin de phrase : les blancs suivants sont rattachés au morceau
			for i < len(s) {
				r2, size2 := utf8.DecodeRuneInString(s[i:])
				if r2 == utf8.RuneError && size2 == 1 {
					i++
					continue
				}
				if !unicode.IsSpace(r2) {
					break
				}
				consumed++
				i += size2
			}
			flush(true)
		case isTerminator(r) || (pending && isCloser(r)):
			tail.WriteRune(r)
			pending = true
		default:
			if pending {
				// faux positif (ex: 2.6) : le terminator reste dans la phrase
				body.WriteString(tail.String())
				tail.Reset()
				pending = false
			}
			body.WriteRune(r)
		}
	}

	if pending {
		flush(true)
	} else if body.Len() > 0 {
		flush(false)
	}
	return out
}
