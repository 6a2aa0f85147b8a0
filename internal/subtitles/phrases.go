package subtitles

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

const (
	// pause entre deux mots ASR au-delà de laquelle on coupe la phrase
	pauseThresholdMs = 2000
	// sécurité : nombre maximum de mots par phrase
	maxWordsPerPhrase = 100
)

// Phrase est une phrase reconstruite depuis une piste, horodatée à son premier mot.
type Phrase struct {
	StartMs int64
	Text    string
	Runes   int
	Words   int
}

func (p Phrase) Start() model.Seconds {
	return model.SecondsFromMs(p.StartMs)
}

// phraseBuilder accumule des fragments jusqu'à la fin d'une phrase.
type phraseBuilder struct {
	out     []Phrase
	buf     strings.Builder
	words   int
	startMs int64 // -1 tant qu'aucun fragment n'est accumulé
}

func newPhraseBuilder() *phraseBuilder {
	return &phraseBuilder{startMs: -1}
}

func (b *phraseBuilder) empty() bool {
	return b.buf.Len() == 0
}

// add ajoute un fragment ; atMs date la phrase si c'est son premier fragment.
func (b *phraseBuilder) add(fragment string, atMs int64) {
	fragment = normalizeSpaces(fragment)
	if fragment == "" {
		return
	}
	if b.empty() {
		b.startMs = atMs
	} else {
		b.buf.WriteByte(' ')
	}
	b.buf.WriteString(fragment)
	b.words += len(strings.Fields(fragment))
}

func (b *phraseBuilder) commit() {
	text := b.buf.String()
	if text != "" {
		start := b.startMs
		if start < 0 {
			start = 0
		}
		b.out = append(b.out, Phrase{
			StartMs: start,
			Text:    text,
			Runes:   utf8.RuneCountInString(text),
			Words:   b.words,
		})
	}
	b.buf.Reset()
	b.words = 0
	b.startMs = -1
}

func (b *phraseBuilder) phrases() []Phrase {
	b.commit()
	return b.out
}

// PhrasesFromAuto reconstruit des phrases depuis des captions ASR (un seg par mot).
// Coupe sur ponctuation terminale, sur pause > pauseThresholdMs ou à maxWordsPerPhrase mots.
func PhrasesFromAuto(doc json3Doc) []Phrase {
	b := newPhraseBuilder()
	var lastWordMs int64 = -1

	for _, ev := range doc.Events {
		if ev.blank() {
			continue
		}
		for _, seg := range ev.Segs {
			s := strings.ReplaceAll(seg.Utf8, `\n`, "\n")
			if strings.TrimSpace(s) == "" {
				continue
			}

			ts := ev.wordMs(seg)
			if lastWordMs >= 0 && ts-lastWordMs > pauseThresholdMs && !b.empty() {
				b.commit()
			}
			lastWordMs = ts

			b.add(s, ts)
			if b.words >= maxWordsPerPhrase || endsSentence(s) {
				b.commit()
			}
		}
	}
	return b.phrases()
}

// PhrasesFromManual reconstruit des phrases depuis des sous-titres manuels.
// Chaque event est coupé en phrases ; le début d'un morceau est estimé au prorata
// des runes sur la durée de l'event. Une phrase peut traverser plusieurs events.
func PhrasesFromManual(doc json3Doc) []Phrase {
	b := newPhraseBuilder()

	for _, ev := range doc.Events {
		text := ev.text()
		if text == "" {
			continue
		}

		pieces := splitSentences(text)
		if len(pieces) == 0 {
			pieces = []sentencePiece{{Text: text, EndRune: utf8.RuneCountInString(text)}}
		}

		var perRuneMs float64
		if n := utf8.RuneCountInString(text); n > 0 && ev.durationMs() > 0 {
			perRuneMs = float64(ev.durationMs()) / float64(n)
		}

		prevEnd := 0
		for _, p := range pieces {
			at := ev.startMs() + int64(math.Round(perRuneMs*float64(prevEnd)))
			b.add(p.Text, at)
			if p.Terminated {
				b.commit()
			}
			prevEnd = p.EndRune
		}
	}
	return b.phrases()
}

// Phrases choisit la reconstruction selon la provenance de la piste.
func Phrases(doc json3Doc, src model.SubSource) []Phrase {
	if src == model.SubSourceManual {
		return PhrasesFromManual(doc)
	}
	return PhrasesFromAuto(doc)
}
