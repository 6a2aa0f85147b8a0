// Package chapters normalise les chapitres d'une source en segments contigus.
package chapters

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// FullVideoTitle est le titre du segment unique produit sans chapitres.
const FullVideoTitle = "Full Video"

var ErrInvalidInput = errors.New("invalid chapter input")

// Segment transforme les chapitres bruts en segments ordonnés couvrant [0, total].
//
//   - aucun chapitre -> un segment FullVideoTitle sur toute la durée
//   - End absent -> début du chapitre suivant, ou total pour le dernier
//   - le premier segment démarre à 0, le dernier finit à total, et un End
//     explicite plus court que le début suivant est prolongé jusqu'à lui
//
// Retourne ErrInvalidInput si total n'est pas un nombre positif, si un début
// est négatif ou >= total, si les débuts ne sont pas strictement croissants,
// ou si une fin est <= son début, dépasse le chapitre suivant ou dépasse total.
func Segment(total model.Seconds, raw []model.RawChapter) ([]model.Segment, error) {
	if !finite(total) || total <= 0 {
		return nil, fmt.Errorf("%w: durée totale %v", ErrInvalidInput, float64(total))
	}
	if len(raw) == 0 {
		return []model.Segment{{Title: FullVideoTitle, Start: 0, End: total}}, nil
	}

	out := make([]model.Segment, 0, len(raw))
	for i, c := range raw {
		if !finite(c.Start) || c.Start < 0 {
			return nil, fmt.Errorf("%w: chapitre %d : début %v", ErrInvalidInput, i+1, float64(c.Start))
		}
		if c.Start >= total {
			return nil, fmt.Errorf("%w: chapitre %d : début %v >= durée %v", ErrInvalidInput, i+1, float64(c.Start), float64(total))
		}
		if i > 0 && c.Start <= raw[i-1].Start {
			return nil, fmt.Errorf("%w: chapitre %d : début %v non croissant (précédent %v)", ErrInvalidInput, i+1, float64(c.Start), float64(raw[i-1].Start))
		}

		// borne naturelle : début du suivant, ou total pour le dernier
		bound := total
		if i+1 < len(raw) {
			bound = raw[i+1].Start
		}

		end := bound
		if c.End != nil {
			e := *c.End
			if !finite(e) || e <= c.Start {
				return nil, fmt.Errorf("%w: chapitre %d : fin %v <= début %v", ErrInvalidInput, i+1, float64(e), float64(c.Start))
			}
			if e > bound {
				return nil, fmt.Errorf("%w: chapitre %d : fin %v dépasse %v", ErrInvalidInput, i+1, float64(e), float64(bound))
			}
			// e < bound : trou comblé en prolongeant jusqu'à bound
		}
		if end <= c.Start {
			return nil, fmt.Errorf("%w: chapitre %d : fin déduite %v <= début %v", ErrInvalidInput, i+1, float64(end), float64(c.Start))
		}

		start := c.Start
		if i == 0 {
			start = 0
		}
		out = append(out, model.Segment{
			Title: titleOrDefault(c.Title, i),
			Start: start,
			End:   end,
		})
	}
	return out, nil
}

// Check vérifie qu'une liste de segments est ordonnée, contiguë et couvre [0, total].
func Check(segs []model.Segment, total model.Seconds) error {
	if len(segs) == 0 {
		return fmt.Errorf("%w: aucun segment", ErrInvalidInput)
	}
	if segs[0].Start != 0 {
		return fmt.Errorf("%w: premier segment à %v", ErrInvalidInput, float64(segs[0].Start))
	}
	for i, s := range segs {
		if s.Start >= s.End {
			return fmt.Errorf("%w: segment %d vide ou inversé", ErrInvalidInput, i+1)
		}
		if i > 0 && segs[i-1].End != s.Start {
			return fmt.Errorf("%w: trou ou chevauchement avant le segment %d", ErrInvalidInput, i+1)
		}
	}
	if last := segs[len(segs)-1]; last.End != total {
		return fmt.Errorf("%w: dernier segment finit à %v au lieu de %v", ErrInvalidInput, float64(last.End), float64(total))
	}
	return nil
}

func titleOrDefault(title string, i int) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fmt.Sprintf("Chapter %d", i+1)
}

func finite(s model.Seconds) bool {
	f := float64(s)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
