package media

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Position du titre incrusté.
const (
	TitleTop    = "top"
	TitleBottom = "bottom"
)

// Style règle l'apparence du texte incrusté dans les clips.
type Style struct {
	// Sous-titres (filtre subtitles, force_style)
	FontSize  int
	FontColor string // #RRGGBB

	// Titre du chapitre (filtre drawtext)
	TitleFontSize int
	TitlePosition string // top | bottom
}

// DefaultStyle : texte blanc, titre en haut.
var DefaultStyle = Style{
	FontSize:      24,
	FontColor:     "#FFFFFF",
	TitleFontSize: 48,
	TitlePosition: TitleTop,
}

// ParseHexColor lit une couleur #RRGGBB (le # est facultatif).
func ParseHexColor(s string) (r, g, b uint8, err error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("couleur %q : format attendu #RRGGBB", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("couleur %q : %w", s, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// withDefaults complète les champs vides ou invalides avec DefaultStyle.
func (st Style) withDefaults() Style {
	if st.FontSize <= 0 {
		st.FontSize = DefaultStyle.FontSize
	}
	if _, _, _, err := ParseHexColor(st.FontColor); err != nil {
		st.FontColor = DefaultStyle.FontColor
	}
	if st.TitleFontSize <= 0 {
		st.TitleFontSize = DefaultStyle.TitleFontSize
	}
	if st.TitlePosition != TitleBottom {
		st.TitlePosition = TitleTop
	}
	return st
}

// assColour : couleur ASS &HAABBGGRR attendue par force_style.
func (st Style) assColour() string {
	r, g, b, _ := ParseHexColor(st.FontColor)
	return fmt.Sprintf("&H00%02X%02X%02X", b, g, r)
}

// ffmpegColour : couleur 0xRRGGBB pour drawtext.
func (st Style) ffmpegColour() string {
	r, g, b, _ := ParseHexColor(st.FontColor)
	return fmt.Sprintf("0x%02X%02X%02X", r, g, b)
}

// subtitlesFilter incruste le fichier path avec la police du style.
func (st Style) subtitlesFilter(path string) string {
	return fmt.Sprintf("subtitles='%s':force_style='FontSize=%d,PrimaryColour=%s'",
		escapeFilterValue(filepath.ToSlash(path)), st.FontSize, st.assColour())
}

// titleFilter dessine title centré horizontalement, sur un bandeau semi-transparent.
func (st Style) titleFilter(title string) string {
	y := "h*0.05"
	if st.TitlePosition == TitleBottom {
		y = "h-text_h-h*0.05"
	}
	return fmt.Sprintf("drawtext=text='%s':expansion=none:fontsize=%d:fontcolor=%s:x=(w-text_w)/2:y=%s:box=1:boxcolor=black@0.5:boxborderw=12",
		escapeFilterValue(title), st.TitleFontSize, st.ffmpegColour(), y)
}
