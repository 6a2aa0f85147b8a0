package report

import (
	"fmt"
	"strings"

	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// quoteBlockPure : préfixe chaque ligne par "> " pour un blockquote Markdown.
func quoteBlockPure(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := range lines {
		lines[i] = "> " + lines[i]
	}
	return strings.Join(lines, "\n")
}

// tableCell rend une valeur sûre dans une cellule de tableau Markdown.
func tableCell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// timeLinkPure : timestamp cliquable vers la source (paramètre t=), texte seul sans URL.
func timeLinkPure(baseURL string, at model.Seconds) string {
	ts := at.TimestampHHMMSS()
	if baseURL == "" || !strings.HasPrefix(baseURL, "http") {
		return ts
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("[%s](%s%st=%ds)", ts, baseURL, sep, int64(at))
}
