package report

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/patrickprogramme/clipscribe/internal/assets"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// Renderer gère le parsing paresseux (lazy) des templates et fournit des méthodes de rendu.
type Renderer struct {
	templates *template.Template // templates parsés
	fsys      fs.FS              // source des templates (embed.FS ou os.DirFS)
	patterns  []string           // patterns relatifs au fsys, ex: "templates/*.tmpl"
	once      sync.Once          // protège l'initialisation paresseuse
	err       error              // mémorise l'erreur d'initialisation
}

// NewRendererFromFS construit un Renderer qui parsera plus tard les patterns depuis fsys.
func NewRendererFromFS(fsys fs.FS, patterns []string) (*Renderer, error) {
	if fsys == nil {
		return nil, fmt.Errorf("fsys est nil")
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("aucun template fourni")
	}
	cp := append([]string(nil), patterns...)
	return &Renderer{
		fsys:     fsys,
		patterns: cp,
	}, nil
}

// EmbeddedRenderer lit les templates embarqués dans le binaire.
func EmbeddedRenderer() (*Renderer, error) {
	return NewRendererFromFS(assets.Embedded, assets.DefaultTemplatePaths)
}

// DefaultRenderer lit les templates du dossier "templates" à côté du binaire
// (modifiables par l'utilisateur) et retombe sur les templates embarqués.
func DefaultRenderer(exePath string) (*Renderer, error) {
	tplDir := filepath.Join(filepath.Dir(exePath), "templates")
	if _, err := os.Stat(filepath.Join(tplDir, assets.ReportTemplate)); err == nil {
		r, err := NewRendererFromFS(os.DirFS(tplDir), []string{assets.ReportTemplate})
		if err != nil {
			return nil, err
		}
		if err := r.ParseNow(); err == nil {
			return r, nil
		}
	}
	r, err := EmbeddedRenderer()
	if err != nil {
		return nil, err
	}
	return r, r.ParseNow()
}

// parseTemplates effectue le parsing des templates une seule fois (sync.Once).
func (r *Renderer) parseTemplates() error {
	r.once.Do(func() {
		t := template.New("root").Funcs(baseFuncMap())
		for _, p := range r.patterns {
			var parseErr error
			t, parseErr = t.ParseFS(r.fsys, p)
			if parseErr != nil {
				r.err = fmt.Errorf("parse pattern %q: %w", p, parseErr)
				return
			}
		}
		r.templates = t
	})
	return r.err
}

// ParseNow force le parsing immédiat et retourne l'erreur si problème.
func (r *Renderer) ParseNow() error {
	if r == nil {
		return fmt.Errorf("nil renderer")
	}
	return r.parseTemplates()
}

// Render exécute le template nommé tmplName (basename du fichier .tmpl) avec data.
func (r *Renderer) Render(tmplName string, data Data) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer is nil")
	}
	if err := r.parseTemplates(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, tmplName, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", tmplName, err)
	}
	return buf.Bytes(), nil
}

func baseFuncMap() template.FuncMap {
	return template.FuncMap{
		"quoteBlock": quoteBlockPure,
		"cell":       tableCell,
		"timeLink":   timeLinkPure,
		"timestamp": func(s model.Seconds) string {
			return s.TimestampHHMMSS()
		},
	}
}
