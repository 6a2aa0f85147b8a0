package assets

import "embed"

//go:embed clipscribe.example.yaml
//go:embed templates/*tmpl
var Embedded embed.FS

// Nom de l'asset de config par défaut (chemin DANS Embedded)
const DefaultConfigAsset = "clipscribe.example.yaml"

// ReportTemplate : nom (basename) du template du rapport de découpe.
const ReportTemplate = "report.md.tmpl"

// DefaultTemplatePaths : liste ordonnée des templates "par défaut" embarqués.
// Ce sont des chemins relatifs DANS Embedded (ex: "templates/report.md.tmpl").
var DefaultTemplatePaths = []string{
	"templates/" + ReportTemplate,
}
