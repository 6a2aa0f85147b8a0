package ui

import "context"

type Interface interface {
	// GetSourceURL renvoie une URL YouTube ou le chemin d'un fichier local existant.
	// Implémentation terminale : priorité clipboard -> prompt
	GetSourceURL(ctx context.Context) (string, error)

	PrintInfo(ctx context.Context, s string)
	PrintError(ctx context.Context, s string)
}
