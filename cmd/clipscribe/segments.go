package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/patrickprogramme/clipscribe/internal/app"
	"github.com/patrickprogramme/clipscribe/internal/ui"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments [url|fichier]",
	Short: "Affiche la découpe en segments d'une source",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSegments,
}

var (
	segmentsFlags app.CLIFlags
	segmentsJSON  bool
)

func init() {
	segmentsCmd.Flags().StringVar(&segmentsFlags.ChaptersFile, "chapters", "", "fichier JSON de chapitres (remplace ceux de la source)")
	segmentsCmd.Flags().BoolVar(&segmentsJSON, "json", false, "sortie JSON")
}

func runSegments(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		segmentsFlags.Source = args[0]
	}

	a := app.New(cfg, ui.NewTerminal(), &segmentsFlags, nil)
	meta, segs, err := a.Segments(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if segmentsJSON {
		b, err := json.MarshalIndent(map[string]any{
			"title":    meta.TitleOrID(),
			"duration": meta.Duration,
			"segments": segs,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	fmt.Fprintf(out, "%s (%s)\n\n", meta.TitleOrID(), meta.Duration.TimestampHHMMSS())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, s := range segs {
		fmt.Fprintf(tw, "%02d\t%s\t%s\t%s\n", i+1, s.Start.TimestampHHMMSS(), s.End.TimestampHHMMSS(), s.Title)
	}
	return tw.Flush()
}
