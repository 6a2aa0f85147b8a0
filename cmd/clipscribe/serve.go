package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/patrickprogramme/clipscribe/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose la segmentation et le minutage en HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "adresse d'écoute (défaut : server.listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	s := server.New(server.WithWordsPerCue(cfg.Captions.WordsPerCue))
	cmd.Printf("Écoute sur http://%s\n", addr)
	return s.Run(cmd.Context(), addr)
}
