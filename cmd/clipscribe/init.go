package main

import (
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/patrickprogramme/clipscribe/internal/assets"
	"github.com/patrickprogramme/clipscribe/internal/bootstrap"
	"github.com/patrickprogramme/clipscribe/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Écrit la configuration et les templates par défaut à côté du binaire",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "remplace les templates modifiés (une sauvegarde .bak est conservée)")
}

func runInit(cmd *cobra.Command, args []string) error {
	_, dir := binDir()

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(dir, config.DefaultFileName)
	}
	if err := bootstrap.EnsureConfigPresent(cfgPath, assets.Embedded, assets.DefaultConfigAsset); err != nil {
		return err
	}
	cmd.Printf("config : %s\n", cfgPath)

	status, err := bootstrap.ExportDefaults(assets.Embedded, "templates", filepath.Join(dir, "templates"), initForce)
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s : %s\n", k, status[k])
	}
	return err
}
