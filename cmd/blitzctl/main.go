package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"blitzit/internal/config"
	"blitzit/internal/server"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "blitzctl",
		Short:         "Blitzit maintenance and terminal tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importLegacyCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(focusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	db, err := server.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
