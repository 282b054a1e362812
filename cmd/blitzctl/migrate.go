package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blitzit/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := migrations.Up(sqlDB); err != nil {
				return err
			}
			fmt.Println("Schema is up to date")
			return nil
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			_, db, err := openDB()
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := migrations.Down(sqlDB, steps); err != nil {
				return err
			}
			fmt.Println("Rolled back")
			return nil
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back, 0 for all")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			version, dirty, err := migrations.Version(sqlDB)
			if err != nil {
				return err
			}
			fmt.Printf("version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return cmd
}
