package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"blitzit/internal/legacy"
	"blitzit/internal/repository"
)

var (
	importEmail    string
	importName     string
	importPassword string
	verbose        bool
)

func importLegacyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-legacy [tasks.db]",
		Short: "Import projects and tasks from the desktop app",
		Long: `Import projects and tasks from the SQLite database of the Blitzit desktop app.

Projects are matched by name and reused; tasks whose title already exists
for the user are skipped, so the import can be re-run safely. The user is
created when the email is unknown, which requires --password.

Examples:
  blitzctl import-legacy data/tasks.db --email me@example.com --password secret
  blitzctl import-legacy data/tasks.db --email me@example.com -v`,
		Args: cobra.ExactArgs(1),
		RunE: runImportLegacy,
	}

	cmd.Flags().StringVar(&importEmail, "email", "", "owner of the imported data")
	cmd.Flags().StringVar(&importName, "name", "", "display name when the user is created")
	cmd.Flags().StringVar(&importPassword, "password", "", "password when the user is created")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every task")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runImportLegacy(cmd *cobra.Command, args []string) error {
	_, db, err := openDB()
	if err != nil {
		return err
	}

	importer := legacy.NewImporter(
		repository.NewUserRepository(db),
		repository.NewProjectRepository(db),
		repository.NewTaskRepository(db),
	)
	importer.Progress = func(current, total int, title string) {
		if verbose {
			fmt.Printf("[%d/%d] %s\n", current+1, total, title)
		} else if current%10 == 0 {
			fmt.Printf("\rProgress: %d/%d tasks", current, total)
		}
	}

	fmt.Println("Starting import...")
	stats, err := importer.Import(context.Background(), args[0], legacy.Account{
		Email:    importEmail,
		Name:     importName,
		Password: importPassword,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("\n\nImport complete in %s\n", stats.EndTime.Sub(stats.StartTime).Round(time.Millisecond))
	if stats.UserCreated {
		fmt.Printf("  Created user %s\n", importEmail)
	}
	fmt.Printf("  Projects: %d created, %d reused\n", stats.ProjectsCreated, stats.ProjectsReused)
	fmt.Printf("  Tasks:    %d imported, %d skipped, %d failed\n", stats.TasksImported, stats.TasksSkipped, stats.TasksFailed)
	for _, e := range stats.Errors {
		fmt.Printf("  ! %s\n", e)
	}
	return nil
}
