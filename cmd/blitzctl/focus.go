package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"blitzit/internal/lifecycle"
	"blitzit/internal/repository"
	"blitzit/internal/tui"
)

func focusCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "focus [task-id]",
		Short: "Run a focus session for a task in the terminal",
		Long: `Run a focus session for a task in the terminal.

Progress is saved to the task when the timer is paused, saved or closed.
Pressing c completes the task and moves it to Done.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id: %w", err)
			}

			_, db, err := openDB()
			if err != nil {
				return err
			}
			ctx := context.Background()

			user, err := repository.NewUserRepository(db).FindByEmail(ctx, strings.ToLower(email))
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("no user with email %s", email)
			}

			tasks := repository.NewTaskRepository(db)
			task, err := tasks.GetByID(ctx, user.ID, taskID)
			if err != nil {
				return err
			}

			engine := lifecycle.NewEngine()
			m := tui.NewFocusModel(*task,
				func(minutes int) error {
					return tasks.UpdateActualTime(ctx, user.ID, task.ID, minutes)
				},
				func() error {
					_, err := tasks.ApplyPatch(ctx, user.ID, task.ID, engine.Complete)
					return err
				},
			)

			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return err
			}

			state := m.State()
			if m.Completed() {
				fmt.Printf("✅ %s done, %d min worked\n", state.Title, state.MinutesWorked)
			} else {
				fmt.Printf("%s: %d min worked\n", state.Title, state.MinutesWorked)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "owner of the task")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
