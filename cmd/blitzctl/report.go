package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"blitzit/internal/report"
	"blitzit/internal/repository"
)

func reportCmd() *cobra.Command {
	var (
		email  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a user's productivity report as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
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

			reports := repository.NewReportRepository(db)
			now := time.Now()
			counts, err := reports.Counts(ctx, user.ID, now)
			if err != nil {
				return err
			}
			trend, err := reports.CompletionTrend(ctx, user.ID, report.TrendStart(now))
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("productivity-report-%s.pdf", now.Format("2006-01-02"))
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			err = report.NewGenerator(cfg.PDFFontPath).Render(f, report.Document{
				Owner:       user.Name,
				GeneratedAt: now,
				Stats:       report.NewStats(counts),
				Summary:     report.NewSummary(counts, trend),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user to report on")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
