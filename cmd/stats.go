package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/admin"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the admin dashboard (admin accounts only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, st, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if u := app.User(); u == nil || !u.IsAdmin() {
				return models.NewInvalidCredentialError("stats require an admin account")
			}

			if !watch {
				stats, err := st.Stats(ctx)
				if err != nil {
					return err
				}
				return renderStats(stats)
			}

			poller := &admin.Poller{
				Source:   st,
				Interval: interval,
				Logger:   logger,
				OnStats: func(s *models.AdminStats) {
					if !outputJSON {
						fmt.Print("\033[H\033[2J")
					}
					if err := renderStats(s); err != nil {
						logger.Warn().Err(err).Msg("failed to render stats")
					}
				},
				OnError: func(err error) {
					color.Red("stats refresh failed: %v", err)
				},
			}
			if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", admin.DefaultInterval, "Refresh interval for --watch")
	return cmd
}

func renderStats(s *models.AdminStats) error {
	if outputJSON {
		return printJSON(s)
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s %d   %s %d   %s %d   %s $%d\n\n",
		bold("Users:"), s.TotalUsers,
		bold("Analyses:"), s.TotalLogs,
		bold("Subscriptions:"), s.Subscriptions,
		bold("Monthly income:"), s.MonthlyIncome)

	revenue := newTable("MONTH", "REVENUE", "USERS")
	for i, p := range s.RevenueHistory {
		growth := "-"
		if i < len(s.UserGrowth) {
			growth = strconv.Itoa(s.UserGrowth[i])
		}
		revenue.Append([]string{p.Label, fmt.Sprintf("%.0f", p.Value), growth})
	}
	revenue.Render()
	fmt.Println()

	recent := newTable("NAME", "EMAIL", "PLAN", "JOINED")
	for _, u := range s.RecentUsers {
		recent.Append([]string{u.Name, u.Email, string(u.Plan), formatMillis(u.JoinedAt)})
	}
	recent.Render()
	return nil
}
