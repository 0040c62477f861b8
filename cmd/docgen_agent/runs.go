package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/document-generator/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent generation runs",
	Long:  "Lists recent generation runs from the database, optionally filtered by project name or status.",
	RunE:  runRunsCmd,
}

var (
	runsProject     string
	runsStatus      string
	runsLimit       int
	runsDatabaseURL string
)

func init() {
	runsCmd.Flags().StringVar(&runsProject, "project", "", "Filter by project name (substring match)")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "Filter by run status (running, completed, partial, failed)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runsCmd)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRunsFiltered(ctx, db.RunFilters{
		ProjectName: runsProject,
		Status:      runsStatus,
		Limit:       runsLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(os.Stdout, "No runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN ID\tPROJECT\tSTATUS\tSECTIONS\tFAILED\tCREATED")
	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID, run.ProjectName, run.Status,
			run.SectionsTotal, run.SectionsFailed,
			run.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
