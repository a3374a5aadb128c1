package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/profilescan/profilescan/internal/config"
	"github.com/profilescan/profilescan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [site]",
		Short: "Browse past crawls recorded in the history database",
		Long: `History lists the sites that have been crawled and the runs recorded
for each of them. A run can be printed in full as JSON with --id.

The extracted profiles of a site can be queried with --profiles, optionally
filtered by a (partial) person name with --name.

Examples:
  # List all crawled sites
  profilescan history --list

  # List crawl runs for a site
  profilescan history https://example.com

  # Print one recorded crawl report as JSON
  profilescan history --id 3

  # Query extracted profiles for a site
  profilescan history https://example.com --profiles --name ada`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "L", false, "List all crawled sites")
	cmd.Flags().Int64("id", 0, "Print the crawl report with this database ID as JSON")
	cmd.Flags().Bool("profiles", false, "Print the extracted profiles recorded for the site")
	cmd.Flags().String("name", "", "Filter profiles by partial name match (with --profiles)")
	cmd.Flags().String("data-dir", config.XDGDataDir(),
		"Directory holding the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dataDir, database.OptionsReadOnly())
	if err != nil {
		return fmt.Errorf("failed to open database (run a crawl first?): %w", err)
	}
	defer db.Close()

	if id, err := cmd.Flags().GetInt64("id"); err == nil && id > 0 {
		return printReportByID(cmd, db, id)
	}

	listSites, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listSites || len(args) == 0 {
		return printCrawledSites(cmd, db)
	}

	site := args[0]

	showProfiles, err := cmd.Flags().GetBool("profiles")
	if err != nil {
		return err
	}
	if showProfiles {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}
		return printProfiles(cmd, db, site, name)
	}

	return printCrawlRuns(cmd, db, site)
}

// printCrawledSites lists every site recorded in the database.
func printCrawledSites(cmd *cobra.Command, db *database.CrawlDB) error {
	sites, err := db.ListCrawledSites(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawls recorded yet.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Crawled sites (%d):\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", site)
	}
	return nil
}

// printCrawlRuns prints the recorded runs for one site as a table.
func printCrawlRuns(cmd *cobra.Command, db *database.CrawlDB, site string) error {
	runs, err := db.GetCrawlHistoryWithMetadata(cmd.Context(), site)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No crawls recorded for %s.\n", site)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPAGES\tFAILED\tPROFILES")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format(time.DateTime),
			run.RunSummary["pages_processed"],
			run.RunSummary["pages_failed"],
			run.RunSummary["profiles"],
		)
	}
	return w.Flush()
}

// printReportByID prints the full stored crawl report as indented JSON.
func printReportByID(cmd *cobra.Command, db *database.CrawlDB, id int64) error {
	report, err := db.GetCrawlReportByID(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get crawl report: %w", err)
	}
	if report == nil {
		return fmt.Errorf("no crawl report with ID %d", id)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// printProfiles prints the profiles recorded for a site, optionally
// filtered by name.
func printProfiles(cmd *cobra.Command, db *database.CrawlDB, site, name string) error {
	records, err := db.QueryProfiles(cmd.Context(), site, name)
	if err != nil {
		return fmt.Errorf("failed to query profiles: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles found.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Profiles for %s (%d):\n\n", site, len(records))
	for _, record := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n    %s\n\n", record.Name, record.About)
	}
	return nil
}
