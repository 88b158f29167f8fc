package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-muncher/internal/config"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium"
)

var verifyRepair bool

var verifyCmd = &cobra.Command{
	Use:   "verify <collection>",
	Short: "Check a Redis collection for broken index entries and documents",
	Long: `Scan a Redis compendium collection for name entries without documents, documents
that do not decode and documents nothing points at. Use --repair to remove them.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyRepair, "repair", false, "remove broken entries")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendRedis {
		return errors.FailedPrecondition("verify needs the redis storage backend")
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	report, err := compendium.CheckRedis(ctx, client, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checked %d documents in %s, found %d issues\n", report.Checked, report.Collection, len(report.Issues))
	if len(report.Issues) == 0 {
		return nil
	}
	fmt.Fprintln(out, renderIssues(report.Issues))

	if !verifyRepair {
		fmt.Fprintln(out, "Run again with --repair to remove broken entries")
		return nil
	}

	repaired, err := compendium.RepairRedis(ctx, client, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Repaired %d of %d issues\n", repaired, len(report.Issues))
	return nil
}

func renderIssues(issues []compendium.Issue) string {
	rows := make([][]string, 0, len(issues))
	for i, issue := range issues {
		rows = append(rows, []string{strconv.Itoa(i + 1), string(issue.Kind), issue.Name, issue.StorageID, issue.Detail})
	}
	return renderTable(
		[]string{"#", "Issue", "Name", "Storage ID", "Detail"},
		rows,
		[]columnAlignment{alignRight},
	)
}
