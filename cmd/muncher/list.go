package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium"
)

var listBackend string

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List the documents stored in a collection",
	Long:  `List the documents of a compendium collection: inventory, monsters or itemspells.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listBackend, "backend", "", "storage backend: redis or sqlite")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Storage.Backend = listBackend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	out, err := repo.List(ctx, compendium.ListInput{Collection: args[0]})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderDocuments(out.Documents))
	return nil
}

func renderDocuments(docs []*compendium.Document) string {
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		entityType, effects := "", 0
		if doc.Entity != nil {
			entityType = doc.Entity.Type
			effects = len(doc.Entity.Effects)
			for _, item := range doc.Entity.SubItems {
				if item != nil {
					effects += len(item.Effects)
				}
			}
		}
		rows = append(rows, []string{
			doc.Name,
			entityType,
			strconv.Itoa(effects),
			doc.StorageID,
			doc.UpdatedAt.Format(time.RFC3339),
		})
	}
	return renderTable(
		[]string{"Name", "Type", "Effects", "Storage ID", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}
