package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/proxy"
	"github.com/KirkDiggler/rpg-muncher/internal/config"
	"github.com/KirkDiggler/rpg-muncher/internal/orchestrators/muncher"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/selection"
	"github.com/KirkDiggler/rpg-muncher/internal/services/compendium"
)

// importFlags are shared by the items and monsters commands
type importFlags struct {
	ids            []string
	sources        []int
	homebrew       string
	modules        []string
	updateExisting bool
	backend        string
	debugDir       string
}

var flags importFlags

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Import items into the inventory collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, proxy.KindItems)
	},
}

var monstersCmd = &cobra.Command{
	Use:   "monsters",
	Short: "Import monsters into the monsters collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, proxy.KindMonsters)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{itemsCmd, monstersCmd} {
		cmd.Flags().StringSliceVar(&flags.ids, "ids", nil, "only import these definition ids (disables the source filter)")
		cmd.Flags().IntSliceVar(&flags.sources, "sources", nil, "source ids to import from")
		cmd.Flags().StringVar(&flags.homebrew, "homebrew", "", "homebrew policy: include, exclude or only")
		cmd.Flags().StringSliceVar(&flags.modules, "modules", nil, "companion module ids active in the target")
		cmd.Flags().BoolVar(&flags.updateExisting, "update-existing", false, "replace stored documents with the same name")
		cmd.Flags().StringVar(&flags.backend, "backend", "", "storage backend: redis or sqlite")
		cmd.Flags().StringVar(&flags.debugDir, "debug-dir", "", "write raw proxy payloads to this directory")
	}
}

func runImport(cmd *cobra.Command, kind proxy.Kind) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	bus := events.NewBus()
	muncher.SubscribeNotes(bus, func(note muncher.Note) {
		if note.Message != "" {
			fmt.Fprintln(cmd.OutOrStdout(), note.Message)
		}
	})

	service, err := newOrchestrator(cfg, repo, muncher.NewBusNotifier(bus))
	if err != nil {
		return err
	}

	runner := &importRunner{service: service, out: cmd.OutOrStdout()}
	return runner.run(ctx, buildRunInput(cfg, kind, flags))
}

// applyFlags lays explicitly set flags over the loaded config
func applyFlags(cmd *cobra.Command, cfg *config.Config, f importFlags) {
	if cmd.Flags().Changed("sources") {
		cfg.Import.Sources = f.sources
	}
	if cmd.Flags().Changed("homebrew") {
		cfg.Import.Homebrew = selection.HomebrewPolicy(f.homebrew)
	}
	if cmd.Flags().Changed("modules") {
		cfg.Import.Modules = f.modules
	}
	if cmd.Flags().Changed("update-existing") {
		cfg.Import.UpdateExisting = f.updateExisting
	}
	if cmd.Flags().Changed("backend") {
		cfg.Storage.Backend = f.backend
	}
	if cmd.Flags().Changed("debug-dir") {
		cfg.Proxy.DebugDir = f.debugDir
	}
}

func buildRunInput(cfg *config.Config, kind proxy.Kind, f importFlags) *muncher.RunInput {
	return &muncher.RunInput{
		Kind: kind,
		Params: proxy.Params{
			AuthToken:  cfg.Proxy.AuthToken,
			ScopeID:    cfg.Proxy.ScopeID,
			FeatureKey: cfg.Proxy.PatreonKey,
		},
		Policy: &selection.Policy{
			SourceAllowList: cfg.Import.Sources,
			ExplicitIDs:     f.ids,
			Homebrew:        cfg.Import.Homebrew,
		},
		UpdateExisting:   cfg.Import.UpdateExisting,
		InstalledModules: cfg.Import.Modules,
	}
}

// importRunner runs one import and prints its summary
type importRunner struct {
	service muncher.Service
	out     io.Writer
}

func (r *importRunner) run(ctx context.Context, input *muncher.RunInput) error {
	output, err := r.service.Run(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, renderResults(output.Results))
	if len(output.ItemSpellResults) > 0 {
		fmt.Fprintln(r.out, "Item spells:")
		fmt.Fprintln(r.out, renderResults(output.ItemSpellResults))
	}

	counts := [][]string{}
	for _, op := range []compendium.Operation{
		compendium.OperationInserted,
		compendium.OperationUpdated,
		compendium.OperationSkipped,
		compendium.OperationFailed,
	} {
		n := 0
		for _, result := range output.Results {
			if result.Operation == op {
				n++
			}
		}
		counts = append(counts, []string{string(op), strconv.Itoa(n)})
	}
	fmt.Fprintln(r.out, renderTable([]string{"Operation", "Count"}, counts, []columnAlignment{alignLeft, alignRight}))

	return nil
}

func renderResults(results []compendium.Result) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		message := ""
		if result.Err != nil {
			message = result.Err.Error()
		}
		rows = append(rows, []string{result.Name, string(result.Operation), result.StorageID, message})
	}
	return renderTable([]string{"Name", "Operation", "Storage ID", "Error"}, rows, nil)
}
