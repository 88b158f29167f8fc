// Package muncher runs the import pipeline: fetch, select, normalize,
// transform, synthesize and store.
package muncher

//go:generate mockgen -destination=mock/mock_service.go -package=munchermock github.com/KirkDiggler/rpg-muncher/internal/orchestrators/muncher Service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/proxy"
	"github.com/KirkDiggler/rpg-muncher/internal/clients/srd"
	"github.com/KirkDiggler/rpg-muncher/internal/effects"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/normalize"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/selection"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/transform"
	compendiumrepo "github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-muncher/internal/services/compendium"
)

// Service defines the interface for import runs
type Service interface {
	// Run executes one import. Only acquisition failures and remote rejections
	// are returned as errors; per-entity problems are logged or reported in
	// the output results.
	Run(ctx context.Context, input *RunInput) (*RunOutput, error)
}

// Config holds the dependencies for the orchestrator
type Config struct {
	Proxy    proxy.Client
	Parser   normalize.Parser
	Upserter compendium.Upserter
	// SRD loads the reference table for item runs (optional)
	SRD srd.Client
	// Notifier receives progress notes (optional, defaults to logging)
	Notifier Notifier
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Proxy == nil {
		vb.RequiredField("Proxy")
	}
	if c.Parser == nil {
		vb.RequiredField("Parser")
	}
	if c.Upserter == nil {
		vb.RequiredField("Upserter")
	}
	if err := vb.Build(); err != nil {
		return err
	}

	if c.Notifier == nil {
		c.Notifier = LogNotifier{}
	}
	return nil
}

type orchestrator struct {
	proxy    proxy.Client
	parser   normalize.Parser
	upserter compendium.Upserter
	srd      srd.Client
	notifier Notifier
}

// NewOrchestrator creates a new import orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		proxy:    cfg.Proxy,
		parser:   cfg.Parser,
		upserter: cfg.Upserter,
		srd:      cfg.SRD,
		notifier: cfg.Notifier,
	}, nil
}

// run carries the state of one import run
type run struct {
	updateExisting bool
	modules        effects.Modules
	collection     string
}

func (o *orchestrator) Run(ctx context.Context, input *RunInput) (*RunOutput, error) {
	r, err := o.start(input)
	if err != nil {
		return nil, err
	}
	started := time.Now()

	o.notifier.Notify(ctx, Note{Stage: StageDownload, Message: fmt.Sprintf("Downloading %s data..", input.Kind)})

	fetched, err := o.proxy.Fetch(ctx, &proxy.FetchInput{Kind: input.Kind, Params: input.Params})
	if err != nil {
		o.notifier.Notify(ctx, Note{Stage: StageFailure, Message: "Failure: " + errors.GetMessage(err)})
		return nil, err
	}

	selected := selection.Select(fetched.Records, input.Policy)

	o.notifier.Notify(ctx, Note{
		Stage:   StageParse,
		Message: fmt.Sprintf("Parsing %s data..", input.Kind),
		Count:   len(selected),
	})

	output := &RunOutput{
		Kind:       input.Kind,
		Collection: r.collection,
		Modules:    r.modules,
	}

	var batch []*entities.Entity
	switch input.Kind {
	case proxy.KindItems:
		batch, output.ItemSpellResults = o.prepareItems(ctx, r, selected)
	case proxy.KindMonsters:
		batch = o.prepareMonsters(ctx, r, selected)
	}

	output.Entities = batch

	o.notifier.Notify(ctx, Note{
		Stage:   StageImport,
		Message: fmt.Sprintf("Importing %d %s!", len(batch), input.Kind),
		Count:   len(batch),
	})

	upserted, err := o.upserter.Upsert(ctx, &compendium.UpsertInput{
		Collection:     r.collection,
		Entities:       batch,
		UpdateExisting: input.UpdateExisting,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store %s", input.Kind)
	}
	output.Results = upserted.Results

	slog.Info("Import run complete",
		"kind", input.Kind,
		"selected", len(selected),
		"inserted", upserted.Count(compendium.OperationInserted),
		"updated", upserted.Count(compendium.OperationUpdated),
		"skipped", upserted.Count(compendium.OperationSkipped),
		"failed", upserted.Count(compendium.OperationFailed),
		"duration", time.Since(started))

	o.notifier.Notify(ctx, Note{
		Stage:   StageComplete,
		Message: fmt.Sprintf("Imported %d %s", len(batch)-upserted.Count(compendium.OperationFailed), input.Kind),
		Count:   len(batch),
	})

	return output, nil
}

// start validates the input and takes the module snapshot for the run
func (o *orchestrator) start(input *RunInput) (*run, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("kind", string(input.Kind), []string{string(proxy.KindItems), string(proxy.KindMonsters)}, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	if err := input.Policy.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		updateExisting: input.UpdateExisting,
		modules:        effects.DetectModules(input.InstalledModules),
		collection:     compendiumrepo.CollectionInventory,
	}
	if input.Kind == proxy.KindMonsters {
		r.collection = compendiumrepo.CollectionMonsters
	}

	slog.Debug("Starting import run",
		"kind", input.Kind,
		"collection", r.collection,
		"core_modules", r.modules.Core(),
		"configured", r.modules.Configured,
		"update_existing", input.UpdateExisting)

	return r, nil
}

func (o *orchestrator) prepareItems(ctx context.Context, r *run, records []entities.RawRecord) ([]*entities.Entity, []compendium.Result) {
	parseCtx := normalize.NewParseContextBuilder().
		WithInventory(normalize.WrapInventory(records)).
		Build()
	parsed := o.parser.ParseInventory(parseCtx)

	var spellResults []compendium.Result
	if r.modules.MagicItems && len(parsed.ItemSpells) > 0 {
		spellResults = o.storeItemSpells(ctx, r, parsed.Entities, parsed.ItemSpells)
	}

	chain := o.buildChain(ctx, r, true)
	return chain.Transform(parsed.Entities), spellResults
}

func (o *orchestrator) prepareMonsters(ctx context.Context, r *run, records []entities.RawRecord) []*entities.Entity {
	parsed := o.parser.ParseMonsters(records)

	chain := o.buildChain(ctx, r, false)
	transformed := chain.Transform(parsed)

	engine, err := effects.NewEngine(&effects.Config{
		Modules:    r.modules,
		Compendium: r.collection,
	})
	if err != nil {
		// The default tables always validate; keep the batch unsynthesized if they ever do not
		slog.Error("Failed to create effect engine", "error", err)
		return transformed
	}

	synthesized := make([]*entities.Entity, len(transformed))
	for i, entity := range transformed {
		synthesized[i] = engine.Synthesize(entity)
	}
	return synthesized
}

// buildChain fixes the static tables of the transformation chain for one run
func (o *orchestrator) buildChain(ctx context.Context, r *run, withSRD bool) *transform.Chain {
	var table *srd.Table
	if withSRD && o.srd != nil {
		loaded, err := o.srd.LoadTable(ctx)
		if err != nil {
			slog.Warn("Failed to load SRD reference table, continuing without substitution", "error", err)
		} else {
			table = loaded
		}
	}

	chain, err := transform.NewChain(&transform.Config{
		SRD:     table,
		Modules: r.modules,
	})
	if err != nil {
		slog.Error("Failed to create transformation chain", "error", err)
		chain = transform.NewChainWithPasses()
	}
	return chain
}
