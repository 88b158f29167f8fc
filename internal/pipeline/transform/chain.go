// Package transform runs the fixed sequence of per-entity passes between
// normalization and effect synthesis.
package transform

import (
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/srd"
	"github.com/KirkDiggler/rpg-muncher/internal/effects"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// Pass is one transformation step. Apply receives a private copy of the entity
// and may modify it; returning an error discards the copy.
type Pass interface {
	Name() string
	Apply(entity *entities.Entity) (*entities.Entity, error)
}

// Config holds the static tables a chain is built from
type Config struct {
	// SRD is the reference table for rules-content substitution (optional)
	SRD *srd.Table
	// Modules is the availability snapshot for the run
	Modules effects.Modules
	// Premades overrides the premade rule table (optional)
	Premades []effects.Rule
}

// Validate validates the config and sets defaults
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.SRD == nil {
		c.SRD = srd.NewTable(nil)
	}
	if c.Premades == nil {
		c.Premades = PremadeRules()
	}
	return nil
}

// Chain applies its passes in order to every entity
type Chain struct {
	passes []Pass
}

// NewChain builds the standard chain: srd, dae, vision5e, premades
func NewChain(cfg *Config) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chain{passes: []Pass{
		&srdPass{table: cfg.SRD},
		&daePass{modules: cfg.Modules},
		&vision5ePass{modules: cfg.Modules},
		&premadePass{modules: cfg.Modules, rules: cfg.Premades},
	}}, nil
}

// NewChainWithPasses builds a chain from explicit passes
func NewChainWithPasses(passes ...Pass) *Chain {
	return &Chain{passes: passes}
}

// Passes returns the pass names in order
func (c *Chain) Passes() []string {
	names := make([]string, len(c.passes))
	for i, pass := range c.passes {
		names[i] = pass.Name()
	}
	return names
}

// Transform returns one output entity per input entity, in order
func (c *Chain) Transform(list []*entities.Entity) []*entities.Entity {
	out := make([]*entities.Entity, len(list))
	for i, entity := range list {
		current := entity
		for _, pass := range c.passes {
			current = c.apply(pass, current)
		}
		out[i] = current
	}
	return out
}

func (c *Chain) apply(pass Pass, entity *entities.Entity) *entities.Entity {
	if entity == nil {
		return nil
	}

	result, err := safeApply(pass, entity.Clone())
	if err != nil {
		slog.Warn("Transform pass failed, entity left unchanged",
			"pass", pass.Name(),
			"entity", entity.Name,
			"error", err)
		return entity
	}
	if result == nil {
		return entity
	}
	return result
}

func safeApply(pass Pass, entity *entities.Entity) (result *entities.Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Sprintf("panic in %s: %v", pass.Name(), r))
		}
	}()
	return pass.Apply(entity)
}
