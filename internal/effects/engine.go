// Package effects synthesizes behavioral effects for imported entities from
// their names and descriptive text.
package effects

import (
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// Config holds the configuration for an Engine
type Config struct {
	// Modules is the availability snapshot for the current run
	Modules Modules
	// Compendium labels the collection used in transferred effect origins (optional, defaults to "monsters")
	Compendium string
	// Rules overrides the special-case table (optional)
	Rules []Rule
	// Adjustments overrides the per-name fix table (optional)
	Adjustments []Adjustment
}

// Validate validates the config and sets defaults
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.Compendium == "" {
		c.Compendium = "monsters"
	}
	if c.Rules == nil {
		c.Rules = MonsterFeatureRules()
	}
	if c.Adjustments == nil {
		c.Adjustments = Adjustments()
	}
	for i, rule := range c.Rules {
		if rule.Match == nil || rule.Build == nil {
			return errors.InvalidArgumentf("rule %d (%s) needs a matcher and a builder", i, rule.Name)
		}
	}
	return nil
}

// Engine runs effect synthesis for one import run. It is safe for concurrent
// use because it holds only read-only tables.
type Engine struct {
	modules     Modules
	compendium  string
	rules       []Rule
	adjustments []Adjustment
}

// NewEngine creates an engine
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		modules:     cfg.Modules,
		compendium:  cfg.Compendium,
		rules:       cfg.Rules,
		adjustments: cfg.Adjustments,
	}, nil
}

// Modules returns the snapshot the engine was built with
func (e *Engine) Modules() Modules {
	return e.modules
}

// Synthesize returns a copy of entity with synthesized effects. Without the
// core automation modules the input is returned as is. A failing step leaves
// the entity as it was before that step.
func (e *Engine) Synthesize(entity *entities.Entity) *entities.Entity {
	if entity == nil || !e.modules.Core() {
		return entity
	}

	out := entity.Clone()
	out = e.step(out, "absorption", absorption)

	for i := range out.SubItems {
		if out.SubItems[i] == nil {
			continue
		}
		if len(out.SubItems[i].SubItems) > 0 {
			out.SubItems[i] = e.Synthesize(out.SubItems[i])
		}

		e.itemStep(out, i, "special-case", func(owner, item *entities.Entity) error {
			rule, err := Dispatch(e.rules, owner, item)
			if rule != nil && err == nil {
				slog.Debug("Applied feature rule", "entity", owner.Name, "item", item.Name, "rule", rule.Name)
			}
			return err
		})

		if out.SubItems[i].Type != entities.TypeSpell {
			e.itemStep(out, i, "over-time", overTime)
		}

		e.itemStep(out, i, "force-effect", forceEffect)
	}

	for _, adjustment := range e.adjustments {
		if !adjustment.matches(out.Name) {
			continue
		}
		for i, item := range out.SubItems {
			if item == nil || item.Name != adjustment.SubItem {
				continue
			}
			apply := adjustment.Apply
			e.itemStep(out, i, "adjustment", func(_, item *entities.Entity) error {
				return apply(item, e.modules)
			})
		}
	}

	return e.step(out, "transfer", func(ent *entities.Entity) error {
		transferEffects(ent, e.compendium)
		return nil
	})
}

// step runs fn on a copy of entity and keeps the copy only on success
func (e *Engine) step(entity *entities.Entity, name string, fn func(*entities.Entity) error) *entities.Entity {
	snapshot := entity.Clone()
	if err := guard(func() error { return fn(snapshot) }); err != nil {
		logStepFailure(entity.Name, "", name, err)
		return entity
	}
	return snapshot
}

// itemStep runs fn on a copy of the i-th sub-item and swaps it in on success
func (e *Engine) itemStep(owner *entities.Entity, i int, name string, fn Builder) {
	item := owner.SubItems[i]
	snapshot := item.Clone()
	if err := guard(func() error { return fn(owner, snapshot) }); err != nil {
		logStepFailure(owner.Name, item.Name, name, err)
		return
	}
	owner.SubItems[i] = snapshot
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Sprintf("panic: %v", r))
		}
	}()
	return fn()
}

func logStepFailure(entity, item, step string, err error) {
	if errors.IsFailedPrecondition(err) {
		slog.Debug("Synthesis step skipped", "entity", entity, "item", item, "step", step, "reason", err)
		return
	}
	slog.Warn("Synthesis step failed, entity left unchanged",
		"entity", entity,
		"item", item,
		"step", step,
		"error", err)
}
