// Package selection filters a raw batch down to the records a run imports.
package selection

import (
	"log/slog"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// HomebrewPolicy decides what happens to records flagged as homebrew
type HomebrewPolicy string

const (
	// HomebrewInclude keeps official and homebrew records
	HomebrewInclude HomebrewPolicy = "include"
	// HomebrewExclude drops homebrew records
	HomebrewExclude HomebrewPolicy = "exclude"
	// HomebrewOnly keeps only homebrew records
	HomebrewOnly HomebrewPolicy = "only"
)

// Validate checks the policy value; the empty value is treated as include.
func (p HomebrewPolicy) Validate() error {
	switch p {
	case "", HomebrewInclude, HomebrewExclude, HomebrewOnly:
		return nil
	default:
		return errors.InvalidArgumentf("unknown homebrew policy %q", p)
	}
}

// Policy controls which raw records survive selection
type Policy struct {
	// SourceAllowList keeps records with any listed source; empty disables source filtering
	SourceAllowList []int
	// ExplicitIDs keeps only these definition ids and bypasses source filtering
	ExplicitIDs []string
	// Homebrew is applied only when SourceAllowList is empty
	Homebrew HomebrewPolicy
}

// Validate validates the policy
func (p *Policy) Validate() error {
	if p == nil {
		return nil
	}
	return p.Homebrew.Validate()
}

// Select returns the records allowed by policy in their original order.
// A nil policy keeps everything.
func Select(records []entities.RawRecord, policy *Policy) []entities.RawRecord {
	if policy == nil {
		return records
	}

	selected := records
	switch {
	case len(policy.ExplicitIDs) > 0:
		selected = filter(selected, byExplicitID(policy.ExplicitIDs))
	case len(policy.SourceAllowList) > 0:
		selected = filter(selected, bySource(policy.SourceAllowList))
	}

	// Homebrew policy is skipped whenever an allow-list is present, including when
	// explicit ids made the allow-list irrelevant. Existing imports rely on this.
	if len(policy.SourceAllowList) == 0 {
		selected = filter(selected, byHomebrew(policy.Homebrew))
	}

	slog.Debug("Selected records",
		"input", len(records),
		"output", len(selected),
		"explicit_ids", len(policy.ExplicitIDs),
		"sources", len(policy.SourceAllowList),
		"homebrew", string(policy.Homebrew))

	return selected
}

func filter(records []entities.RawRecord, keep func(entities.RawRecord) bool) []entities.RawRecord {
	out := make([]entities.RawRecord, 0, len(records))
	for _, record := range records {
		if keep(record) {
			out = append(out, record)
		}
	}
	return out
}

func byExplicitID(ids []string) func(entities.RawRecord) bool {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(r entities.RawRecord) bool {
		_, ok := set[r.DefinitionID()]
		return ok
	}
}

func bySource(sources []int) func(entities.RawRecord) bool {
	set := make(map[int]struct{}, len(sources))
	for _, s := range sources {
		set[s] = struct{}{}
	}
	return func(r entities.RawRecord) bool {
		return r.HasSource(set)
	}
}

func byHomebrew(policy HomebrewPolicy) func(entities.RawRecord) bool {
	switch policy {
	case HomebrewOnly:
		return func(r entities.RawRecord) bool { return r.IsHomebrew }
	case HomebrewExclude:
		return func(r entities.RawRecord) bool { return !r.IsHomebrew }
	default:
		return func(entities.RawRecord) bool { return true }
	}
}
