// Package srd loads the System Reference Document equipment list used by the
// rules-content substitution pass.
package srd

//go:generate mockgen -destination=mock/mock_client.go -package=srdmock github.com/KirkDiggler/rpg-muncher/internal/clients/srd Client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"

	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// Client defines the interface for SRD reference lookups
type Client interface {
	// LoadTable fetches every SRD equipment entry and indexes it by name
	LoadTable(ctx context.Context) (*Table, error)
}

// equipmentAPI is the part of the dnd5e-api client this package needs
type equipmentAPI interface {
	ListEquipment() ([]*entities.ReferenceItem, error)
	GetEquipment(key string) (dnd5e.EquipmentInterface, error)
}

// Config contains configuration options for the SRD client.
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to https://www.dnd5eapi.co/api/2014/)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// CacheTTL for the cached client (optional, defaults to 24 hours)
	CacheTTL time.Duration
	// MaxConcurrent caps parallel detail requests (optional, defaults to 8)
	MaxConcurrent int
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	return nil
}

type client struct {
	api           equipmentAPI
	maxConcurrent int
}

// New creates a new SRD client with the given configuration.
func New(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create D&D 5e API client: %w", err)
	}

	return &client{
		api:           dnd5e.NewCachedClient(baseClient, cfg.CacheTTL),
		maxConcurrent: cfg.MaxConcurrent,
	}, nil
}

func (c *client) LoadTable(_ context.Context) (*Table, error) {
	refs, err := c.api.ListEquipment()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to list SRD equipment")
	}

	references, err := c.loadDetails(refs)
	if err != nil {
		return nil, err
	}

	return NewTable(references), nil
}

// loadDetails loads equipment details concurrently, keeping reference order
func (c *client) loadDetails(refs []*entities.ReferenceItem) ([]*Reference, error) {
	slog.Info("Loading SRD equipment details", "count", len(refs))
	references := make([]*Reference, len(refs))
	errChan := make(chan error, len(refs))
	sem := make(chan struct{}, c.maxConcurrent)
	var wg sync.WaitGroup

	for i, ref := range refs {
		if ref == nil {
			continue
		}
		wg.Add(1)
		go func(idx int, key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item, err := c.api.GetEquipment(key)
			if err != nil {
				errChan <- fmt.Errorf("failed to get equipment %s: %w", key, err)
				return
			}
			references[idx] = convertEquipment(item)
		}(i, ref.Key)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to load SRD equipment")
		}
	}

	return references, nil
}

// convertEquipment flattens the dnd5e-api equipment variants into a Reference
func convertEquipment(equipment dnd5e.EquipmentInterface) *Reference {
	if equipment == nil {
		return nil
	}

	ref := &Reference{Type: equipment.GetType()}

	switch eq := equipment.(type) {
	case *entities.Weapon:
		ref.Key = eq.Key
		ref.Name = eq.Name
		ref.Weight = float64(eq.Weight)
		ref.WeaponCategory = eq.WeaponCategory
		ref.WeaponRange = eq.WeaponRange
		ref.Category = categoryKey(eq.EquipmentCategory)
		ref.Cost = convertCost(eq.Cost)
		if eq.Damage != nil {
			ref.DamageDice = eq.Damage.DamageDice
			if eq.Damage.DamageType != nil {
				ref.DamageType = eq.Damage.DamageType.Name
			}
		}
		for _, prop := range eq.Properties {
			if prop != nil {
				ref.Properties = append(ref.Properties, prop.Name)
			}
		}

	case *entities.Armor:
		ref.Key = eq.Key
		ref.Name = eq.Name
		ref.Weight = float64(eq.Weight)
		ref.ArmorCategory = eq.ArmorCategory
		ref.StrengthMinimum = eq.StrMinimum
		ref.StealthDisadvantage = eq.StealthDisadvantage
		ref.Category = categoryKey(eq.EquipmentCategory)
		ref.Cost = convertCost(eq.Cost)
		if eq.ArmorClass != nil {
			ref.ArmorClassBase = eq.ArmorClass.Base
			ref.ArmorDexBonus = eq.ArmorClass.DexBonus
		}

	case *entities.Equipment:
		ref.Key = eq.Key
		ref.Name = eq.Name
		ref.Weight = float64(eq.Weight)
		ref.Category = categoryKey(eq.EquipmentCategory)
		ref.Cost = convertCost(eq.Cost)
	}

	return ref
}

func categoryKey(item *entities.ReferenceItem) string {
	if item == nil {
		return ""
	}
	return item.Key
}

func convertCost(cost *entities.Cost) *Cost {
	if cost == nil {
		return nil
	}
	return &Cost{Quantity: cost.Quantity, Unit: cost.Unit}
}
