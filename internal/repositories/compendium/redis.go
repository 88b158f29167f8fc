package compendium

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-muncher/internal/redis"
)

const compendiumKeyPrefix = "compendium:"

type redisRepository struct {
	client      redisclient.Client
	idGenerator idgen.Generator
	clock       clock.Clock
}

// RedisConfig contains configuration for the Redis compendium repository.
type RedisConfig struct {
	Client redisclient.Client
	// IDGenerator assigns storage ids (optional, defaults to UUIDs)
	IDGenerator idgen.Generator
	// Clock stamps UpdatedAt (optional)
	Clock clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = idgen.NewUUID("")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return nil
}

// NewRedis creates a new Redis-backed compendium repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{
		client:      cfg.Client,
		idGenerator: cfg.IDGenerator,
		clock:       cfg.Clock,
	}, nil
}

// documentData is what gets serialized to Redis
type documentData struct {
	StorageID string           `json:"storage_id"`
	Name      string           `json:"name"`
	Entity    *entities.Entity `json:"entity"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (d *documentData) toDocument() *Document {
	return &Document{
		StorageID: d.StorageID,
		Name:      d.Name,
		Entity:    d.Entity,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *redisRepository) FindByName(ctx context.Context, input FindByNameInput) (*FindByNameOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	errors.ValidateRequired("name", input.Name, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	storageID, err := r.client.HGet(ctx, NamesKey(input.Collection), input.Name).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("%s not found in %s", input.Name, input.Collection)
		}
		return nil, errors.Wrapf(err, "failed to look up %s", input.Name)
	}

	data, err := r.get(ctx, input.Collection, storageID)
	if err != nil {
		return nil, err
	}

	return &FindByNameOutput{Document: data.toDocument()}, nil
}

func (r *redisRepository) Insert(ctx context.Context, input InsertInput) (*InsertOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	validateEntity(input.Entity, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	data := &documentData{
		StorageID: r.idGenerator.Generate(),
		Name:      input.Entity.Name,
		Entity:    input.Entity,
		UpdatedAt: r.clock.Now(),
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal document")
	}

	// Write the body first so a claimed name always points at a document
	docKey := DocumentKey(input.Collection, data.StorageID)
	if err := r.client.Set(ctx, docKey, jsonData, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store %s", data.Name)
	}

	claimed, err := r.client.HSetNX(ctx, NamesKey(input.Collection), data.Name, data.StorageID).Result()
	if err != nil || !claimed {
		if delErr := r.client.Del(ctx, docKey).Err(); delErr != nil {
			return nil, errors.Wrapf(delErr, "failed to clean up document %s", data.StorageID)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to index %s", data.Name)
		}
		return nil, errors.AlreadyExistsf("%s already exists in %s", data.Name, input.Collection)
	}

	return &InsertOutput{Document: data.toDocument()}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	errors.ValidateRequired("storage_id", input.StorageID, vb)
	validateEntity(input.Entity, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	existing, err := r.get(ctx, input.Collection, input.StorageID)
	if err != nil {
		return nil, err
	}

	namesKey := NamesKey(input.Collection)
	renamed := existing.Name != input.Entity.Name
	if renamed {
		owner, err := r.client.HGet(ctx, namesKey, input.Entity.Name).Result()
		if err != nil && err != redis.Nil {
			return nil, errors.Wrapf(err, "failed to look up %s", input.Entity.Name)
		}
		if err == nil && owner != input.StorageID {
			return nil, errors.AlreadyExistsf("%s already exists in %s", input.Entity.Name, input.Collection)
		}
	}

	data := &documentData{
		StorageID: input.StorageID,
		Name:      input.Entity.Name,
		Entity:    input.Entity,
		UpdatedAt: r.clock.Now(),
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal document")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, DocumentKey(input.Collection, input.StorageID), jsonData, 0)
	if renamed {
		pipe.HDel(ctx, namesKey, existing.Name)
		pipe.HSet(ctx, namesKey, data.Name, data.StorageID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update %s", data.Name)
	}

	return &UpdateOutput{Document: data.toDocument()}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	names, err := r.client.HGetAll(ctx, NamesKey(input.Collection)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", input.Collection)
	}
	if len(names) == 0 {
		return &ListOutput{Documents: []*Document{}}, nil
	}

	keys := make([]string, 0, len(names))
	for _, storageID := range names {
		keys = append(keys, DocumentKey(input.Collection, storageID))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", input.Collection)
	}

	documents := make([]*Document, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Index entry without a body; skip rather than fail the listing
			continue
		}
		var data documentData
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal %s", keys[i])
		}
		documents = append(documents, data.toDocument())
	}

	sort.Slice(documents, func(i, j int) bool { return documents[i].Name < documents[j].Name })
	return &ListOutput{Documents: documents}, nil
}

func (r *redisRepository) get(ctx context.Context, collection, storageID string) (*documentData, error) {
	result, err := r.client.Get(ctx, DocumentKey(collection, storageID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("document %s not found in %s", storageID, collection)
		}
		return nil, errors.Wrapf(err, "failed to get document %s", storageID)
	}

	var data documentData
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal document %s", storageID)
	}
	return &data, nil
}

// NamesKey returns the Redis hash mapping names to storage ids
// Exposed for testing purposes
func NamesKey(collection string) string {
	return fmt.Sprintf("%s%s:names", compendiumKeyPrefix, collection)
}

// DocumentKey returns the Redis key holding a document
// Exposed for testing purposes
func DocumentKey(collection, storageID string) string {
	return fmt.Sprintf("%s%s:doc:%s", compendiumKeyPrefix, collection, storageID)
}
