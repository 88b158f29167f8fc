package compendium_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/idgen"
	compendiumrepo "github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium"
	compendiummock "github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium/mock"
	"github.com/KirkDiggler/rpg-muncher/internal/services/compendium"
	"github.com/KirkDiggler/rpg-muncher/internal/testutils"
	"github.com/KirkDiggler/rpg-muncher/internal/testutils/builders"
)

type UpserterTestSuite struct {
	suite.Suite
	ctx      context.Context
	repo     compendiumrepo.Repository
	upserter compendium.Upserter
	cleanup  func()
}

func (s *UpserterTestSuite) SetupTest() {
	s.ctx = context.Background()

	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := compendiumrepo.NewRedis(&compendiumrepo.RedisConfig{
		Client:      client,
		IDGenerator: idgen.NewSequential("doc"),
		Clock:       clock.Fixed{At: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	})
	s.Require().NoError(err)
	s.repo = repo

	s.upserter, err = compendium.New(&compendium.Config{Repository: repo, MaxConcurrent: 4})
	s.Require().NoError(err)
}

func (s *UpserterTestSuite) TearDownTest() {
	s.cleanup()
}

func item(id, name, text string) *entities.Entity {
	return builders.NewEntityBuilder().
		WithID(id).
		WithName(name).
		WithType(entities.TypeWeapon).
		WithDescription(text).
		Build()
}

func (s *UpserterTestSuite) stored(name string) *compendiumrepo.Document {
	out, err := s.repo.FindByName(s.ctx, compendiumrepo.FindByNameInput{
		Collection: compendiumrepo.CollectionInventory,
		Name:       name,
	})
	s.Require().NoError(err)
	return out.Document
}

func (s *UpserterTestSuite) TestInsertsMissingEntitiesInInputOrder() {
	input := &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionInventory,
		Entities: []*entities.Entity{
			item("item-1", "Longsword", "a sword"),
			item("item-2", "Dagger", "a knife"),
			item("item-3", "Flail", "a flail"),
		},
	}

	out, err := s.upserter.Upsert(s.ctx, input)
	s.Require().NoError(err)
	s.Require().Len(out.Results, 3)

	for i, result := range out.Results {
		s.Equal(input.Entities[i].Name, result.Name)
		s.Equal(compendium.OperationInserted, result.Operation)
		s.NotEmpty(result.StorageID)
		s.NoError(result.Err)
	}
	s.Equal(3, out.Count(compendium.OperationInserted))
	s.Len(out.Stored(), 3)
}

func (s *UpserterTestSuite) TestExistingNameWithoutUpdate() {
	_, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionInventory,
		Entities:   []*entities.Entity{item("item-1", "Flametongue", "original")},
	})
	s.Require().NoError(err)
	before := s.stored("Flametongue")

	out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionInventory,
		Entities:   []*entities.Entity{item("item-1", "Flametongue", "rewritten")},
	})
	s.Require().NoError(err)
	s.Require().Len(out.Results, 1)

	result := out.Results[0]
	s.Equal(compendium.OperationSkipped, result.Operation)
	s.Equal(before.StorageID, result.StorageID)
	s.Equal("original", result.Entity.Description())

	after := s.stored("Flametongue")
	s.Equal("original", after.Entity.Description())
	s.Equal(before.StorageID, after.StorageID)
}

func (s *UpserterTestSuite) TestExistingNameWithUpdatePreservesStorageID() {
	_, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionInventory,
		Entities:   []*entities.Entity{item("item-1", "Flametongue", "original")},
	})
	s.Require().NoError(err)
	before := s.stored("Flametongue")

	out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection:     compendiumrepo.CollectionInventory,
		Entities:       []*entities.Entity{item("item-1", "Flametongue", "rewritten")},
		UpdateExisting: true,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Results, 1)
	s.Equal(compendium.OperationUpdated, out.Results[0].Operation)
	s.Equal(before.StorageID, out.Results[0].StorageID)

	after := s.stored("Flametongue")
	s.Equal(before.StorageID, after.StorageID)
	s.Equal("rewritten", after.Entity.Description())
}

func (s *UpserterTestSuite) TestDuplicateIDsFailLaterOccurrences() {
	out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionInventory,
		Entities: []*entities.Entity{
			item("item-1", "Longsword", "first"),
			item("item-1", "Longsword Copy", "second"),
			nil,
		},
	})
	s.Require().NoError(err)
	s.Require().Len(out.Results, 3)

	s.Equal(compendium.OperationInserted, out.Results[0].Operation)

	s.Equal(compendium.OperationFailed, out.Results[1].Operation)
	s.True(errors.IsInvalidArgument(out.Results[1].Err))
	s.Empty(out.Results[1].StorageID)

	s.Equal(compendium.OperationFailed, out.Results[2].Operation)
	s.True(errors.IsInvalidArgument(out.Results[2].Err))

	_, err = s.repo.FindByName(s.ctx, compendiumrepo.FindByNameInput{
		Collection: compendiumrepo.CollectionInventory,
		Name:       "Longsword Copy",
	})
	s.True(errors.IsNotFound(err))
}

func (s *UpserterTestSuite) TestSameNameInOneBatchIsSerialized() {
	var batch []*entities.Entity
	for i := 0; i < 10; i++ {
		batch = append(batch, item(fmt.Sprintf("item-%d", i), "Dagger", fmt.Sprintf("copy %d", i)))
	}

	testCases := []struct {
		name           string
		collection     string
		updateExisting bool
		expectedOther  compendium.Operation
	}{
		{name: "skip existing", collection: "daggers-skip", updateExisting: false, expectedOther: compendium.OperationSkipped},
		{name: "update existing", collection: "daggers-update", updateExisting: true, expectedOther: compendium.OperationUpdated},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
				Collection:     tc.collection,
				Entities:       batch,
				UpdateExisting: tc.updateExisting,
			})
			s.Require().NoError(err)
			s.Equal(1, out.Count(compendium.OperationInserted))
			s.Equal(len(batch)-1, out.Count(tc.expectedOther))
			s.Equal(0, out.Count(compendium.OperationFailed))

			list, err := s.repo.List(s.ctx, compendiumrepo.ListInput{Collection: tc.collection})
			s.Require().NoError(err)
			s.Len(list.Documents, 1)

			for _, result := range out.Results {
				s.Equal(out.Results[0].StorageID, result.StorageID)
			}
		})
	}
}

func (s *UpserterTestSuite) TestInvalidInput() {
	_, err := s.upserter.Upsert(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = s.upserter.Upsert(s.ctx, &compendium.UpsertInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *UpserterTestSuite) TestNewValidatesConfig() {
	_, err := compendium.New(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = compendium.New(&compendium.Config{})
	s.True(errors.IsInvalidArgument(err))

	_, err = compendium.New(&compendium.Config{Repository: s.repo, MaxConcurrent: -1})
	s.True(errors.IsInvalidArgument(err))

	_, err = compendium.New(&compendium.Config{Repository: s.repo, MaxConcurrent: 65})
	s.True(errors.IsInvalidArgument(err))
}

func (s *UpserterTestSuite) TestEmptyBatch() {
	out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{Collection: compendiumrepo.CollectionMonsters})
	s.Require().NoError(err)
	s.Empty(out.Results)
}

func TestUpserterSuite(t *testing.T) {
	suite.Run(t, new(UpserterTestSuite))
}

type UpserterFailureTestSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	mockRepo *compendiummock.MockRepository
	upserter compendium.Upserter
}

func (s *UpserterFailureTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = compendiummock.NewMockRepository(s.ctrl)

	var err error
	s.upserter, err = compendium.New(&compendium.Config{Repository: s.mockRepo})
	s.Require().NoError(err)
}

func (s *UpserterFailureTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *UpserterFailureTestSuite) TestOneWriteFailureDoesNotAbortTheBatch() {
	s.mockRepo.EXPECT().
		FindByName(gomock.Any(), gomock.Any()).
		Return(nil, errors.NotFound("missing")).
		Times(3)
	s.mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input compendiumrepo.InsertInput) (*compendiumrepo.InsertOutput, error) {
			if input.Entity.Name == "Broken" {
				return nil, errors.Internal("disk full")
			}
			return &compendiumrepo.InsertOutput{Document: &compendiumrepo.Document{
				StorageID: "doc-" + input.Entity.ID,
				Name:      input.Entity.Name,
				Entity:    input.Entity,
			}}, nil
		}).
		Times(3)

	out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionMonsters,
		Entities: []*entities.Entity{
			item("a", "Wolf", ""),
			item("b", "Broken", ""),
			item("c", "Lich", ""),
		},
	})
	s.Require().NoError(err)
	s.Require().Len(out.Results, 3)

	s.Equal(compendium.OperationInserted, out.Results[0].Operation)
	s.Equal("doc-a", out.Results[0].StorageID)

	s.Equal(compendium.OperationFailed, out.Results[1].Operation)
	s.True(errors.IsInternal(out.Results[1].Err))
	s.Nil(out.Results[1].Entity)

	s.Equal(compendium.OperationInserted, out.Results[2].Operation)
	s.Len(out.Stored(), 2)
}

func (s *UpserterFailureTestSuite) TestInsertRaceFallsBackToExistingDocument() {
	existing := &compendiumrepo.Document{
		StorageID: "doc-other",
		Name:      "Wolf",
		Entity:    item("other", "Wolf", "from another writer"),
	}

	gomock.InOrder(
		s.mockRepo.EXPECT().
			FindByName(s.ctx, compendiumrepo.FindByNameInput{Collection: compendiumrepo.CollectionMonsters, Name: "Wolf"}).
			Return(nil, errors.NotFound("missing")),
		s.mockRepo.EXPECT().
			Insert(s.ctx, gomock.Any()).
			Return(nil, errors.AlreadyExists("name taken")),
		s.mockRepo.EXPECT().
			FindByName(s.ctx, compendiumrepo.FindByNameInput{Collection: compendiumrepo.CollectionMonsters, Name: "Wolf"}).
			Return(&compendiumrepo.FindByNameOutput{Document: existing}, nil),
	)

	out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionMonsters,
		Entities:   []*entities.Entity{item("wolf", "Wolf", "")},
	})
	s.Require().NoError(err)
	s.Require().Len(out.Results, 1)
	s.Equal(compendium.OperationSkipped, out.Results[0].Operation)
	s.Equal("doc-other", out.Results[0].StorageID)
	s.Equal(existing.Entity, out.Results[0].Entity)
}

func (s *UpserterFailureTestSuite) TestLookupFailureIsReported() {
	s.mockRepo.EXPECT().
		FindByName(s.ctx, gomock.Any()).
		Return(nil, errors.Unavailablef("redis down"))

	out, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection:     compendiumrepo.CollectionMonsters,
		Entities:       []*entities.Entity{item("wolf", "Wolf", "")},
		UpdateExisting: true,
	})
	s.Require().NoError(err)
	s.Equal(compendium.OperationFailed, out.Results[0].Operation)
	s.True(errors.IsUnavailable(out.Results[0].Err))
}

func TestUpserterFailureSuite(t *testing.T) {
	suite.Run(t, new(UpserterFailureTestSuite))
}

type UpserterSQLiteTestSuite struct {
	suite.Suite
	ctx      context.Context
	repo     *compendiumrepo.SQLiteRepository
	upserter compendium.Upserter
}

func (s *UpserterSQLiteTestSuite) SetupTest() {
	s.ctx = context.Background()

	repo, err := compendiumrepo.NewSQLite(s.ctx, &compendiumrepo.SQLiteConfig{
		Path:        filepath.Join(s.T().TempDir(), "compendium.db"),
		IDGenerator: idgen.NewSequential("doc"),
	})
	s.Require().NoError(err)
	s.repo = repo

	s.upserter, err = compendium.New(&compendium.Config{Repository: repo, MaxConcurrent: 8})
	s.Require().NoError(err)
}

func (s *UpserterSQLiteTestSuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func TestUpserterSQLiteSuite(t *testing.T) {
	suite.Run(t, new(UpserterSQLiteTestSuite))
}

func (s *UpserterSQLiteTestSuite) TestConcurrentBatchesAllLand() {
	const size = 200
	batch := make([]*entities.Entity, size)
	for i := range batch {
		batch[i] = item(fmt.Sprintf("item-%d", i), fmt.Sprintf("Item %d", i), "")
	}

	first, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection: compendiumrepo.CollectionInventory,
		Entities:   batch,
	})
	s.Require().NoError(err)
	s.Equal(size, first.Count(compendium.OperationInserted))
	s.Zero(first.Count(compendium.OperationFailed))

	second, err := s.upserter.Upsert(s.ctx, &compendium.UpsertInput{
		Collection:     compendiumrepo.CollectionInventory,
		Entities:       batch,
		UpdateExisting: true,
	})
	s.Require().NoError(err)
	s.Equal(size, second.Count(compendium.OperationUpdated))
	s.Zero(second.Count(compendium.OperationFailed))

	for i, result := range second.Results {
		s.Equal(first.Results[i].StorageID, result.StorageID, result.Name)
	}

	list, err := s.repo.List(s.ctx, compendiumrepo.ListInput{Collection: compendiumrepo.CollectionInventory})
	s.Require().NoError(err)
	s.Len(list.Documents, size)
}
