package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/proxy"
	"github.com/KirkDiggler/rpg-muncher/internal/config"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/orchestrators/muncher"
	munchermock "github.com/KirkDiggler/rpg-muncher/internal/orchestrators/muncher/mock"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/selection"
	"github.com/KirkDiggler/rpg-muncher/internal/services/compendium"
)

type ImportCommandTestSuite struct {
	suite.Suite
	ctx         context.Context
	ctrl        *gomock.Controller
	mockService *munchermock.MockService
	out         *bytes.Buffer
	runner      *importRunner
}

func (s *ImportCommandTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.mockService = munchermock.NewMockService(s.ctrl)
	s.out = &bytes.Buffer{}
	s.runner = &importRunner{service: s.mockService, out: s.out}
}

func (s *ImportCommandTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestImportCommandSuite(t *testing.T) {
	suite.Run(t, new(ImportCommandTestSuite))
}

func (s *ImportCommandTestSuite) TestRunPrintsResults() {
	input := &muncher.RunInput{Kind: proxy.KindItems}
	s.mockService.EXPECT().
		Run(s.ctx, input).
		Return(&muncher.RunOutput{
			Kind: proxy.KindItems,
			Results: []compendium.Result{
				{Name: "Flametongue", Operation: compendium.OperationSkipped, StorageID: "doc-1"},
				{Name: "Longsword", Operation: compendium.OperationInserted, StorageID: "doc-2"},
				{Name: "Broken", Operation: compendium.OperationFailed, Err: errors.Internal("disk full")},
			},
		}, nil)

	s.Require().NoError(s.runner.run(s.ctx, input))

	output := s.out.String()
	s.Contains(output, "Flametongue")
	s.Contains(output, "doc-2")
	s.Contains(output, "disk full")
	s.Contains(output, "skipped")
	s.NotContains(output, "Item spells")
}

func (s *ImportCommandTestSuite) TestRunReturnsRunFatalErrors() {
	input := &muncher.RunInput{Kind: proxy.KindMonsters}
	s.mockService.EXPECT().
		Run(s.ctx, input).
		Return(nil, errors.RemoteRejected("Patreon key is not valid"))

	err := s.runner.run(s.ctx, input)
	s.True(errors.IsRemoteRejected(err))
	s.Empty(s.out.String())
}

func (s *ImportCommandTestSuite) TestBuildRunInput() {
	cfg := config.Default()
	cfg.Proxy.AuthToken = "token"
	cfg.Proxy.ScopeID = "campaign-7"
	cfg.Proxy.PatreonKey = "beta"
	cfg.Import.Sources = []int{1, 3}
	cfg.Import.Homebrew = selection.HomebrewExclude
	cfg.Import.Modules = []string{"dae"}
	cfg.Import.UpdateExisting = true

	input := buildRunInput(cfg, proxy.KindItems, importFlags{ids: []string{"101"}})

	s.Equal(proxy.KindItems, input.Kind)
	s.Equal(proxy.Params{AuthToken: "token", ScopeID: "campaign-7", FeatureKey: "beta"}, input.Params)
	s.Equal(&selection.Policy{
		SourceAllowList: []int{1, 3},
		ExplicitIDs:     []string{"101"},
		Homebrew:        selection.HomebrewExclude,
	}, input.Policy)
	s.True(input.UpdateExisting)
	s.Equal([]string{"dae"}, input.InstalledModules)
}

func (s *ImportCommandTestSuite) TestApplyFlagsOnlyOverridesChangedFlags() {
	var f importFlags
	cmd := &cobra.Command{Use: "items"}
	cmd.Flags().IntSliceVar(&f.sources, "sources", nil, "")
	cmd.Flags().StringVar(&f.homebrew, "homebrew", "", "")
	cmd.Flags().StringSliceVar(&f.modules, "modules", nil, "")
	cmd.Flags().BoolVar(&f.updateExisting, "update-existing", false, "")
	cmd.Flags().StringVar(&f.backend, "backend", "", "")
	cmd.Flags().StringVar(&f.debugDir, "debug-dir", "", "")
	s.Require().NoError(cmd.Flags().Parse([]string{"--homebrew", "only", "--update-existing"}))

	cfg := config.Default()
	cfg.Import.Sources = []int{5}
	applyFlags(cmd, cfg, f)

	s.Equal(selection.HomebrewOnly, cfg.Import.Homebrew)
	s.True(cfg.Import.UpdateExisting)
	s.Equal([]int{5}, cfg.Import.Sources)
	s.Equal(config.BackendSQLite, cfg.Storage.Backend)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Name", "Count"}, [][]string{{"inserted", "2"}, {"short"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "inserted")
	assert.Contains(t, out, "short")
	assert.NotContains(t, out, "<nil>")

	assert.Empty(t, renderTable(nil, nil, nil))
}
