package proxy_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/proxy"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

type ClientTestSuite struct {
	suite.Suite
	ctx      context.Context
	handler  http.HandlerFunc
	server   *httptest.Server
	debugDir string
	client   proxy.Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.debugDir = s.T().TempDir()
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))

	client, err := proxy.New(&proxy.Config{BaseURL: s.server.URL + "/"})
	s.Require().NoError(err)
	s.client = client
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) respond(status int, body string) {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (s *ClientTestSuite) TestNew() {
	testCases := []struct {
		name    string
		config  *proxy.Config
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "missing base url", config: &proxy.Config{}, wantErr: true},
		{name: "valid", config: &proxy.Config{BaseURL: "https://proxy.example"}, wantErr: false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			client, err := proxy.New(tc.config)
			if tc.wantErr {
				s.Error(err)
				s.True(errors.IsInvalidArgument(err))
				s.Nil(client)
			} else {
				s.NoError(err)
				s.NotNil(client)
			}
		})
	}
}

func (s *ClientTestSuite) TestFetchSendsParamsAndDecodesRecords() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/proxy/items", r.URL.Path)
		s.Equal("application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("token-1", body["authToken"])
		s.Equal("campaign-9", body["scopeId"])
		s.Equal("beta-key", body["featureKey"])

		_, _ = io.WriteString(w, `{"success":true,"data":[
			{"id":1,"name":"Flametongue","isHomebrew":false,"sources":[{"sourceId":1}]},
			{"id":2,"name":"Bag of Tricks","isHomebrew":true,"bundleSize":2}
		]}`)
	}

	output, err := s.client.Fetch(s.ctx, &proxy.FetchInput{
		Kind:   proxy.KindItems,
		Params: proxy.Params{AuthToken: "token-1", ScopeID: "campaign-9", FeatureKey: "beta-key"},
	})

	s.Require().NoError(err)
	s.Require().Len(output.Records, 2)
	s.Equal("Flametongue", output.Records[0].Name)
	s.Equal(1, output.Records[0].Sources[0].SourceID)
	s.True(output.Records[1].IsHomebrew)
	s.Equal(2, output.Records[1].BundleSize)
}

func (s *ClientTestSuite) TestFetchRemoteRejectionKeepsMessage() {
	s.respond(http.StatusOK, `{"success":false,"message":"Patreon tier too low for monsters"}`)

	output, err := s.client.Fetch(s.ctx, &proxy.FetchInput{Kind: proxy.KindMonsters})

	s.Nil(output)
	s.True(errors.IsRemoteRejected(err))
	s.Equal("Patreon tier too low for monsters", errors.GetMessage(err))
	s.True(errors.IsRunFatal(err))
}

func (s *ClientTestSuite) TestFetchErrorMapping() {
	testCases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: "", check: errors.IsUnauthenticated},
		{name: "server error", status: http.StatusBadGateway, body: "<html>bad gateway</html>", check: errors.IsUnavailable},
		{name: "garbage body", status: http.StatusOK, body: "not json", check: errors.IsUnavailable},
		{name: "error status with success body", status: http.StatusInternalServerError, body: `{"success":true,"data":[]}`, check: errors.IsUnavailable},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.respond(tc.status, tc.body)

			output, err := s.client.Fetch(s.ctx, &proxy.FetchInput{Kind: proxy.KindItems})

			s.Nil(output)
			s.Require().Error(err)
			s.True(tc.check(err), "unexpected code %s", errors.GetCode(err))
			s.True(errors.IsRunFatal(err))
		})
	}
}

func (s *ClientTestSuite) TestFetchUnreachableProxy() {
	client, err := proxy.New(&proxy.Config{BaseURL: "http://127.0.0.1:1"})
	s.Require().NoError(err)

	output, err := client.Fetch(s.ctx, &proxy.FetchInput{Kind: proxy.KindItems})

	s.Nil(output)
	s.True(errors.IsUnavailable(err))
}

func (s *ClientTestSuite) TestFetchInvalidInput() {
	_, err := s.client.Fetch(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = s.client.Fetch(s.ctx, &proxy.FetchInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ClientTestSuite) TestDebugDumpDoesNotChangeResult() {
	body := `{"success":true,"data":[{"id":7,"name":"Potion of Healing"}]}`
	s.respond(http.StatusOK, body)

	client, err := proxy.New(&proxy.Config{BaseURL: s.server.URL, DebugDir: s.debugDir})
	s.Require().NoError(err)

	output, err := client.Fetch(s.ctx, &proxy.FetchInput{Kind: proxy.KindItems})
	s.Require().NoError(err)
	s.Require().Len(output.Records, 1)

	dumped, err := os.ReadFile(filepath.Join(s.debugDir, "items-raw.json"))
	s.Require().NoError(err)
	s.Equal(body, string(dumped))

	// an unwritable dump location is logged and ignored
	broken, err := proxy.New(&proxy.Config{BaseURL: s.server.URL, DebugDir: filepath.Join(s.debugDir, "missing", "dir")})
	s.Require().NoError(err)
	output, err = broken.Fetch(s.ctx, &proxy.FetchInput{Kind: proxy.KindItems})
	s.Require().NoError(err)
	s.Len(output.Records, 1)
}
