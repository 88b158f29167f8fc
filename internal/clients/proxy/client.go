// Package proxy fetches raw content records from the import proxy service.
package proxy

//go:generate mockgen -destination=mock/mock_client.go -package=proxymock github.com/KirkDiggler/rpg-muncher/internal/clients/proxy Client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// Kind selects the content family to fetch.
type Kind string

// Supported content kinds
const (
	KindItems    Kind = "items"
	KindMonsters Kind = "monsters"
)

// Params are the acquisition parameters sent to the proxy.
type Params struct {
	// AuthToken proves access to the upstream account
	AuthToken string
	// ScopeID narrows the request, e.g. to a campaign
	ScopeID string
	// FeatureKey unlocks gated proxy features
	FeatureKey string
}

// FetchInput defines the input for a fetch
type FetchInput struct {
	Kind   Kind
	Params Params
}

// FetchOutput carries the raw batch
type FetchOutput struct {
	Records []entities.RawRecord
}

// Client defines the interface for the import proxy
type Client interface {
	// Fetch downloads one raw batch. It never retries.
	// Returns errors.Unavailable for transport failures and unreadable payloads
	// Returns errors.Unauthenticated / errors.PermissionDenied when credentials are refused
	// Returns errors.RemoteRejected with the proxy's own message when success=false
	Fetch(ctx context.Context, input *FetchInput) (*FetchOutput, error)
}

// Config contains configuration options for the proxy client.
type Config struct {
	// BaseURL of the proxy, e.g. https://proxy.example.com
	BaseURL string
	// HTTPTimeout for requests (optional, defaults to 60 seconds)
	HTTPTimeout time.Duration
	// DebugDir, when set, receives a verbatim copy of every payload
	DebugDir string
	// HTTPClient overrides the default client (optional)
	HTTPClient *http.Client
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("BaseURL", cfg.BaseURL, vb)
	if err := vb.Build(); err != nil {
		return err
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	return nil
}

type client struct {
	baseURL    string
	debugDir   string
	httpClient *http.Client
}

// New creates a new proxy client with the given configuration.
func New(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &client{
		baseURL:    cfg.BaseURL,
		debugDir:   cfg.DebugDir,
		httpClient: httpClient,
	}, nil
}

type fetchRequest struct {
	AuthToken  string `json:"authToken"`
	ScopeID    string `json:"scopeId"`
	FeatureKey string `json:"featureKey"`
}

type fetchResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Data    []entities.RawRecord `json:"data"`
}

func (c *client) Fetch(ctx context.Context, input *FetchInput) (*FetchOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Kind == "" {
		return nil, errors.InvalidArgument("kind is required")
	}

	body, err := json.Marshal(fetchRequest{
		AuthToken:  input.Params.AuthToken,
		ScopeID:    input.Params.ScopeID,
		FeatureKey: input.Params.FeatureKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal fetch request")
	}

	url := c.baseURL + "/proxy/" + string(input.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", url)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Fetching raw records from proxy", "kind", input.Kind, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to reach proxy for %s", input.Kind)
	}
	defer func() {
		_ = resp.Body.Close() // nolint:errcheck // safe to ignore on read-only body
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to read %s payload", input.Kind)
	}

	c.dumpPayload(input.Kind, payload)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, errors.Unauthenticated("proxy rejected the auth token").
			WithMeta("status", resp.StatusCode)
	case http.StatusForbidden:
		return nil, errors.PermissionDenied("proxy denied access to this feature").
			WithMeta("status", resp.StatusCode)
	}

	var decoded fetchResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable,
			"failed to decode %s payload (status %d)", input.Kind, resp.StatusCode)
	}

	if !decoded.Success {
		return nil, errors.RemoteRejected(decoded.Message).
			WithMeta("kind", string(input.Kind))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Unavailablef("proxy returned status %d for %s", resp.StatusCode, input.Kind)
	}

	slog.Info("Fetched raw records", "kind", input.Kind, "count", len(decoded.Data))

	return &FetchOutput{Records: decoded.Data}, nil
}

// dumpPayload writes the raw body for diagnostics. Failures are only logged.
func (c *client) dumpPayload(kind Kind, payload []byte) {
	if c.debugDir == "" {
		return
	}

	path := filepath.Join(c.debugDir, string(kind)+"-raw.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		slog.Warn("Failed to write debug payload", "path", path, "error", err)
		return
	}
	slog.Debug("Wrote debug payload", "path", path, "bytes", len(payload))
}
