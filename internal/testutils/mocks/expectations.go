// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/proxy"
	proxymock "github.com/KirkDiggler/rpg-muncher/internal/clients/proxy/mock"
	"github.com/KirkDiggler/rpg-muncher/internal/clients/srd"
	srdmock "github.com/KirkDiggler/rpg-muncher/internal/clients/srd/mock"
	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
)

// ExpectFetch sets up one successful fetch of kind returning records
func ExpectFetch(ctx context.Context, mockClient *proxymock.MockClient, kind proxy.Kind, records []entities.RawRecord) *gomock.Call {
	return mockClient.EXPECT().
		Fetch(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *proxy.FetchInput) (*proxy.FetchOutput, error) {
			if input.Kind != kind {
				return nil, errors.InvalidArgumentf("unexpected kind %s", input.Kind)
			}
			return &proxy.FetchOutput{Records: records}, nil
		})
}

// ExpectFetchRejected sets up a fetch the proxy refuses with message
func ExpectFetchRejected(ctx context.Context, mockClient *proxymock.MockClient, message string) *gomock.Call {
	return mockClient.EXPECT().
		Fetch(ctx, gomock.Any()).
		Return(nil, errors.RemoteRejected(message))
}

// ExpectSRDTable sets up the SRD table load with the given references
func ExpectSRDTable(ctx context.Context, mockClient *srdmock.MockClient, refs ...*srd.Reference) *gomock.Call {
	return mockClient.EXPECT().
		LoadTable(ctx).
		Return(srd.NewTable(refs), nil)
}
