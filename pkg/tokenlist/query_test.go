package tokenlist

import (
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{name: "empty token query", query: Query{Category: CategoryToken}},
		{name: "valid reviewer", query: Query{Category: CategoryToken, Reviewer: "0x15a918087ab12d86"}},
		{name: "mixed case reviewer", query: Query{Category: CategoryNFT, Reviewer: "0xABCDEF0123456789"}},
		{name: "invalid reviewer", query: Query{Category: CategoryToken, Reviewer: "0xNOTVALID"}, wantErr: true},
		{name: "reviewer too long", query: Query{Category: CategoryToken, Reviewer: "0x15a918087ab12d8600"}, wantErr: true},
		{name: "reviewer without prefix", query: Query{Category: CategoryToken, Reviewer: "15a918087ab12d86"}, wantErr: true},
		{name: "featured token filter", query: Query{Category: CategoryToken, Filter: FilterFeatured}},
		{name: "blocked token filter", query: Query{Category: CategoryToken, Filter: FilterBlocked}, wantErr: true},
		{name: "blocked nft filter", query: Query{Category: CategoryNFT, Filter: FilterBlocked}},
		{name: "nft filter out of range", query: Query{Category: CategoryNFT, Filter: 6}, wantErr: true},
		{name: "negative filter", query: Query{Category: CategoryToken, Filter: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, http.StatusBadRequest, StatusOf(err))
		})
	}
}

func TestQuery_Limits(t *testing.T) {
	tests := []struct {
		name      string
		query     Query
		wantLimit int
		wantPage  int
		loadAll   bool
	}{
		{name: "defaults", query: Query{}, wantLimit: 50, loadAll: true},
		{name: "evm defaults", query: Query{EVMOnly: true}, wantLimit: 15, loadAll: true},
		{name: "explicit", query: Query{Page: intPtr(2), Limit: intPtr(20)}, wantLimit: 20, wantPage: 2},
		{name: "clamped", query: Query{Page: intPtr(0), Limit: intPtr(1000)}, wantLimit: 200},
		{name: "evm clamped", query: Query{EVMOnly: true, Page: intPtr(0), Limit: intPtr(100)}, wantLimit: 30},
		{name: "negative values", query: Query{Page: intPtr(-3), Limit: intPtr(-10)}, wantLimit: 10, wantPage: 3},
		{name: "zero limit", query: Query{Page: intPtr(1), Limit: intPtr(0)}, wantLimit: 50, wantPage: 1},
		{name: "min int", query: Query{Page: intPtr(math.MinInt), Limit: intPtr(math.MinInt)}, wantLimit: 50},
		{name: "evm min int", query: Query{EVMOnly: true, Page: intPtr(math.MinInt), Limit: intPtr(math.MinInt)}, wantLimit: 15},
		{name: "max int", query: Query{Page: intPtr(math.MaxInt), Limit: intPtr(math.MaxInt)}, wantLimit: 200, wantPage: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, tt.query.EffectiveLimit())
			assert.Equal(t, tt.wantPage, tt.query.StartPage())
			assert.Equal(t, tt.loadAll, tt.query.LoadAll())
		})
	}
}

func TestFilterType_String(t *testing.T) {
	assert.Equal(t, "ALL", FilterAll.String())
	assert.Equal(t, "BLOCKED", FilterBlocked.String())
	assert.Equal(t, "FilterType(9)", FilterType(9).String())
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork(" Mainnet ")
	require.NoError(t, err)
	assert.Equal(t, NetworkMainnet, n)
	assert.Equal(t, 747, n.EVMChainID())

	_, err = ParseNetwork("previewnet")
	assert.Error(t, err)

	assert.Equal(t, 545, NetworkTestnet.EVMChainID())
	assert.Equal(t, 646, NetworkEmulator.EVMChainID())
	assert.Empty(t, NetworkEmulator.EVMExplorerURL())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := upstream("Failed to load token-list", cause)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "Failed to load token-list: boom", err.Error())
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}
