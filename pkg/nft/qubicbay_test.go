package nft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qubic-network/qubicx/pkg/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const nft4129 = `{
	"id": 4129,
	"name": "Qubic Punk #4129",
	"description": "A punk on Qubic",
	"imageUrl": "https://cdn.qubicbay.io/4129.png",
	"uri": "ipfs://bafy/4129.json",
	"metadata": [{"value": "Gold", "trait_type": "Background"}],
	"creatorId": "CREATOR",
	"ownerId": "OWNER",
	"collectionId": 7,
	"royalty": 5,
	"lastPrice": null,
	"totalTrades": 3,
	"totalTradeVolume": "15000000",
	"status": "listed",
	"collection": {"id": 7, "name": "Qubic Punks", "floorPrice": "2500000", "verified": true},
	"owner": {"id": "OWNER", "username": "punkholder"},
	"listings": [{"id": 1, "price": "5000000", "status": "active"}]
}`

func newTestQubicBay(t *testing.T) *QubicBay {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/nfts/4129":
			_, _ = w.Write([]byte(nft4129))
		case "/nfts/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return NewQubicBay(rpc.Opts{Endpoints: []string{server.URL}, Logger: zaptest.NewLogger(t), BreakerFailures: 10})
}

func TestNFT(t *testing.T) {
	q := newTestQubicBay(t)

	m, err := q.NFT(context.Background(), 4129)
	require.NoError(t, err)
	assert.Equal(t, "Qubic Punk #4129", m.Name)
	assert.Nil(t, m.LastPrice)
	require.Len(t, m.Metadata, 1)
	assert.Equal(t, "Background", m.Metadata[0].TraitType)
	require.NotNil(t, m.Collection)
	assert.True(t, m.Collection.Verified)
	require.NotNil(t, m.Owner)
	assert.Equal(t, "punkholder", m.Owner.Username)
	require.Len(t, m.Listings, 1)
	assert.Equal(t, "5000000", m.Listings[0].Price)
}

func TestNFT_NotFoundAndFailure(t *testing.T) {
	q := newTestQubicBay(t)

	_, err := q.NFT(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = q.NFT(context.Background(), 500)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
