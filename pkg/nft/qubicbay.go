// Package nft fetches QBAY NFT metadata from the QubicBay API.
package nft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/qubic-network/qubicx/pkg/rpc"
	"go.uber.org/zap"
)

// MetadataTTL is how long NFT responses are cached.
const MetadataTTL = 60 * time.Second

// ErrNotFound is returned when QubicBay has no NFT with the requested id.
var ErrNotFound = errors.New("nft not found")

// Provider is the NFT metadata source used by the tools.
type Provider interface {
	NFT(ctx context.Context, id int64) (*Metadata, error)
}

// Trait is one metadata attribute.
type Trait struct {
	Value     string `json:"value"`
	TraitType string `json:"trait_type"`
}

type Collection struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	BannerURL   string `json:"bannerUrl"`
	FloorPrice  string `json:"floorPrice"`
	TotalTrades int64  `json:"totalTrades"`
	Verified    bool   `json:"verified"`
}

type Owner struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

type Listing struct {
	ID     int64  `json:"id"`
	Price  string `json:"price"`
	Status string `json:"status"`
}

// Metadata is the QubicBay view of one NFT. Prices are decimal strings as QubicBay sends them.
type Metadata struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ImageURL         string      `json:"imageUrl"`
	URI              string      `json:"uri"`
	Metadata         []Trait     `json:"metadata"`
	CreatorID        string      `json:"creatorId"`
	OwnerID          string      `json:"ownerId"`
	CollectionID     int64       `json:"collectionId"`
	Royalty          float64     `json:"royalty"`
	LastPrice        *string     `json:"lastPrice"`
	TotalTrades      int64       `json:"totalTrades"`
	TotalTradeVolume string      `json:"totalTradeVolume"`
	Status           string      `json:"status"`
	Collection       *Collection `json:"collection,omitempty"`
	Owner            *Owner      `json:"owner,omitempty"`
	Listings         []Listing   `json:"listings,omitempty"`
}

// QubicBay implements Provider.
type QubicBay struct {
	http   *rpc.HTTPClient
	logger *zap.Logger
}

var _ Provider = (*QubicBay)(nil)

// NewQubicBay builds a client. Opts.Endpoints should hold the API base, e.g. https://api.qubicbay.io/v1.
func NewQubicBay(opts rpc.Opts) *QubicBay {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QubicBay{http: rpc.NewHTTPWithOpts(opts), logger: logger}
}

// NFT returns the metadata of one NFT, or ErrNotFound on a 404.
func (q *QubicBay) NFT(ctx context.Context, id int64) (*Metadata, error) {
	var m Metadata
	if err := q.http.GetJSON(ctx, fmt.Sprintf("/nfts/%d", id), MetadataTTL, &m); err != nil {
		if rpc.IsStatus(err, http.StatusNotFound) {
			return nil, ErrNotFound
		}
		q.logger.Debug("nft lookup failed", zap.Int64("nft_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch nft %d: %w", id, err)
	}
	return &m, nil
}
