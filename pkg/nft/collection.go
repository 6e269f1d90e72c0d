// Package nft reads the WAVS NFT collection: the tokens held by an account
// and a paged walk over the whole supply.
package nft // import "github.com/joincivil/wavs-rewards-client/pkg/nft"

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/joincivil/wavs-rewards-client/pkg/chain"
	"github.com/joincivil/wavs-rewards-client/pkg/ipfs"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	tokenReadConcurrency = 4
)

// CollectionParams are the params to initialize a new Collection
type CollectionParams struct {
	Reader  *chain.Reader
	Scraper model.TokenMetadataScraper
	Gateway string
}

// NewCollection is a convenience function to init a Collection
func NewCollection(params *CollectionParams) *Collection {
	return &Collection{
		reader:  params.Reader,
		scraper: params.Scraper,
		gateway: params.Gateway,
	}
}

// Collection loads tokens and their metadata from the NFT contract
type Collection struct {
	reader  *chain.Reader
	scraper model.TokenMetadataScraper
	gateway string
}

// Reader returns the chain reader used by the collection
func (c *Collection) Reader() *chain.Reader {
	return c.reader
}

// OwnedNFTs returns every token held by account in enumeration order. A token
// whose metadata cannot be fetched is still returned, without metadata.
func (c *Collection) OwnedNFTs(ctx context.Context, account common.Address) ([]*model.NFT, error) {
	balance, err := c.reader.ERC721Balance(ctx, c.reader.Nft().Address(), account)
	if err != nil {
		return nil, err
	}
	count := int(balance.Int64())
	log.V(2).Infof("Account %v holds %v tokens", account.Hex(), count)

	nfts := make([]*model.NFT, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tokenReadConcurrency)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			tokenID, err := c.reader.NftTokenOfOwnerByIndex(gctx, account, int64(i))
			if err != nil {
				return err
			}
			token, err := c.loadToken(gctx, tokenID, account)
			if err != nil {
				return err
			}
			nfts[i] = token
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nfts, nil
}

// Token loads a single token with its owner and metadata
func (c *Collection) Token(ctx context.Context, tokenID *big.Int) (*model.NFT, error) {
	owner, err := c.reader.NftOwnerOf(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return c.loadToken(ctx, tokenID, owner)
}

func (c *Collection) loadToken(ctx context.Context, tokenID *big.Int, owner common.Address) (*model.NFT, error) {
	uri, err := c.reader.NftTokenURI(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	params := &model.NFTParams{
		TokenID:  tokenID,
		TokenURI: uri,
		Owner:    owner,
	}
	metadata, err := c.scraper.ScrapeTokenMetadata(ctx, uri)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Errorf("Error fetching metadata for token %v: err: %v", tokenID, err)
		return model.NewNFT(params), nil
	}
	params.Metadata = metadata
	if image := metadata.Image(); image != "" {
		params.ImageURL = ipfs.ResolveURI(c.gateway, image)
	}
	return model.NewNFT(params), nil
}
