package model

import (
	"context"
)

// ScraperTokenMetadata is the JSON metadata document of an NFT
type ScraperTokenMetadata map[string]interface{}

// Image returns the image field of the metadata, if any
func (s ScraperTokenMetadata) Image() string {
	image, _ := s["image"].(string)
	return image
}

// MerkleTreeScraper retrieves a published merkle tree document by content id
type MerkleTreeScraper interface {
	FetchMerkleTree(ctx context.Context, contentID string) (*MerkleTreeDocument, error)
}

// TokenMetadataScraper retrieves the metadata document behind a token URI
type TokenMetadataScraper interface {
	ScrapeTokenMetadata(ctx context.Context, tokenURI string) (ScraperTokenMetadata, error)
}
