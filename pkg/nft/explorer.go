package nft

import (
	"context"
	"sync"

	log "github.com/golang/glog"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	// PageSize is the number of tokens loaded per page
	PageSize = 9
)

// NewExplorer returns an explorer over the whole collection
func NewExplorer(collection *Collection) *Explorer {
	return &Explorer{
		collection: collection,
		seen:       map[string]bool{},
		hasMore:    true,
	}
}

// Explorer walks the collection page by page in token index order
type Explorer struct {
	collection *Collection

	mu      sync.Mutex
	loading bool
	nfts    []*model.NFT
	seen    map[string]bool
	total   int64
	hasMore bool
}

// NFTs returns the tokens loaded so far
func (e *Explorer) NFTs() []*model.NFT {
	e.mu.Lock()
	defer e.mu.Unlock()
	nfts := make([]*model.NFT, len(e.nfts))
	copy(nfts, e.nfts)
	return nfts
}

// HasMore returns false once every token up to the total supply has been loaded
func (e *Explorer) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasMore
}

// TotalSupply returns the total supply seen by the last page load
func (e *Explorer) TotalSupply() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// Reset clears the loaded tokens so the next page starts from index 0
func (e *Explorer) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nfts = nil
	e.seen = map[string]bool{}
	e.total = 0
	e.hasMore = true
}

// LoadPage loads the next PageSize tokens after those already loaded and
// returns the newly added ones. It returns nothing while another load is in
// progress. Tokens already loaded are skipped.
func (e *Explorer) LoadPage(ctx context.Context) ([]*model.NFT, error) {
	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		log.V(2).Infof("Explorer page load already in progress")
		return nil, nil
	}
	e.loading = true
	start := int64(len(e.nfts))
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.loading = false
		e.mu.Unlock()
	}()

	reader := e.collection.Reader()
	supply, err := reader.NftTotalSupply(ctx)
	if err != nil {
		return nil, err
	}
	total := supply.Int64()

	if start >= total {
		e.mu.Lock()
		e.total = total
		e.hasMore = false
		e.mu.Unlock()
		return nil, nil
	}

	count := total - start
	if count > PageSize {
		count = PageSize
	}
	page := make([]*model.NFT, 0, count)
	for i := start; i < start+count; i++ {
		tokenID, err := reader.NftTokenByIndex(ctx, i)
		if err != nil {
			return nil, err
		}
		token, err := e.collection.Token(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		page = append(page, token)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	added := make([]*model.NFT, 0, len(page))
	for _, token := range page {
		key := token.TokenID().String()
		if e.seen[key] {
			continue
		}
		e.seen[key] = true
		added = append(added, token)
	}
	e.nfts = append(e.nfts, added...)
	e.total = total
	e.hasMore = start+count < total
	return added, nil
}
