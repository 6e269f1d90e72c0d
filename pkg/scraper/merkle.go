// Package scraper contains components that retrieve documents published
// off chain through an IPFS gateway.
package scraper // import "github.com/joincivil/wavs-rewards-client/pkg/scraper"

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/joincivil/wavs-rewards-client/pkg/ipfs"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	defaultHTTPTimeout = 30 * time.Second

	// maxDocumentBytes bounds the size of a fetched document
	maxDocumentBytes = 32 << 20
)

// NewMerkleTreeScraper returns a scraper fetching from the given gateway. A nil
// client gets one with a default timeout.
func NewMerkleTreeScraper(gatewayURL string, client *http.Client) *MerkleTreeScraper {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &MerkleTreeScraper{
		gatewayURL: gatewayURL,
		client:     client,
		cache:      map[string]*model.MerkleTreeDocument{},
	}
}

// MerkleTreeScraper fetches merkle tree documents by content id. Documents are
// immutable so each content id is fetched at most once successfully.
type MerkleTreeScraper struct {
	gatewayURL string
	client     *http.Client
	group      singleflight.Group

	mu    sync.Mutex
	cache map[string]*model.MerkleTreeDocument
}

// FetchMerkleTree returns the document for contentID, from cache when it was
// fetched before
func (m *MerkleTreeScraper) FetchMerkleTree(ctx context.Context, contentID string) (*model.MerkleTreeDocument, error) {
	normalized, err := ipfs.NormalizeCID(contentID)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchErrorSchema, URL: contentID, Err: err}
	}

	m.mu.Lock()
	doc, ok := m.cache[normalized]
	m.mu.Unlock()
	if ok {
		return doc, nil
	}

	v, err, _ := m.group.Do(normalized, func() (interface{}, error) {
		m.mu.Lock()
		cached, ok := m.cache[normalized]
		m.mu.Unlock()
		if ok {
			return cached, nil
		}
		fetched, err := m.fetch(ctx, normalized)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cache[normalized] = fetched
		m.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.MerkleTreeDocument), nil
}

// Cached returns true if the content id has already been fetched
func (m *MerkleTreeScraper) Cached(contentID string) bool {
	normalized, err := ipfs.NormalizeCID(contentID)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cache[normalized]
	return ok
}

func (m *MerkleTreeScraper) fetch(ctx context.Context, contentID string) (*model.MerkleTreeDocument, error) {
	url := ipfs.GatewayURL(m.gatewayURL, contentID)
	log.Infof("Fetching merkle tree from %v", url)

	body, err := getBody(ctx, m.client, url)
	if err != nil {
		return nil, err
	}

	doc, err := ParseMerkleTreeDocument(body)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchErrorSchema, URL: url, Err: err}
	}
	doc.ContentID = contentID
	log.Infof("Merkle tree %v has %v entries", contentID, len(doc.Tree))
	if log.V(2) {
		log.Infof("Merkle tree document: %v", spew.Sdump(doc))
	}
	return doc, nil
}

func getBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchErrorTransport, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchErrorTransport, URL: url, Err: err}
	}
	defer resp.Body.Close() // nolint: errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{
			Kind:       model.FetchErrorStatus,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchErrorTransport, URL: url, Err: err}
	}
	return body, nil
}

type merkleTreeJSON struct {
	Tree     *[]*rewardEntryJSON `json:"tree"`
	Metadata struct {
		RewardTokenAddress string        `json:"reward_token_address"`
		Sources            []*sourceJSON `json:"sources"`
	} `json:"metadata"`
}

type rewardEntryJSON struct {
	Account   string                `json:"account"`
	Reward    string                `json:"reward"`
	Claimable *math.HexOrDecimal256 `json:"claimable"`
	Proof     []string              `json:"proof"`
}

type sourceJSON struct {
	Name     string `json:"name"`
	Metadata struct {
		Address         string                `json:"address"`
		RewardsPerToken *math.HexOrDecimal256 `json:"rewards_per_token"`
	} `json:"metadata"`
}

// ParseMerkleTreeDocument decodes and validates a tree document
func ParseMerkleTreeDocument(body []byte) (*model.MerkleTreeDocument, error) {
	raw := &merkleTreeJSON{}
	err := json.Unmarshal(body, raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tree json")
	}
	if raw.Tree == nil {
		return nil, errors.New("missing tree")
	}

	doc := &model.MerkleTreeDocument{
		Tree: make([]*model.RewardEntry, 0, len(*raw.Tree)),
	}
	for i, rawEntry := range *raw.Tree {
		entry, err := parseRewardEntry(rawEntry)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid tree entry %v", i)
		}
		doc.Tree = append(doc.Tree, entry)
	}

	if raw.Metadata.RewardTokenAddress != "" {
		if !common.IsHexAddress(raw.Metadata.RewardTokenAddress) {
			return nil, errors.Errorf("invalid reward token address %v", raw.Metadata.RewardTokenAddress)
		}
		doc.Metadata.RewardTokenAddress = common.HexToAddress(raw.Metadata.RewardTokenAddress)
	}

	for i, rawSource := range raw.Metadata.Sources {
		if rawSource == nil {
			continue
		}
		source := &model.RewardSource{Name: rawSource.Name}
		if rawSource.Metadata.Address != "" {
			if !common.IsHexAddress(rawSource.Metadata.Address) {
				return nil, errors.Errorf("invalid address for source %v", i)
			}
			source.Metadata.Address = common.HexToAddress(rawSource.Metadata.Address)
		}
		if rawSource.Metadata.RewardsPerToken != nil {
			source.Metadata.RewardsPerToken = new(big.Int).Set((*big.Int)(rawSource.Metadata.RewardsPerToken))
		}
		doc.Metadata.Sources = append(doc.Metadata.Sources, source)
	}
	return doc, nil
}

func parseRewardEntry(raw *rewardEntryJSON) (*model.RewardEntry, error) {
	if raw == nil {
		return nil, errors.New("null entry")
	}
	if !common.IsHexAddress(raw.Account) {
		return nil, errors.Errorf("invalid account %v", raw.Account)
	}
	if !common.IsHexAddress(raw.Reward) {
		return nil, errors.Errorf("invalid reward token %v", raw.Reward)
	}
	if raw.Claimable == nil {
		return nil, errors.New("missing claimable")
	}
	claimable := new(big.Int).Set((*big.Int)(raw.Claimable))
	if claimable.Sign() < 0 {
		return nil, errors.New("negative claimable")
	}
	proof := make([]common.Hash, 0, len(raw.Proof))
	for _, p := range raw.Proof {
		b, err := hexutil.Decode(p)
		if err != nil || len(b) != common.HashLength {
			return nil, errors.Errorf("invalid proof element %v", p)
		}
		proof = append(proof, common.BytesToHash(b))
	}
	return &model.RewardEntry{
		Account:     common.HexToAddress(raw.Account),
		RewardToken: common.HexToAddress(raw.Reward),
		Claimable:   claimable,
		Proof:       proof,
	}, nil
}
