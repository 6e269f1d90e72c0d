package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/joincivil/wavs-rewards-client/pkg/ipfs"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/scraper"
)

const (
	testAccount     = "0xDFe273082089bB7f70Ee36Eebcde64832FE97E55"
	testRewardToken = "0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d"
	testNft         = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	testProof       = "0x1111111111111111111111111111111111111111111111111111111111111111"

	testTreeJSON = `{
  "tree": [
    {"account": "` + testAccount + `", "reward": "` + testRewardToken + `", "claimable": "1000", "proof": ["` + testProof + `"]},
    {"account": "0x0000000000000000000000000000000000000001", "reward": "` + testRewardToken + `", "claimable": "0x10", "proof": []}
  ],
  "metadata": {
    "reward_token_address": "` + testRewardToken + `",
    "sources": [
      {"name": "ERC721", "metadata": {"address": "` + testNft + `", "rewards_per_token": "10"}},
      {"name": "manual", "metadata": {}}
    ]
  }
}`
)

func testCID(seed string) string {
	c, err := ipfs.DigestToCID(crypto.Keccak256Hash([]byte(seed)), ipfs.CIDv1)
	if err != nil {
		panic(err)
	}
	return c
}

func TestParseMerkleTreeDocument(t *testing.T) {
	doc, err := scraper.ParseMerkleTreeDocument([]byte(testTreeJSON))
	if err != nil {
		t.Fatalf("Should have parsed the document: err: %v", err)
	}
	if len(doc.Tree) != 2 {
		t.Fatalf("Wrong number of entries: %v", len(doc.Tree))
	}
	entry := doc.EntryFor(common.HexToAddress(testAccount))
	if entry == nil || entry.Claimable.Int64() != 1000 {
		t.Fatalf("Wrong entry for the test account: %+v", entry)
	}
	if len(entry.Proof) != 1 || entry.Proof[0] != common.HexToHash(testProof) {
		t.Errorf("Wrong proof: %v", entry.Proof)
	}
	if doc.Tree[1].Claimable.Int64() != 16 {
		t.Errorf("Should have parsed a hex claimable: %v", doc.Tree[1].Claimable)
	}
	if doc.Metadata.RewardTokenAddress != common.HexToAddress(testRewardToken) {
		t.Errorf("Wrong reward token: %v", doc.Metadata.RewardTokenAddress.Hex())
	}
	if len(doc.Metadata.Sources) != 2 || !doc.Metadata.Sources[0].IsERC721() {
		t.Fatalf("Wrong sources: %+v", doc.Metadata.Sources)
	}
	if doc.Metadata.Sources[0].Metadata.RewardsPerToken.Int64() != 10 {
		t.Errorf("Wrong rewards per token: %v", doc.Metadata.Sources[0].Metadata.RewardsPerToken)
	}
	if doc.Metadata.Sources[1].IsERC721() {
		t.Errorf("Manual source should not be ERC721")
	}
}

func TestParseMerkleTreeDocumentSchemaErrors(t *testing.T) {
	bad := map[string]string{
		"not json":      `{"tree": [`,
		"missing tree":  `{"metadata": {}}`,
		"bad account":   `{"tree": [{"account": "0x12", "reward": "` + testRewardToken + `", "claimable": "1", "proof": []}]}`,
		"bad claimable": `{"tree": [{"account": "` + testAccount + `", "reward": "` + testRewardToken + `", "claimable": "abc", "proof": []}]}`,
		"no claimable":  `{"tree": [{"account": "` + testAccount + `", "reward": "` + testRewardToken + `", "proof": []}]}`,
		"short proof":   `{"tree": [{"account": "` + testAccount + `", "reward": "` + testRewardToken + `", "claimable": "1", "proof": ["0x1234"]}]}`,
	}
	for name, body := range bad {
		_, err := scraper.ParseMerkleTreeDocument([]byte(body))
		if err == nil {
			t.Errorf("Should have rejected %v", name)
		}
	}

	doc, err := scraper.ParseMerkleTreeDocument([]byte(`{"tree": []}`))
	if err != nil || len(doc.Tree) != 0 {
		t.Errorf("Empty tree should be valid: %v", err)
	}
}

func TestFetchMerkleTreeCachesByContentID(t *testing.T) {
	cid := testCID("tree-1")
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/ipfs/"+cid {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, testTreeJSON)
	}))
	defer server.Close()

	s := scraper.NewMerkleTreeScraper(server.URL+"/ipfs", nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.FetchMerkleTree(ctx, cid)
			if err != nil {
				t.Errorf("Should not have failed to fetch: err: %v", err)
			}
		}()
	}
	wg.Wait()

	doc, err := s.FetchMerkleTree(ctx, "ipfs://"+cid)
	if err != nil {
		t.Fatalf("Should not have failed to fetch: err: %v", err)
	}
	if doc.ContentID != cid {
		t.Errorf("Wrong content id on document: %v", doc.ContentID)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Should have fetched the document once, got %v", hits)
	}
	if !s.Cached(cid) {
		t.Errorf("Should report the content id as cached")
	}
}

func TestFetchMerkleTreeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer server.Close()

	s := scraper.NewMerkleTreeScraper(server.URL+"/ipfs/", nil)
	cid := testCID("tree-2")
	_, err := s.FetchMerkleTree(context.Background(), cid)
	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Should have returned a FetchError: err: %v", err)
	}
	if fetchErr.Kind != model.FetchErrorStatus || fetchErr.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("Wrong fetch error: %+v", fetchErr)
	}
	if s.Cached(cid) {
		t.Errorf("Failures should not be cached")
	}
}

func TestFetchMerkleTreeSchemaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"metadata": {}}`)
	}))
	defer server.Close()

	s := scraper.NewMerkleTreeScraper(server.URL, nil)
	_, err := s.FetchMerkleTree(context.Background(), testCID("tree-3"))
	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Kind != model.FetchErrorSchema {
		t.Errorf("Should have returned a schema FetchError: err: %v", err)
	}
}

func TestFetchMerkleTreeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	s := scraper.NewMerkleTreeScraper(url, nil)
	_, err := s.FetchMerkleTree(context.Background(), testCID("tree-4"))
	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Kind != model.FetchErrorTransport {
		t.Errorf("Should have returned a transport FetchError: err: %v", err)
	}
}

func TestFetchMerkleTreeBadContentID(t *testing.T) {
	s := scraper.NewMerkleTreeScraper("http://localhost", nil)
	_, err := s.FetchMerkleTree(context.Background(), "not-a-cid")
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Errorf("Should have rejected an invalid content id: err: %v", err)
	}
}
