package nft_test

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/wavs-rewards-client/pkg/chain"
	"github.com/joincivil/wavs-rewards-client/pkg/contract"
	"github.com/joincivil/wavs-rewards-client/pkg/nft"
	"github.com/joincivil/wavs-rewards-client/pkg/scraper"
	"github.com/joincivil/wavs-rewards-client/pkg/testutils"
)

var (
	nftAddress   = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	testAccount  = common.HexToAddress("0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	otherAccount = common.HexToAddress("0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d")
)

func setupCollection(backend *testutils.FakeBackend, gateway string) *nft.Collection {
	reader := chain.NewReader(&chain.ReaderParams{
		Backend: backend,
		Nft:     nftAddress,
	})
	return nft.NewCollection(&nft.CollectionParams{
		Reader:  reader,
		Scraper: scraper.NewTokenMetadataScraper(gateway, nil),
		Gateway: gateway,
	})
}

func inlineMetadata(tokenID *big.Int) string {
	return fmt.Sprintf(`data:application/json,{"name":"token %v"}`, tokenID)
}

func TestOwnedNFTs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/QmMeta/10.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"name":"a lighthouse","image":"ipfs://QmImage/10.png"}`)
	}))
	defer server.Close()

	backend := testutils.NewFakeBackend(31337)
	backend.Deploy(nftAddress, contract.NftABI())
	backend.HandleCall(nftAddress, "balanceOf", func(from common.Address, args []interface{}) ([]interface{}, error) {
		if args[0].(common.Address) == testAccount {
			return []interface{}{big.NewInt(2)}, nil
		}
		return []interface{}{big.NewInt(0)}, nil
	})
	backend.HandleCall(nftAddress, "tokenOfOwnerByIndex", func(from common.Address, args []interface{}) ([]interface{}, error) {
		index := args[1].(*big.Int)
		return []interface{}{new(big.Int).Add(index, big.NewInt(10))}, nil
	})
	backend.HandleCall(nftAddress, "tokenURI", func(from common.Address, args []interface{}) ([]interface{}, error) {
		return []interface{}{fmt.Sprintf("ipfs://QmMeta/%v.json", args[0])}, nil
	})

	collection := setupCollection(backend, server.URL+"/ipfs/")
	nfts, err := collection.OwnedNFTs(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("Should have loaded owned nfts: err: %v", err)
	}
	if len(nfts) != 2 {
		t.Fatalf("Should have 2 nfts: %v", len(nfts))
	}
	if nfts[0].TokenID().Int64() != 10 || nfts[0].Name() != "a lighthouse" {
		t.Errorf("Wrong first token: %v %v", nfts[0].TokenID(), nfts[0].Name())
	}
	if nfts[0].ImageURL() != server.URL+"/ipfs/QmImage/10.png" {
		t.Errorf("Image should resolve through the gateway: %v", nfts[0].ImageURL())
	}
	if nfts[0].Owner() != testAccount {
		t.Errorf("Wrong owner: %v", nfts[0].Owner().Hex())
	}
	// metadata for token 11 is missing but the token is still listed
	if nfts[1].TokenID().Int64() != 11 || nfts[1].Metadata() != nil || nfts[1].Name() != "WAVS NFT #11" {
		t.Errorf("Token without metadata should still be returned: %v %v", nfts[1].TokenID(), nfts[1].Metadata())
	}

	none, err := collection.OwnedNFTs(context.Background(), otherAccount)
	if err != nil || len(none) != 0 {
		t.Errorf("Should have no nfts for other account: %v %v", none, err)
	}
}

func TestOwnedNFTsReadError(t *testing.T) {
	backend := testutils.NewFakeBackend(31337)
	backend.Deploy(nftAddress, contract.NftABI())
	backend.Returns(nftAddress, "balanceOf", big.NewInt(1))

	_, err := setupCollection(backend, "").OwnedNFTs(context.Background(), testAccount)
	if err == nil {
		t.Errorf("Should have failed without tokenOfOwnerByIndex")
	}
}

func setupSupply(backend *testutils.FakeBackend, total int64, tokenForIndex func(int64) int64) {
	backend.Deploy(nftAddress, contract.NftABI())
	backend.Returns(nftAddress, "totalSupply", big.NewInt(total))
	backend.HandleCall(nftAddress, "tokenByIndex", func(from common.Address, args []interface{}) ([]interface{}, error) {
		return []interface{}{big.NewInt(tokenForIndex(args[0].(*big.Int).Int64()))}, nil
	})
	backend.Returns(nftAddress, "ownerOf", testAccount)
	backend.HandleCall(nftAddress, "tokenURI", func(from common.Address, args []interface{}) ([]interface{}, error) {
		return []interface{}{inlineMetadata(args[0].(*big.Int))}, nil
	})
}

func TestExplorerPages(t *testing.T) {
	backend := testutils.NewFakeBackend(31337)
	setupSupply(backend, 11, func(i int64) int64 { return i + 100 })
	explorer := nft.NewExplorer(setupCollection(backend, ""))

	page, err := explorer.LoadPage(context.Background())
	if err != nil {
		t.Fatalf("Should have loaded first page: err: %v", err)
	}
	if len(page) != nft.PageSize || !explorer.HasMore() {
		t.Fatalf("First page should be full with more to come: %v %v", len(page), explorer.HasMore())
	}
	if page[0].TokenID().Int64() != 100 || page[0].Name() != "token 100" || page[0].Owner() != testAccount {
		t.Errorf("Wrong first token: %v %v", page[0].TokenID(), page[0].Name())
	}

	page, err = explorer.LoadPage(context.Background())
	if err != nil {
		t.Fatalf("Should have loaded second page: err: %v", err)
	}
	if len(page) != 2 || explorer.HasMore() {
		t.Errorf("Second page should hold the last 2 tokens: %v %v", len(page), explorer.HasMore())
	}
	if len(explorer.NFTs()) != 11 || explorer.TotalSupply() != 11 {
		t.Errorf("Should have loaded everything: %v %v", len(explorer.NFTs()), explorer.TotalSupply())
	}

	calls := backend.CallCount(nftAddress, "tokenByIndex")
	page, err = explorer.LoadPage(context.Background())
	if err != nil || len(page) != 0 || explorer.HasMore() {
		t.Errorf("Load past the end should be empty: %v %v", page, err)
	}
	if backend.CallCount(nftAddress, "tokenByIndex") != calls {
		t.Errorf("Load past the end should not read tokens")
	}

	explorer.Reset()
	if len(explorer.NFTs()) != 0 || !explorer.HasMore() {
		t.Errorf("Reset should clear the explorer")
	}
	page, _ = explorer.LoadPage(context.Background())
	if len(page) != nft.PageSize || page[0].TokenID().Int64() != 100 {
		t.Errorf("Should start again from the first token after reset")
	}
}

func TestExplorerSkipsDuplicates(t *testing.T) {
	backend := testutils.NewFakeBackend(31337)
	// index 9 reports the same token as index 0
	setupSupply(backend, 10, func(i int64) int64 { return i % 9 })
	explorer := nft.NewExplorer(setupCollection(backend, ""))

	_, err := explorer.LoadPage(context.Background())
	if err != nil {
		t.Fatalf("Should have loaded first page: err: %v", err)
	}
	page, err := explorer.LoadPage(context.Background())
	if err != nil {
		t.Fatalf("Should have loaded second page: err: %v", err)
	}
	if len(page) != 0 || len(explorer.NFTs()) != 9 {
		t.Errorf("Duplicate token should be skipped: %v %v", len(page), len(explorer.NFTs()))
	}
	if explorer.HasMore() {
		t.Errorf("Should have no more tokens")
	}
}

func TestExplorerConcurrentLoad(t *testing.T) {
	backend := testutils.NewFakeBackend(31337)
	setupSupply(backend, 3, func(i int64) int64 { return i })
	started := make(chan struct{})
	release := make(chan struct{})
	backend.HandleCall(nftAddress, "totalSupply", func(common.Address, []interface{}) ([]interface{}, error) {
		close(started)
		<-release
		return []interface{}{big.NewInt(3)}, nil
	})
	explorer := nft.NewExplorer(setupCollection(backend, ""))

	done := make(chan int)
	go func() {
		page, _ := explorer.LoadPage(context.Background())
		done <- len(page)
	}()
	<-started

	page, err := explorer.LoadPage(context.Background())
	if err != nil || page != nil {
		t.Errorf("Concurrent load should be a no-op: %v %v", page, err)
	}
	close(release)

	select {
	case n := <-done:
		if n != 3 {
			t.Errorf("First load should have loaded 3 tokens: %v", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("First load did not finish")
	}
	if backend.CallCount(nftAddress, "totalSupply") != 1 {
		t.Errorf("Concurrent load should not have read the supply")
	}
}
