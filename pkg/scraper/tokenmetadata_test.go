package scraper_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joincivil/wavs-rewards-client/pkg/scraper"
)

const (
	testTokenMetadata = `{"name":"WAVS NFT #1","description":"a lighthouse at dusk","image":"ipfs://QmImage/1.png"}`
)

func TestScrapeTokenMetadataIPFS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/QmMeta/1.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, testTokenMetadata)
	}))
	defer server.Close()

	s := scraper.NewTokenMetadataScraper(server.URL+"/ipfs/", nil)
	metadata, err := s.ScrapeTokenMetadata(context.Background(), "ipfs://QmMeta/1.json")
	if err != nil {
		t.Fatalf("Should not have failed to scrape metadata: err: %v", err)
	}
	if metadata["name"] != "WAVS NFT #1" {
		t.Errorf("Wrong name: %v", metadata["name"])
	}
	if image := s.ImageURL(metadata); image != server.URL+"/ipfs/QmImage/1.png" {
		t.Errorf("Wrong image url: %v", image)
	}
}

func TestScrapeTokenMetadataDataURI(t *testing.T) {
	s := scraper.NewTokenMetadataScraper("https://ipfs.io/ipfs/", nil)
	uri := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(testTokenMetadata))
	metadata, err := s.ScrapeTokenMetadata(context.Background(), uri)
	if err != nil {
		t.Fatalf("Should not have failed to decode a data uri: err: %v", err)
	}
	if metadata.Image() != "ipfs://QmImage/1.png" {
		t.Errorf("Wrong image: %v", metadata.Image())
	}

	_, err = s.ScrapeTokenMetadata(context.Background(), "data:application/json,%7Bbroken")
	if err == nil {
		t.Errorf("Should have rejected invalid json")
	}
}
