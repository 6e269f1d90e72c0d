package scraper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/joincivil/wavs-rewards-client/pkg/ipfs"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	dataURIPrefix = "data:"
)

// NewTokenMetadataScraper returns a scraper resolving ipfs URIs through the gateway
func NewTokenMetadataScraper(gatewayURL string, client *http.Client) *TokenMetadataScraper {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &TokenMetadataScraper{gatewayURL: gatewayURL, client: client}
}

// TokenMetadataScraper retrieves NFT metadata documents
type TokenMetadataScraper struct {
	gatewayURL string
	client     *http.Client
}

// ScrapeTokenMetadata returns the JSON metadata behind a token URI. ipfs://,
// http(s):// and inline data: URIs are supported.
func (t *TokenMetadataScraper) ScrapeTokenMetadata(ctx context.Context,
	tokenURI string) (model.ScraperTokenMetadata, error) {
	var body []byte
	if strings.HasPrefix(tokenURI, dataURIPrefix) {
		decoded, err := decodeDataURI(tokenURI)
		if err != nil {
			return nil, &model.FetchError{Kind: model.FetchErrorSchema, URL: tokenURI, Err: err}
		}
		body = decoded
	} else {
		resolved := ipfs.ResolveURI(t.gatewayURL, tokenURI)
		fetched, err := getBody(ctx, t.client, resolved)
		if err != nil {
			return nil, err
		}
		body = fetched
	}

	metadata := model.ScraperTokenMetadata{}
	err := json.Unmarshal(body, &metadata)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchErrorSchema, URL: tokenURI, Err: err}
	}
	return metadata, nil
}

// ImageURL returns the gateway URL of the metadata image
func (t *TokenMetadataScraper) ImageURL(metadata model.ScraperTokenMetadata) string {
	image := metadata.Image()
	if image == "" {
		return ""
	}
	return ipfs.ResolveURI(t.gatewayURL, image)
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return nil, errors.New("malformed data uri")
	}
	header := uri[len(dataURIPrefix):comma]
	payload := uri[comma+1:]
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(unescaped), nil
}
