// Package ipfs converts on-chain content digests to IPFS content identifiers
// and builds gateway URLs for them.
package ipfs // import "github.com/joincivil/wavs-rewards-client/pkg/ipfs"

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

const (
	// CIDv0 renders digests as base58 "Qm..." identifiers
	CIDv0 = 0
	// CIDv1 renders digests as base32 raw codec "bafkrei..." identifiers
	CIDv1 = 1

	// DefaultGatewayURL is the public gateway used when none is configured
	DefaultGatewayURL = "https://ipfs.io/ipfs/"
)

// IsZeroDigest returns true for the all-zero bytes32 value
func IsZeroDigest(digest common.Hash) bool {
	return digest == (common.Hash{})
}

// DigestToCID renders a sha2-256 digest stored as bytes32 as a CID of the
// given version
func DigestToCID(digest common.Hash, version int) (string, error) {
	hash, err := mh.Encode(digest.Bytes(), mh.SHA2_256)
	if err != nil {
		return "", errors.Wrap(err, "error encoding multihash")
	}
	switch version {
	case CIDv0:
		return cid.NewCidV0(hash).String(), nil
	case CIDv1:
		return cid.NewCidV1(cid.Raw, hash).String(), nil
	}
	return "", errors.Errorf("unsupported cid version %v", version)
}

// CIDToDigest extracts the sha2-256 digest from a CID, the inverse of DigestToCID
func CIDToDigest(contentID string) (common.Hash, error) {
	c, err := cid.Decode(stripPrefixes(contentID))
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "invalid cid %v", contentID)
	}
	decoded, err := mh.Decode(c.Hash())
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "invalid multihash")
	}
	if decoded.Code != mh.SHA2_256 || len(decoded.Digest) != common.HashLength {
		return common.Hash{}, errors.Errorf("cid %v is not a sha2-256 digest", contentID)
	}
	return common.BytesToHash(decoded.Digest), nil
}

// NormalizeCID strips ipfs:// and /ipfs/ prefixes and returns the canonical
// string form of the CID
func NormalizeCID(contentID string) (string, error) {
	c, err := cid.Decode(stripPrefixes(contentID))
	if err != nil {
		return "", errors.Wrapf(err, "invalid cid %v", contentID)
	}
	return c.String(), nil
}

// GatewayURL joins the gateway base and the content id
func GatewayURL(gateway string, contentID string) string {
	if gateway == "" {
		gateway = DefaultGatewayURL
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return gateway + stripPrefixes(contentID)
}

// ResolveURI maps ipfs:// URIs through the gateway and leaves other URIs alone
func ResolveURI(gateway string, uri string) string {
	if strings.HasPrefix(uri, "ipfs://") || strings.HasPrefix(uri, "/ipfs/") {
		return GatewayURL(gateway, uri)
	}
	return uri
}

func stripPrefixes(contentID string) string {
	contentID = strings.TrimSpace(contentID)
	contentID = strings.TrimPrefix(contentID, "ipfs://")
	contentID = strings.TrimPrefix(contentID, "ipfs/")
	contentID = strings.TrimPrefix(contentID, "/ipfs/")
	return contentID
}
