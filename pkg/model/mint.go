package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// PendingMintMaxAge is how long a pending mint is kept before it is
	// considered abandoned
	PendingMintMaxAge = 24 * time.Hour
)

// PendingMintParams are the params to initialize a new PendingMint
type PendingMintParams struct {
	TriggerID     string
	Prompt        string
	Timestamp     int64
	StartProgress float64
}

// NewPendingMint is a convenience method to init a PendingMint struct
func NewPendingMint(params *PendingMintParams) *PendingMint {
	return &PendingMint{
		triggerID:     params.TriggerID,
		prompt:        params.Prompt,
		timestamp:     params.Timestamp,
		startProgress: params.StartProgress,
	}
}

// PendingMint is a mint request that has been triggered on chain but not yet
// fulfilled by the operator
type PendingMint struct {
	triggerID string

	prompt string

	// milliseconds since epoch
	timestamp int64

	// progress shown when the mint was submitted, 0-100
	startProgress float64
}

// TriggerID returns the trigger id assigned by the minter
func (p *PendingMint) TriggerID() string {
	return p.triggerID
}

// Prompt returns the prompt used for the mint
func (p *PendingMint) Prompt() string {
	return p.prompt
}

// Timestamp returns the submission time in milliseconds from epoch
func (p *PendingMint) Timestamp() int64 {
	return p.timestamp
}

// StartProgress returns the progress value at submission
func (p *PendingMint) StartProgress() float64 {
	return p.startProgress
}

// Expired returns true if the mint is older than PendingMintMaxAge at now
func (p *PendingMint) Expired(now time.Time) bool {
	submitted := time.Unix(0, p.timestamp*int64(time.Millisecond))
	return now.Sub(submitted) > PendingMintMaxAge
}

// NFTParams are the params to initialize a new NFT
type NFTParams struct {
	TokenID  *big.Int
	TokenURI string
	ImageURL string
	Owner    common.Address
	Metadata ScraperTokenMetadata
}

// NewNFT is a convenience method to init an NFT struct
func NewNFT(params *NFTParams) *NFT {
	return &NFT{
		tokenID:  params.TokenID,
		tokenURI: params.TokenURI,
		imageURL: params.ImageURL,
		owner:    params.Owner,
		metadata: params.Metadata,
	}
}

// NFT is a token in the WAVS collection
type NFT struct {
	tokenID  *big.Int
	tokenURI string
	imageURL string
	owner    common.Address
	metadata ScraperTokenMetadata
}

// TokenID returns the token id
func (n *NFT) TokenID() *big.Int {
	return n.tokenID
}

// TokenURI returns the raw token URI
func (n *NFT) TokenURI() string {
	return n.tokenURI
}

// ImageURL returns the gateway URL of the token image, if any
func (n *NFT) ImageURL() string {
	return n.imageURL
}

// Owner returns the token owner, the zero address when unknown
func (n *NFT) Owner() common.Address {
	return n.owner
}

// Metadata returns the token metadata document
func (n *NFT) Metadata() ScraperTokenMetadata {
	return n.metadata
}

// Name returns the metadata name or a fallback built from the token id
func (n *NFT) Name() string {
	if name, ok := n.metadata["name"].(string); ok && name != "" {
		return name
	}
	return "WAVS NFT #" + n.tokenID.String()
}
