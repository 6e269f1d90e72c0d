// Package model contains the general data models and interfaces for the rewards client.
package model // import "github.com/joincivil/wavs-rewards-client/pkg/model"

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// ERC721SourceName marks a reward source whose balance is the account's
	// holdings in an ERC-721 collection
	ERC721SourceName = "ERC721"
)

// RewardState is the distributor's current merkle root and the content id of
// the tree document it was built from. A nil *RewardState means no rewards
// have been published yet.
type RewardState struct {
	MerkleRoot common.Hash
	ContentID  string
}

// RewardEntry is one leaf of the published merkle tree
type RewardEntry struct {
	Account     common.Address
	RewardToken common.Address
	// Claimable is cumulative over the lifetime of the distributor
	Claimable *big.Int
	Proof     []common.Hash
}

// RewardSourceMetadata describes how a source earns rewards
type RewardSourceMetadata struct {
	Address         common.Address
	RewardsPerToken *big.Int
}

// RewardSource is a contributor to the rewards in a tree document. Balance is
// only set for ERC721 sources.
type RewardSource struct {
	Name     string
	Metadata RewardSourceMetadata
	Balance  *big.Int
}

// IsERC721 returns true if the source counts ERC-721 holdings
func (r *RewardSource) IsERC721() bool {
	return r.Name == ERC721SourceName
}

// MerkleTreeDocumentMetadata is the metadata block of a tree document
type MerkleTreeDocumentMetadata struct {
	RewardTokenAddress common.Address
	Sources            []*RewardSource
}

// MerkleTreeDocument is the tree published off chain for a given content id.
// Documents are immutable once fetched.
type MerkleTreeDocument struct {
	ContentID string
	Tree      []*RewardEntry
	Metadata  MerkleTreeDocumentMetadata
}

// EntryFor returns the first entry in the tree for the account, or nil
func (d *MerkleTreeDocument) EntryFor(account common.Address) *RewardEntry {
	if d == nil {
		return nil
	}
	for _, entry := range d.Tree {
		if entry.Account == account {
			return entry
		}
	}
	return nil
}

// ClaimRecordParams are the params to initialize a new ClaimRecord
type ClaimRecordParams struct {
	Account     common.Address
	RewardToken common.Address
	Claimable   *big.Int
	Claimed     *big.Int
	Timestamp   int64
	TxHash      common.Hash
}

// NewClaimRecord is a convenience method to init a ClaimRecord struct
func NewClaimRecord(params *ClaimRecordParams) *ClaimRecord {
	return &ClaimRecord{
		account:     params.Account,
		rewardToken: params.RewardToken,
		claimable:   params.Claimable,
		claimed:     params.Claimed,
		timestamp:   params.Timestamp,
		txHash:      params.TxHash,
	}
}

// ClaimRecord is a local record of one successful claim transaction
type ClaimRecord struct {
	account common.Address

	rewardToken common.Address

	// cumulative claimable at the time of the claim
	claimable *big.Int

	// amount this claim transferred, claimable minus the previously claimed amount
	claimed *big.Int

	// milliseconds since epoch
	timestamp int64

	txHash common.Hash
}

// Account returns the claiming account
func (c *ClaimRecord) Account() common.Address {
	return c.account
}

// RewardToken returns the token claimed
func (c *ClaimRecord) RewardToken() common.Address {
	return c.rewardToken
}

// Claimable returns the cumulative claimable amount at claim time
func (c *ClaimRecord) Claimable() *big.Int {
	return c.claimable
}

// Claimed returns the amount transferred by this claim
func (c *ClaimRecord) Claimed() *big.Int {
	return c.claimed
}

// Timestamp returns the claim time in milliseconds from epoch
func (c *ClaimRecord) Timestamp() int64 {
	return c.timestamp
}

// TxHash returns the claim transaction hash
func (c *ClaimRecord) TxHash() common.Hash {
	return c.txHash
}
