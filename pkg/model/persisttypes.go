package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// ClaimHistoryPersister is the interface to store the local claim history of
// an account. History is append-only and never deduplicated.
type ClaimHistoryPersister interface {
	// ClaimHistory returns the claim records for the account, oldest first
	ClaimHistory(account common.Address) ([]*ClaimRecord, error)
	// AppendClaimRecord adds a record to the account's history
	AppendClaimRecord(record *ClaimRecord) error
}

// PendingMintPersister is the interface to store mints awaiting fulfillment
type PendingMintPersister interface {
	// PendingMints returns all stored pending mints for the account, oldest first
	PendingMints(account common.Address) ([]*PendingMint, error)
	// SavePendingMints replaces the stored pending mints for the account
	SavePendingMints(account common.Address, mints []*PendingMint) error
}

// ClientPersister groups the persisters used by the client
type ClientPersister interface {
	ClaimHistoryPersister
	PendingMintPersister
	Close() error
}
