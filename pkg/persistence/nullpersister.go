// Package persistence contains components to store the client's local state
package persistence // import "github.com/joincivil/wavs-rewards-client/pkg/persistence"

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

// NullPersister is a persister that does not save any values and always returns
// empty values for reads.  Used when persistence is not configured.
type NullPersister struct{}

// ClaimHistory returns an empty history
func (n *NullPersister) ClaimHistory(account common.Address) ([]*model.ClaimRecord, error) {
	return []*model.ClaimRecord{}, nil
}

// AppendClaimRecord does nothing
func (n *NullPersister) AppendClaimRecord(record *model.ClaimRecord) error {
	return nil
}

// PendingMints returns no pending mints
func (n *NullPersister) PendingMints(account common.Address) ([]*model.PendingMint, error) {
	return []*model.PendingMint{}, nil
}

// SavePendingMints does nothing
func (n *NullPersister) SavePendingMints(account common.Address, mints []*model.PendingMint) error {
	return nil
}

// Close does nothing
func (n *NullPersister) Close() error {
	return nil
}
