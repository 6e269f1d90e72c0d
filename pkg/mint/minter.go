// Package mint submits paid mint requests to the WAVS minter and tracks them
// until the operator fulfills them.
package mint // import "github.com/joincivil/wavs-rewards-client/pkg/mint"

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/joincivil/wavs-rewards-client/pkg/chain"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/nft"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

var (
	// DefaultMintPrice is used when the minter price cannot be read, 0.1 ETH
	DefaultMintPrice = new(big.Int).Div(utils.WeiPerEther(), big.NewInt(10))

	// ErrNoTriggerID is returned when a mint was mined without a WavsNftTrigger event
	ErrNoTriggerID = errors.New("mint transaction emitted no trigger id")
)

// MinterParams are the params to initialize a new Minter
type MinterParams struct {
	Executor   *chain.Executor
	Persister  model.PendingMintPersister
	Collection *nft.Collection
	// Notifier is optional
	Notifier model.Notifier
	// Now defaults to time.Now
	Now func() time.Time
}

// NewMinter is a convenience function to init a Minter
func NewMinter(params *MinterParams) *Minter {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Minter{
		executor:   params.Executor,
		persister:  params.Persister,
		collection: params.Collection,
		notifier:   params.Notifier,
		now:        now,
	}
}

// Minter requests mints for the executor's account and keeps its pending
// mints and owned tokens
type Minter struct {
	executor   *chain.Executor
	persister  model.PendingMintPersister
	collection *nft.Collection
	notifier   model.Notifier
	now        func() time.Time

	// guards the read-modify-write of stored pending mints
	pendingMu sync.Mutex

	ownedMu sync.RWMutex
	owned   []*model.NFT
}

// Account returns the account mints are made for
func (m *Minter) Account() common.Address {
	return m.executor.Account()
}

// MintPrice returns the minter's price, or DefaultMintPrice when the minter
// is not deployed or the read fails
func (m *Minter) MintPrice(ctx context.Context) *big.Int {
	reader := m.executor.Reader()
	hasCode, err := reader.HasCode(ctx, reader.Minter().Address())
	if err != nil || !hasCode {
		log.Errorf("Minter not available at %v, using default price: err: %v", reader.Minter().Address().Hex(), err)
		return new(big.Int).Set(DefaultMintPrice)
	}
	price, err := reader.MintPrice(ctx)
	if err != nil {
		log.Errorf("Error reading mint price, using default: err: %v", err)
		return new(big.Int).Set(DefaultMintPrice)
	}
	return price
}

// TriggerMint pays the mint price to request a token for prompt and records
// the request as pending. It fails before submission when the minter is not
// deployed or the account cannot cover the price.
func (m *Minter) TriggerMint(ctx context.Context, prompt string) (string, error) {
	if !m.executor.Connected() {
		return "", model.ErrNotConnected
	}
	account := m.executor.Account()
	reader := m.executor.Reader()
	minterAddress := reader.Minter().Address()

	hasCode, err := reader.HasCode(ctx, minterAddress)
	if err != nil {
		return "", err
	}
	if !hasCode {
		return "", errors.Wrapf(model.ErrContractNotDeployed, "minter %v", minterAddress.Hex())
	}

	price := m.MintPrice(ctx)
	balance, err := reader.NativeBalance(ctx, account)
	if err != nil {
		return "", err
	}
	if balance.Cmp(price) < 0 {
		return "", model.NewInsufficientBalanceError(balance, price, m.executor.ChainID(), m.executor.ChainName())
	}

	log.Infof("Triggering mint for %v at price %v ETH", account.Hex(), utils.FormatEther(price))
	receipt, triggerID, err := m.executor.TriggerMint(ctx, prompt, price)
	if err != nil {
		return "", err
	}
	if triggerID == "" {
		return "", errors.Wrapf(ErrNoTriggerID, "tx %v", receipt.TxHash.Hex())
	}
	log.Infof("Mint triggered with id %v in tx %v", triggerID, receipt.TxHash.Hex())

	pending := model.NewPendingMint(&model.PendingMintParams{
		TriggerID: triggerID,
		Prompt:    prompt,
		Timestamp: utils.TimeToMillis(m.now()),
	})
	if err := m.addPending(account, pending); err != nil {
		log.Errorf("Error saving pending mint %v: err: %v", triggerID, err)
	}

	if m.notifier != nil {
		n := &model.Notification{
			Type:      model.NotificationMint,
			Account:   account.Hex(),
			TxHash:    receipt.TxHash.Hex(),
			TriggerID: triggerID,
			Amount:    price.String(),
			Timestamp: pending.Timestamp(),
		}
		if err := m.notifier.Notify(ctx, n); err != nil {
			log.Errorf("Error publishing mint notification: err: %v", err)
		}
	}
	return triggerID, nil
}

// PendingMints returns the account's unfulfilled mints submitted within the
// last 24 hours. Older entries are dropped from storage.
func (m *Minter) PendingMints(account common.Address) ([]*model.PendingMint, error) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	return m.loadPending(account)
}

// HandleMintFulfilled removes the pending mint with triggerID and reloads the
// owned tokens. It returns false when no pending mint matched.
func (m *Minter) HandleMintFulfilled(ctx context.Context, triggerID string) (bool, error) {
	account := m.executor.Account()
	removed, err := m.removePending(account, triggerID)
	if err != nil || !removed {
		return false, err
	}
	log.Infof("Mint %v fulfilled", triggerID)
	if _, err := m.ReloadOwnedNFTs(ctx); err != nil {
		log.Errorf("Error reloading owned nfts after mint %v: err: %v", triggerID, err)
	}
	return true, nil
}

// OwnedNFTs returns the tokens loaded by the last reload
func (m *Minter) OwnedNFTs() []*model.NFT {
	m.ownedMu.RLock()
	defer m.ownedMu.RUnlock()
	owned := make([]*model.NFT, len(m.owned))
	copy(owned, m.owned)
	return owned
}

// ReloadOwnedNFTs reads the tokens held by the account
func (m *Minter) ReloadOwnedNFTs(ctx context.Context) ([]*model.NFT, error) {
	account := m.executor.Account()
	if account == (common.Address{}) {
		return nil, model.ErrNoAccount
	}
	owned, err := m.collection.OwnedNFTs(ctx, account)
	if err != nil {
		return nil, err
	}
	m.ownedMu.Lock()
	m.owned = owned
	m.ownedMu.Unlock()
	return owned, nil
}

func (m *Minter) loadPending(account common.Address) ([]*model.PendingMint, error) {
	stored, err := m.persister.PendingMints(account)
	if err != nil {
		return nil, err
	}
	now := m.now()
	fresh := make([]*model.PendingMint, 0, len(stored))
	for _, p := range stored {
		if p.Expired(now) {
			log.V(2).Infof("Dropping expired pending mint %v", p.TriggerID())
			continue
		}
		fresh = append(fresh, p)
	}
	if len(fresh) != len(stored) {
		if err := m.persister.SavePendingMints(account, fresh); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

func (m *Minter) addPending(account common.Address, pending *model.PendingMint) error {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	mints, err := m.loadPending(account)
	if err != nil {
		return err
	}
	return m.persister.SavePendingMints(account, append(mints, pending))
}

func (m *Minter) removePending(account common.Address, triggerID string) (bool, error) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	mints, err := m.loadPending(account)
	if err != nil {
		return false, err
	}
	kept := make([]*model.PendingMint, 0, len(mints))
	for _, p := range mints {
		if p.TriggerID() != triggerID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(mints) {
		return false, nil
	}
	return true, m.persister.SavePendingMints(account, kept)
}
