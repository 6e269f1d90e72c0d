package mint

import (
	"context"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	log "github.com/golang/glog"

	"github.com/joincivil/wavs-rewards-client/pkg/contract"
)

const (
	defaultResubscribeBackoff = 30 * time.Second

	mintSinkSize = 16
)

// ListenerParams are the params to initialize a new Listener
type ListenerParams struct {
	Minter  *Minter
	Backoff time.Duration
}

// NewListener is a convenience function to init a Listener
func NewListener(params *ListenerParams) *Listener {
	backoff := params.Backoff
	if backoff <= 0 {
		backoff = defaultResubscribeBackoff
	}
	return &Listener{minter: params.Minter, backoff: backoff}
}

// Listener follows MintFulfilled events from the minter and WavsNftMint
// events to the minter's account
type Listener struct {
	minter  *Minter
	backoff time.Duration
}

// Run watches both events until ctx is done. Dropped subscriptions are
// re-established with backoff.
func (l *Listener) Run(ctx context.Context) error {
	reader := l.minter.executor.Reader()
	account := l.minter.Account()

	fulfilled := make(chan *contract.MinterMintFulfilled, mintSinkSize)
	fulfilledSub := event.ResubscribeErr(l.backoff, func(_ context.Context, lastErr error) (event.Subscription, error) {
		if lastErr != nil {
			log.Errorf("MintFulfilled subscription dropped, resubscribing: err: %v", lastErr)
		}
		return reader.Minter().WatchMintFulfilled(&bind.WatchOpts{Context: ctx}, fulfilled)
	})
	defer fulfilledSub.Unsubscribe()

	minted := make(chan *contract.WavsNftMint, mintSinkSize)
	mintedSub := event.ResubscribeErr(l.backoff, func(_ context.Context, lastErr error) (event.Subscription, error) {
		if lastErr != nil {
			log.Errorf("WavsNftMint subscription dropped, resubscribing: err: %v", lastErr)
		}
		return reader.Nft().WatchWavsNftMint(&bind.WatchOpts{Context: ctx}, minted, []common.Address{account})
	})
	defer mintedSub.Unsubscribe()
	log.Infof("Watching mint events for %v", account.Hex())

	for {
		select {
		case ev := <-fulfilled:
			triggerID := strconv.FormatUint(ev.TriggerId, 10)
			if _, err := l.minter.HandleMintFulfilled(ctx, triggerID); err != nil {
				log.Errorf("Error handling MintFulfilled %v: err: %v", triggerID, err)
			}
		case ev := <-minted:
			log.Infof("Token %v minted to %v", ev.TokenId, ev.To.Hex())
			if _, err := l.minter.ReloadOwnedNFTs(ctx); err != nil {
				log.Errorf("Error reloading owned nfts: err: %v", err)
			}
		case err := <-fulfilledSub.Err():
			return err
		case err := <-mintedSub.Err():
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
