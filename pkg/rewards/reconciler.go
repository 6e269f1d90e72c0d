// Package rewards contains the reconciliation of on chain reward state with
// the published merkle tree document, and the claim and update flows on top
// of it.
package rewards // import "github.com/joincivil/wavs-rewards-client/pkg/rewards"

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/joincivil/wavs-rewards-client/pkg/chain"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

// Status is the state of the reconciliation cycle
type Status string

const (
	// StatusIdle is the status before the first cycle
	StatusIdle Status = "idle"
	// StatusLoading is the status while a cycle is in flight
	StatusLoading Status = "loading"
	// StatusReady is the status after a successful cycle
	StatusReady Status = "ready"
	// StatusError is the status after a critical read failed
	StatusError Status = "error"
)

const (
	degradedTokenBalance = "token_balance"
	degradedSources      = "sources"
)

// View is a snapshot of the reconciled rewards state. Values in a published
// View are never mutated.
type View struct {
	Status     Status
	Err        error
	Generation uint64

	// Account is the zero address when no account is set
	Account     common.Address
	RewardToken common.Address

	State    *model.RewardState
	Document *model.MerkleTreeDocument

	PendingReward *model.RewardEntry
	ClaimedAmount *big.Int
	TokenBalance  *big.Int
	Sources       []*model.RewardSource

	// PendingUpdate is the trigger id of a requested rewards update that has
	// not been observed yet
	PendingUpdate string
	LoadedOnce    bool
}

// HasAccount returns true if the view was reconciled for an account
func (v View) HasAccount() bool {
	return v.Account != (common.Address{})
}

// CanClaim returns true if the pending reward exceeds the claimed amount
func (v View) CanClaim() bool {
	if v.PendingReward == nil || v.PendingReward.Claimable == nil {
		return false
	}
	claimed := v.ClaimedAmount
	if claimed == nil {
		claimed = big.NewInt(0)
	}
	return v.PendingReward.Claimable.Cmp(claimed) > 0
}

// ReconcilerParams are the params to initialize a new Reconciler
type ReconcilerParams struct {
	Reader  *chain.Reader
	Scraper model.MerkleTreeScraper
	Metrics *Metrics
}

// NewReconciler is a convenience function to init a Reconciler
func NewReconciler(params *ReconcilerParams) *Reconciler {
	metrics := params.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Reconciler{
		reader:  params.Reader,
		scraper: params.Scraper,
		metrics: metrics,
		view: View{
			Status:      StatusIdle,
			RewardToken: params.Reader.RewardToken(),
		},
	}
}

// Reconciler keeps a View of the rewards state current. Every cycle takes a
// new generation and results from superseded cycles are dropped.
type Reconciler struct {
	reader  *chain.Reader
	scraper model.MerkleTreeScraper
	metrics *Metrics

	mu         sync.Mutex
	generation uint64
	view       View

	// sendMu keeps feed delivery in the order views were produced
	sendMu sync.Mutex
	feed   event.Feed
}

// View returns the current view
func (r *Reconciler) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Subscribe delivers every new View to ch. Subscribers must keep draining ch
// since delivery blocks the reconciler.
func (r *Reconciler) Subscribe(ch chan<- View) event.Subscription {
	return r.feed.Subscribe(ch)
}

// Reader returns the chain reader used by the reconciler
func (r *Reconciler) Reader() *chain.Reader {
	return r.reader
}

// SetAccount switches the reconciled account and runs a cycle. The zero
// address clears the account.
func (r *Reconciler) SetAccount(ctx context.Context, account common.Address) error {
	r.mu.Lock()
	if r.view.Account != account {
		r.view.Account = account
		r.view.PendingReward = nil
		r.view.ClaimedAmount = nil
		r.view.TokenBalance = nil
		r.view.Sources = nil
	}
	r.mu.Unlock()
	return r.Refresh(ctx)
}

// SetPendingUpdate marks a requested rewards update as in flight
func (r *Reconciler) SetPendingUpdate(triggerID string) {
	r.update(func(v *View) bool {
		v.PendingUpdate = triggerID
		return true
	})
}

// ClearPendingUpdate unsets the in flight update if it matches triggerID
func (r *Reconciler) ClearPendingUpdate(triggerID string) bool {
	cleared := false
	r.update(func(v *View) bool {
		if v.PendingUpdate == "" || v.PendingUpdate != triggerID {
			return false
		}
		v.PendingUpdate = ""
		cleared = true
		return true
	})
	return cleared
}

// update applies fn to the view and publishes the result if fn reports a change
func (r *Reconciler) update(fn func(v *View) bool) {
	r.mu.Lock()
	if !fn(&r.view) {
		r.mu.Unlock()
		return
	}
	r.publishLocked()
}

// publishLocked sends the current view to subscribers and releases r.mu
func (r *Reconciler) publishLocked() {
	snapshot := r.view
	r.sendMu.Lock()
	r.mu.Unlock()
	defer r.sendMu.Unlock()
	r.feed.Send(snapshot)
}

type loadResult struct {
	state        *model.RewardState
	doc          *model.MerkleTreeDocument
	rewardToken  common.Address
	entry        *model.RewardEntry
	claimed      *big.Int
	tokenBalance *big.Int
	sources      []*model.RewardSource
}

// Refresh runs a full reconciliation cycle. A result superseded by a newer
// cycle or a different account is dropped without error.
func (r *Reconciler) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	account := r.view.Account
	prevDoc := r.view.Document
	r.view.Status = StatusLoading
	r.view.Generation = gen
	r.publishLocked()

	res, err := r.load(ctx, account, prevDoc)

	r.mu.Lock()
	if gen != r.generation || account != r.view.Account {
		r.mu.Unlock()
		r.metrics.Discarded.Inc()
		log.V(1).Infof("Dropping reconciliation generation %v for %v", gen, account.Hex())
		return nil
	}
	r.view.LoadedOnce = true
	if err != nil {
		r.view.Status = StatusError
		r.view.Err = err
		r.publishLocked()
		r.metrics.Cycles.WithLabelValues(string(StatusError)).Inc()
		log.Errorf("Error reconciling rewards: err: %v", err)
		return err
	}
	r.view.Status = StatusReady
	r.view.Err = nil
	r.view.State = res.state
	r.view.Document = res.doc
	r.view.RewardToken = res.rewardToken
	r.view.PendingReward = res.entry
	r.view.ClaimedAmount = res.claimed
	r.view.TokenBalance = res.tokenBalance
	r.view.Sources = res.sources
	r.publishLocked()
	r.metrics.Cycles.WithLabelValues(string(StatusReady)).Inc()
	return nil
}

func (r *Reconciler) load(ctx context.Context, account common.Address,
	prevDoc *model.MerkleTreeDocument) (*loadResult, error) {
	state, err := r.reader.RewardState(ctx)
	if err != nil {
		return nil, err
	}
	res := &loadResult{state: state, sources: []*model.RewardSource{}}

	if state != nil {
		if prevDoc != nil && prevDoc.ContentID == state.ContentID {
			res.doc = prevDoc
		} else {
			doc, err := r.scraper.FetchMerkleTree(ctx, state.ContentID)
			if err != nil {
				return nil, err
			}
			res.doc = doc
		}
	}
	res.rewardToken = r.rewardToken(res.doc)

	if account == (common.Address{}) {
		return res, nil
	}
	res.entry = res.doc.EntryFor(account)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		claimed, err := r.reader.ClaimedAmount(gctx, account, res.rewardToken)
		if err != nil {
			return err
		}
		res.claimed = claimed
		return nil
	})
	g.Go(func() error {
		balance, err := r.reader.ERC20Balance(gctx, res.rewardToken, account)
		if err != nil {
			r.degrade(degradedTokenBalance, err)
			balance = big.NewInt(0)
		}
		res.tokenBalance = balance
		return nil
	})
	g.Go(func() error {
		res.sources = r.loadSources(gctx, res.doc, account)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// rewardToken returns the document's reward token, or the configured one when
// the document does not name one
func (r *Reconciler) rewardToken(doc *model.MerkleTreeDocument) common.Address {
	if doc != nil && doc.Metadata.RewardTokenAddress != (common.Address{}) {
		return doc.Metadata.RewardTokenAddress
	}
	return r.reader.RewardToken()
}

// loadSources copies the document's sources with the account's ERC721
// balances. Any failed balance read degrades the whole list to empty.
func (r *Reconciler) loadSources(ctx context.Context, doc *model.MerkleTreeDocument,
	account common.Address) []*model.RewardSource {
	if doc == nil {
		return []*model.RewardSource{}
	}
	sources := make([]*model.RewardSource, len(doc.Metadata.Sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, source := range doc.Metadata.Sources {
		copied := &model.RewardSource{Name: source.Name, Metadata: source.Metadata}
		sources[i] = copied
		if !copied.IsERC721() {
			continue
		}
		g.Go(func() error {
			balance, err := r.reader.ERC721Balance(gctx, copied.Metadata.Address, account)
			if err != nil {
				return err
			}
			copied.Balance = balance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.degrade(degradedSources, err)
		return []*model.RewardSource{}
	}
	return sources
}

func (r *Reconciler) degrade(field string, err error) {
	r.metrics.Degraded.WithLabelValues(field).Inc()
	log.Errorf("Error reading %v, showing empty value: err: %v", field, err)
}
