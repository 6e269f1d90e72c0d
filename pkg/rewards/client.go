package rewards

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	"github.com/joincivil/wavs-rewards-client/pkg/chain"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

const (
	resultSuccess = "success"
	resultFailed  = "failed"
	resultNoOp    = "noop"
)

// ClientParams are the params to initialize a new Client
type ClientParams struct {
	Reconciler *Reconciler
	Executor   *chain.Executor
	History    model.ClaimHistoryPersister
	// Notifier is optional
	Notifier model.Notifier
	Metrics  *Metrics
}

// NewClient is a convenience function to init a Client
func NewClient(params *ClientParams) *Client {
	metrics := params.Metrics
	if metrics == nil {
		metrics = params.Reconciler.metrics
	}
	return &Client{
		reconciler: params.Reconciler,
		executor:   params.Executor,
		history:    params.History,
		notifier:   params.Notifier,
		metrics:    metrics,
	}
}

// Client runs the claim and update flows against the reconciled view
type Client struct {
	reconciler *Reconciler
	executor   *chain.Executor
	history    model.ClaimHistoryPersister
	notifier   model.Notifier
	metrics    *Metrics
}

// Reconciler returns the reconciler the client acts on
func (c *Client) Reconciler() *Reconciler {
	return c.reconciler
}

// TriggerUpdate requests a recomputation of rewards and returns the
// transaction hash once mined. The trigger id is kept as the view's
// PendingUpdate until the matching RewardsUpdate event arrives.
func (c *Client) TriggerUpdate(ctx context.Context) (common.Hash, error) {
	receipt, triggerID, err := c.executor.AddTrigger(ctx)
	if err != nil {
		c.metrics.Triggers.WithLabelValues(resultFailed).Inc()
		c.reconciler.SetPendingUpdate("")
		return common.Hash{}, err
	}
	c.metrics.Triggers.WithLabelValues(resultSuccess).Inc()
	if triggerID != "" {
		log.Infof("Rewards update requested with trigger id %v", triggerID)
		c.reconciler.SetPendingUpdate(triggerID)
	}
	c.notify(ctx, &model.Notification{
		Type:      model.NotificationTrigger,
		Account:   c.executor.Account().Hex(),
		TxHash:    receipt.TxHash.Hex(),
		TriggerID: triggerID,
	})
	return receipt.TxHash, nil
}

// Claim claims the pending reward of the current account. The claimed amount
// is read from chain before submission and a claim that would transfer
// nothing is rejected with *model.NoOpClaimError. On success the record is
// appended to the claim history and the view is refreshed.
func (c *Client) Claim(ctx context.Context) (*model.ClaimRecord, error) {
	if !c.executor.Connected() {
		return nil, model.ErrNotConnected
	}
	view := c.reconciler.View()
	if !view.HasAccount() {
		return nil, model.ErrNoAccount
	}
	entry := view.PendingReward
	if entry == nil {
		return nil, model.ErrNoPendingReward
	}

	claimed, err := c.reconciler.Reader().ClaimedAmount(ctx, entry.Account, entry.RewardToken)
	if err != nil {
		c.metrics.Claims.WithLabelValues(resultFailed).Inc()
		return nil, err
	}
	if entry.Claimable.Cmp(claimed) <= 0 {
		c.metrics.Claims.WithLabelValues(resultNoOp).Inc()
		return nil, &model.NoOpClaimError{Claimable: entry.Claimable, Claimed: claimed}
	}

	receipt, err := c.executor.Claim(ctx, entry)
	if err != nil {
		c.metrics.Claims.WithLabelValues(resultFailed).Inc()
		return nil, err
	}
	c.metrics.Claims.WithLabelValues(resultSuccess).Inc()

	record := model.NewClaimRecord(&model.ClaimRecordParams{
		Account:     entry.Account,
		RewardToken: entry.RewardToken,
		Claimable:   entry.Claimable,
		Claimed:     new(big.Int).Sub(entry.Claimable, claimed),
		Timestamp:   utils.CurrentEpochMillis(),
		TxHash:      receipt.TxHash,
	})
	if err := c.history.AppendClaimRecord(record); err != nil {
		log.Errorf("Error saving claim record for %v: err: %v", receipt.TxHash.Hex(), err)
	}
	log.Infof("Claimed %v of %v for %v in %v", record.Claimed(), entry.RewardToken.Hex(),
		entry.Account.Hex(), receipt.TxHash.Hex())

	c.notify(ctx, &model.Notification{
		Type:    model.NotificationClaim,
		Account: entry.Account.Hex(),
		TxHash:  receipt.TxHash.Hex(),
		Amount:  record.Claimed().String(),
	})
	if err := c.reconciler.Refresh(ctx); err != nil {
		log.Errorf("Error refreshing after claim: err: %v", err)
	}
	return record, nil
}

// ClaimHistory returns the local claim history of the current account
func (c *Client) ClaimHistory() ([]*model.ClaimRecord, error) {
	view := c.reconciler.View()
	if !view.HasAccount() {
		return nil, model.ErrNoAccount
	}
	return c.history.ClaimHistory(view.Account)
}

func (c *Client) notify(ctx context.Context, n *model.Notification) {
	publish(ctx, c.notifier, n)
}

// publish sends n through notifier if one is configured. Failures are logged
// and never fail the calling flow.
func publish(ctx context.Context, notifier model.Notifier, n *model.Notification) {
	if notifier == nil {
		return
	}
	n.Timestamp = utils.CurrentEpochMillis()
	if err := notifier.Notify(ctx, n); err != nil {
		log.Errorf("Error publishing %v notification: err: %v", n.Type, err)
	}
}
