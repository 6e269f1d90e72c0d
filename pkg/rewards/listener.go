package rewards

import (
	"context"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/event"
	log "github.com/golang/glog"

	"github.com/joincivil/wavs-rewards-client/pkg/contract"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	// DefaultResubscribeBackoff is the maximum wait between resubscription attempts
	DefaultResubscribeBackoff = 30 * time.Second

	updateSinkSize = 16
)

// ListenerParams are the params to initialize a new Listener
type ListenerParams struct {
	Reconciler *Reconciler
	// Notifier is optional
	Notifier model.Notifier
	Backoff  time.Duration
}

// NewListener is a convenience function to init a Listener
func NewListener(params *ListenerParams) *Listener {
	backoff := params.Backoff
	if backoff <= 0 {
		backoff = DefaultResubscribeBackoff
	}
	return &Listener{
		reconciler: params.Reconciler,
		notifier:   params.Notifier,
		backoff:    backoff,
	}
}

// Listener re-runs reconciliation on every RewardsUpdate event of the
// distributor
type Listener struct {
	reconciler *Reconciler
	notifier   model.Notifier
	backoff    time.Duration
}

// Run watches RewardsUpdate events until ctx is done. Dropped subscriptions
// are re-established with backoff.
func (l *Listener) Run(ctx context.Context) error {
	distributor := l.reconciler.Reader().Distributor()
	sink := make(chan *contract.DistributorRewardsUpdate, updateSinkSize)
	sub := event.ResubscribeErr(l.backoff, func(_ context.Context, lastErr error) (event.Subscription, error) {
		if lastErr != nil {
			log.Errorf("RewardsUpdate subscription dropped, resubscribing: err: %v", lastErr)
		}
		return distributor.WatchRewardsUpdate(&bind.WatchOpts{Context: ctx}, sink)
	})
	defer sub.Unsubscribe()
	log.Infof("Watching RewardsUpdate events on %v", distributor.Address().Hex())

	for {
		select {
		case ev := <-sink:
			triggerID := strconv.FormatUint(ev.TriggerId, 10)
			if err := l.HandleRewardsUpdate(ctx, triggerID); err != nil {
				log.Errorf("Error reconciling after RewardsUpdate %v: err: %v", triggerID, err)
			}
		case err, ok := <-sub.Err():
			if ok && err != nil {
				return err
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleRewardsUpdate clears the pending update if triggerID matches it and
// always re-runs the full reconciliation
func (l *Listener) HandleRewardsUpdate(ctx context.Context, triggerID string) error {
	l.reconciler.metrics.UpdateEvents.Inc()
	if l.reconciler.ClearPendingUpdate(triggerID) {
		log.Infof("Requested rewards update %v completed", triggerID)
	}
	log.Infof("RewardsUpdate event received with trigger id %v, reloading", triggerID)

	err := l.reconciler.Refresh(ctx)
	if err != nil {
		return err
	}
	n := &model.Notification{
		Type:      model.NotificationRewardsUpdate,
		TriggerID: triggerID,
	}
	if state := l.reconciler.View().State; state != nil {
		n.ContentID = state.ContentID
	}
	publish(ctx, l.notifier, n)
	return nil
}
