package clientmain

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
	"golang.org/x/sync/errgroup"
)

const (
	pendingMintPruneInterval = time.Hour
	checkCronInterval        = time.Minute
	metricsShutdownTimeout   = 5 * time.Second
)

func checkCron(cr *cron.Cron) {
	entries := cr.Entries()
	for _, entry := range entries {
		log.V(2).Infof("Run times: prev: %v, next: %v", entry.Prev, entry.Next)
	}
}

// runRefresh re-runs reconciliation outside the event stream
func runRefresh(ctx context.Context, c *Components) {
	if err := c.Reconciler.Refresh(ctx); err != nil {
		log.Errorf("Error refreshing rewards: err: %v", err)
		return
	}
	v := c.Reconciler.View()
	log.Infof("Rewards refreshed: generation %v, status %v", v.Generation, v.Status)
}

// runPrunePendingMints drops pending mints that were never fulfilled
func runPrunePendingMints(c *Components) {
	account := c.Minter.Account()
	if account == (common.Address{}) {
		return
	}
	pending, err := c.Minter.PendingMints(account)
	if err != nil {
		log.Errorf("Error pruning pending mints: err: %v", err)
		return
	}
	log.V(2).Infof("%v pending mints for %v", len(pending), account.Hex())
}

func serveMetrics(ctx context.Context, c *Components) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              c.Config.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx) // nolint: errcheck
	}()
	log.Infof("Serving metrics on %v", c.Config.MetricsAddress)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// RunWatch loads the account, then keeps the rewards view current until ctx
// is done. Reconciliation runs on every RewardsUpdate event and on the
// refresh schedule. Mint events are followed when a signer is configured.
func RunWatch(ctx context.Context, c *Components) error {
	schedule, err := c.Config.RefreshSchedule()
	if err != nil {
		return errors.Wrap(err, "invalid refresh schedule")
	}
	if err := c.LoadAccount(ctx); err != nil {
		log.Errorf("Error loading account, continuing: err: %v", err)
	}

	cr := cron.New()
	cr.Schedule(schedule, cron.FuncJob(func() { runRefresh(ctx, c) }))
	cr.Schedule(cron.Every(pendingMintPruneInterval), cron.FuncJob(func() { runPrunePendingMints(c) }))
	cr.Schedule(cron.Every(checkCronInterval), cron.FuncJob(func() { checkCron(cr) }))
	cr.Start()
	defer cr.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Listener.Run(gctx)
	})
	if c.Executor.Connected() && c.Config.Nft() != (common.Address{}) {
		g.Go(func() error {
			if _, err := c.Minter.ReloadOwnedNFTs(gctx); err != nil {
				log.Errorf("Error loading owned nfts: err: %v", err)
			}
			return c.MintListener.Run(gctx)
		})
	}
	if c.Config.MetricsAddress != "" {
		g.Go(func() error {
			return serveMetrics(gctx, c)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.Infof("Watch stopped")
		return nil
	}
	return err
}
