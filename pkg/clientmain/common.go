// Package clientmain wires the rewards client components together from a
// RewardsConfig and runs the long lived watch loop.
package clientmain // import "github.com/joincivil/wavs-rewards-client/pkg/clientmain"

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joincivil/wavs-rewards-client/pkg/chain"
	"github.com/joincivil/wavs-rewards-client/pkg/devnet"
	"github.com/joincivil/wavs-rewards-client/pkg/helpers"
	"github.com/joincivil/wavs-rewards-client/pkg/ipfs"
	"github.com/joincivil/wavs-rewards-client/pkg/mint"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
	"github.com/joincivil/wavs-rewards-client/pkg/nft"
	"github.com/joincivil/wavs-rewards-client/pkg/notifier"
	"github.com/joincivil/wavs-rewards-client/pkg/rewards"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

var chainNames = map[uint64]string{
	1:        "mainnet",
	5:        "goerli",
	17000:    "holesky",
	11155111: "sepolia",
	31337:    "anvil",
	1337:     "local",
}

// ChainName returns a display name for the network
func ChainName(chainID uint64, localhost bool) string {
	if localhost {
		return "anvil"
	}
	if name, ok := chainNames[chainID]; ok {
		return name
	}
	return "unknown"
}

// Components contains the initialized components of the client
type Components struct {
	Config    *utils.RewardsConfig
	Account   common.Address
	Persister model.ClientPersister
	// Notifier is nil when notifications are disabled
	Notifier model.Notifier
	Registry *prometheus.Registry
	Metrics  *rewards.Metrics

	Reader       *chain.Reader
	Executor     *chain.Executor
	Reconciler   *rewards.Reconciler
	Rewards      *rewards.Client
	Listener     *rewards.Listener
	Collection   *nft.Collection
	Explorer     *nft.Explorer
	Minter       *mint.Minter
	MintListener *mint.Listener
	// Faucet is nil unless the localhost flag is set
	Faucet *devnet.Faucet

	closers []func()
}

// InitComponents dials the node and builds every component from config
func InitComponents(ctx context.Context, config *utils.RewardsConfig) (*Components, error) {
	rpcClient, err := rpc.DialContext(ctx, config.EthAPIURL)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to eth API")
	}
	c, err := InitComponentsWithBackend(ctx, config, ethclient.NewClient(rpcClient), rpcClient)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	c.closers = append(c.closers, rpcClient.Close)
	return c, nil
}

// InitComponentsWithBackend builds every component on an existing node
// connection. rpcCaller is only used by the faucet and may be nil.
func InitComponentsWithBackend(ctx context.Context, config *utils.RewardsConfig, backend chain.Backend,
	rpcCaller devnet.RPCCaller) (*Components, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error reading chain id")
	}
	key, err := config.SigningKey()
	if err != nil {
		return nil, errors.Wrap(err, "error reading signing key")
	}

	c := &Components{Config: config}
	c.Account, _ = config.AccountAddress()

	c.Persister, err = helpers.Persister(config)
	if err != nil {
		return nil, errors.Wrap(err, "error initializing persister")
	}
	c.closers = append(c.closers, func() {
		if err := c.Persister.Close(); err != nil {
			log.Errorf("Error closing persister: err: %v", err)
		}
	})

	ps, err := helpers.Notifier(ctx, config)
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "error initializing notifier")
	}
	if ps != nil {
		c.Notifier = ps
		c.closers = append(c.closers, func() { closeNotifier(ps) })
	}

	c.Registry = prometheus.NewRegistry()
	c.Metrics = rewards.NewMetrics(c.Registry)

	c.Reader = chain.NewReader(&chain.ReaderParams{
		Backend:     backend,
		Distributor: config.Distributor(),
		RewardToken: config.RewardToken(),
		Nft:         config.Nft(),
		Minter:      config.Minter(),
		CIDVersion:  cidVersion(config),
	})
	c.Executor, err = chain.NewExecutor(&chain.ExecutorParams{
		Reader:    c.Reader,
		Key:       key,
		ChainID:   chainID,
		ChainName: ChainName(chainID.Uint64(), config.Localhost),
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Reconciler = rewards.NewReconciler(&rewards.ReconcilerParams{
		Reader:  c.Reader,
		Scraper: helpers.MerkleTreeScraper(config),
		Metrics: c.Metrics,
	})
	c.Rewards = rewards.NewClient(&rewards.ClientParams{
		Reconciler: c.Reconciler,
		Executor:   c.Executor,
		History:    c.Persister,
		Notifier:   c.Notifier,
		Metrics:    c.Metrics,
	})
	c.Listener = rewards.NewListener(&rewards.ListenerParams{
		Reconciler: c.Reconciler,
		Notifier:   c.Notifier,
	})

	c.Collection = nft.NewCollection(&nft.CollectionParams{
		Reader:  c.Reader,
		Scraper: helpers.TokenMetadataScraper(config),
		Gateway: config.IPFSGatewayURL,
	})
	c.Explorer = nft.NewExplorer(c.Collection)
	c.Minter = mint.NewMinter(&mint.MinterParams{
		Executor:   c.Executor,
		Persister:  c.Persister,
		Collection: c.Collection,
		Notifier:   c.Notifier,
	})
	c.MintListener = mint.NewListener(&mint.ListenerParams{Minter: c.Minter})

	if config.Localhost && rpcCaller != nil {
		c.Faucet = devnet.NewFaucet(rpcCaller)
	}

	log.Infof("Client initialized on %v (chain %v), account %v, signer %v",
		c.Executor.ChainName(), chainID, c.Account.Hex(), c.Executor.Connected())
	return c, nil
}

// LoadAccount points the reconciler at the configured account and runs the
// first reconciliation
func (c *Components) LoadAccount(ctx context.Context) error {
	if c.Account == (common.Address{}) {
		return model.ErrNoAccount
	}
	return c.Reconciler.SetAccount(ctx, c.Account)
}

// Close releases the node connection, persister and notifier
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// SetupKillNotify cancels the returned context on SIGINT or SIGTERM
func SetupKillNotify(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			log.Infof("Received %v, stopping", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func cidVersion(config *utils.RewardsConfig) int {
	if config.IPFSCIDVersion == 0 {
		return ipfs.CIDv0
	}
	return ipfs.CIDv1
}

func closeNotifier(ps *notifier.PubSubNotifier) {
	if err := ps.Close(); err != nil {
		log.Errorf("Error closing notifier: err: %v", err)
	}
}
