package clientmain_test

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/joincivil/wavs-rewards-client/pkg/clientmain"
	"github.com/joincivil/wavs-rewards-client/pkg/contract"
	"github.com/joincivil/wavs-rewards-client/pkg/rewards"
	"github.com/joincivil/wavs-rewards-client/pkg/testutils"
	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

var (
	distributorAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	tokenAddress       = "0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9"
)

func setupBackend() *testutils.FakeBackend {
	backend := testutils.NewFakeBackend(31337)
	backend.Deploy(common.HexToAddress(distributorAddress), contract.DistributorABI())
	backend.Deploy(common.HexToAddress(tokenAddress), contract.TokenABI())
	backend.Returns(common.HexToAddress(distributorAddress), "root", [32]byte{})
	backend.Returns(common.HexToAddress(distributorAddress), "ipfsHash", [32]byte{})
	backend.Returns(common.HexToAddress(distributorAddress), "claimed", common.Big0)
	backend.Returns(common.HexToAddress(tokenAddress), "balanceOf", common.Big0)
	return backend
}

func testConfig() *utils.RewardsConfig {
	key, _ := crypto.GenerateKey()
	return &utils.RewardsConfig{
		Localhost:          true,
		DistributorAddress: distributorAddress,
		RewardTokenAddress: tokenAddress,
		IPFSGatewayURL:     "https://ipfs.io/ipfs/",
		IPFSCIDVersion:     1,
		PrivateKey:         hex.EncodeToString(crypto.FromECDSA(key)),
		RefreshCron:        "@every 1h",
		PersisterType:      utils.PersisterTypeNone,
	}
}

func TestChainName(t *testing.T) {
	if clientmain.ChainName(17000, false) != "holesky" {
		t.Errorf("Wrong name for holesky")
	}
	if clientmain.ChainName(17000, true) != "anvil" {
		t.Errorf("Localhost flag should name the chain anvil")
	}
	if clientmain.ChainName(99, false) != "unknown" {
		t.Errorf("Unknown chain ids should be named unknown")
	}
}

func TestInitComponents(t *testing.T) {
	config := testConfig()
	c, err := clientmain.InitComponentsWithBackend(context.Background(), config, setupBackend(), nil)
	if err != nil {
		t.Fatalf("Should have initialized components: err: %v", err)
	}
	defer c.Close()

	account, _ := config.AccountAddress()
	if c.Account != account || !c.Executor.Connected() || c.Executor.Account() != account {
		t.Errorf("Signer account should be used: %v %v", c.Account.Hex(), c.Executor.Account().Hex())
	}
	if c.Executor.ChainID() != 31337 || c.Executor.ChainName() != "anvil" {
		t.Errorf("Wrong chain: %v %v", c.Executor.ChainID(), c.Executor.ChainName())
	}
	if c.Notifier != nil {
		t.Errorf("Notifier should be disabled")
	}
	if c.Faucet != nil {
		t.Errorf("Faucet needs an rpc client")
	}

	if err := c.LoadAccount(context.Background()); err != nil {
		t.Fatalf("Should have loaded account: err: %v", err)
	}
	view := c.Reconciler.View()
	if view.Status != rewards.StatusReady || view.State != nil || view.Account != account {
		t.Errorf("Should have an absent reward state: %+v", view)
	}
}

func TestInitComponentsReadOnly(t *testing.T) {
	config := testConfig()
	config.PrivateKey = ""
	c, err := clientmain.InitComponentsWithBackend(context.Background(), config, setupBackend(), nil)
	if err != nil {
		t.Fatalf("Should have initialized components: err: %v", err)
	}
	defer c.Close()
	if c.Executor.Connected() {
		t.Errorf("Executor should be read-only")
	}
	if err := c.LoadAccount(context.Background()); err == nil {
		t.Errorf("Should fail to load without an account")
	}
}

func TestRunWatch(t *testing.T) {
	backend := setupBackend()
	c, err := clientmain.InitComponentsWithBackend(context.Background(), testConfig(), backend, nil)
	if err != nil {
		t.Fatalf("Should have initialized components: err: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- clientmain.RunWatch(ctx, c)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for backend.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if backend.Subscribers() == 0 {
		t.Fatalf("Should have subscribed to rewards updates")
	}
	if !c.Reconciler.View().LoadedOnce {
		t.Errorf("Account should have been loaded before watching")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch should stop cleanly: err: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Watch did not stop")
	}
}
