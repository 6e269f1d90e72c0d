package contract_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/joincivil/wavs-rewards-client/pkg/contract"
	"github.com/joincivil/wavs-rewards-client/pkg/testutils"
)

var (
	distributorAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	nftAddress         = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	minterAddress      = common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
	testAccount        = common.HexToAddress("0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	testRoot           = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
)

func TestDistributorReads(t *testing.T) {
	backend := testutils.NewFakeBackend(31337)
	backend.Deploy(distributorAddress, contract.DistributorABI())
	backend.Returns(distributorAddress, "root", [32]byte(testRoot))
	backend.HandleCall(distributorAddress, "claimed", func(from common.Address, args []interface{}) ([]interface{}, error) {
		if args[0].(common.Address) != testAccount {
			return []interface{}{big.NewInt(0)}, nil
		}
		return []interface{}{big.NewInt(400)}, nil
	})

	d := contract.NewRewardDistributor(distributorAddress, backend)
	root, err := d.Root(&bind.CallOpts{})
	if err != nil {
		t.Fatalf("Should not have failed to read root: err: %v", err)
	}
	if common.Hash(root) != testRoot {
		t.Errorf("Wrong root: %x", root)
	}
	claimed, err := d.Claimed(&bind.CallOpts{}, testAccount, common.Address{})
	if err != nil || claimed.Int64() != 400 {
		t.Errorf("Wrong claimed amount: %v %v", claimed, err)
	}
	_, err = d.IpfsHash(&bind.CallOpts{})
	if err == nil {
		t.Errorf("Should have failed to read an unhandled method")
	}
}

func TestReadWithoutCode(t *testing.T) {
	backend := testutils.NewFakeBackend(31337)
	d := contract.NewRewardDistributor(distributorAddress, backend)
	_, err := d.Root(&bind.CallOpts{})
	if !errors.Is(err, bind.ErrNoCode) {
		t.Errorf("Should have returned ErrNoCode: err: %v", err)
	}
}

func TestFindWavsRewardsTrigger(t *testing.T) {
	d := contract.NewRewardDistributor(distributorAddress, testutils.NewFakeBackend(31337))
	other := testutils.MakeLog(contract.MinterABI(), minterAddress, "MintFulfilled", nil, uint64(1))
	trigger := testutils.MakeLog(contract.DistributorABI(), distributorAddress, "WavsRewardsTrigger", nil, uint64(42))
	receipt := &types.Receipt{Logs: []*types.Log{other, trigger}}

	ev, err := d.FindWavsRewardsTrigger(receipt)
	if err != nil {
		t.Fatalf("Should have found the trigger: err: %v", err)
	}
	if ev.TriggerId != 42 {
		t.Errorf("Wrong trigger id: %v", ev.TriggerId)
	}

	_, err = d.FindWavsRewardsTrigger(&types.Receipt{Logs: []*types.Log{other}})
	if err != contract.ErrEventNotFound {
		t.Errorf("Should have returned ErrEventNotFound: err: %v", err)
	}
}

func TestParseWavsNftMint(t *testing.T) {
	n := contract.NewWavsNft(nftAddress, testutils.NewFakeBackend(31337))
	log := testutils.MakeLog(contract.NftABI(), nftAddress, "WavsNftMint",
		[]common.Hash{common.BytesToHash(testAccount.Bytes())}, big.NewInt(7), "ipfs://Qmabc", uint64(3))
	ev, err := n.ParseWavsNftMint(*log)
	if err != nil {
		t.Fatalf("Should have parsed the mint: err: %v", err)
	}
	if ev.To != testAccount || ev.TokenId.Int64() != 7 || ev.DataUri != "ipfs://Qmabc" || ev.TriggerId != 3 {
		t.Errorf("Wrong mint event values: %+v", ev)
	}
}

func TestWatchRewardsUpdate(t *testing.T) {
	backend := testutils.NewFakeBackend(31337)
	backend.Deploy(distributorAddress, contract.DistributorABI())
	d := contract.NewRewardDistributor(distributorAddress, backend)

	sink := make(chan *contract.DistributorRewardsUpdate, 1)
	sub, err := d.WatchRewardsUpdate(&bind.WatchOpts{Context: context.Background()}, sink)
	if err != nil {
		t.Fatalf("Should have subscribed: err: %v", err)
	}
	defer sub.Unsubscribe()

	// Logs from other contracts and events are filtered out
	backend.EmitLog(testutils.MakeLog(contract.MinterABI(), minterAddress, "MintFulfilled", nil, uint64(1)))
	backend.EmitLog(testutils.MakeLog(contract.DistributorABI(), distributorAddress, "RewardsUpdate", nil, uint64(9)))

	select {
	case ev := <-sink:
		if ev.TriggerId != 9 {
			t.Errorf("Wrong trigger id: %v", ev.TriggerId)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Did not receive the update event")
	}
}

func TestTransactAndRevertReason(t *testing.T) {
	key, _ := crypto.GenerateKey()
	backend := testutils.NewFakeBackend(31337)
	backend.Deploy(distributorAddress, contract.DistributorABI())
	backend.FailEstimate(distributorAddress, "claim", testutils.NewRevertError("InvalidProof"))

	opts, _ := bind.NewKeyedTransactorWithChainID(key, big.NewInt(31337))
	d := contract.NewRewardDistributor(distributorAddress, backend)
	_, err := d.Claim(opts, testAccount, common.Address{}, big.NewInt(1), []common.Hash{testRoot})
	if err == nil {
		t.Fatalf("Should have failed the claim estimate")
	}
	if reason := contract.RevertReason(err); reason != "InvalidProof" {
		t.Errorf("Wrong revert reason: %v", reason)
	}
	if reason := contract.RevertReason(errors.New("nonce too low")); reason != "nonce too low" {
		t.Errorf("Should have fallen back to the error text: %v", reason)
	}
	if contract.RevertReason(nil) != "" {
		t.Errorf("Nil error should have no reason")
	}
}
