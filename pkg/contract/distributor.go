package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// RewardDistributor is a binding to the merkle reward distributor
type RewardDistributor struct {
	address  common.Address
	contract *bind.BoundContract
}

// DistributorWavsRewardsTrigger is emitted when a rewards update is requested
type DistributorWavsRewardsTrigger struct {
	TriggerId uint64 // nolint: golint
	Raw       types.Log
}

// DistributorRewardsUpdate is emitted when the operator publishes a new root
type DistributorRewardsUpdate struct {
	TriggerId uint64 // nolint: golint
	Raw       types.Log
}

// NewRewardDistributor binds the distributor at address
func NewRewardDistributor(address common.Address, backend bind.ContractBackend) *RewardDistributor {
	return &RewardDistributor{
		address:  address,
		contract: bind.NewBoundContract(address, distributorABI, backend, backend, backend),
	}
}

// Address returns the contract address
func (d *RewardDistributor) Address() common.Address {
	return d.address
}

// Root returns the current merkle root
func (d *RewardDistributor) Root(opts *bind.CallOpts) ([32]byte, error) {
	return callSingle[[32]byte](d.contract, opts, "root")
}

// IpfsHash returns the sha2-256 digest of the current tree document
func (d *RewardDistributor) IpfsHash(opts *bind.CallOpts) ([32]byte, error) {
	return callSingle[[32]byte](d.contract, opts, "ipfsHash")
}

// Claimed returns the cumulative amount of reward claimed by account
func (d *RewardDistributor) Claimed(opts *bind.CallOpts, account common.Address,
	reward common.Address) (*big.Int, error) {
	return callSingle[*big.Int](d.contract, opts, "claimed", account, reward)
}

// AddTrigger requests a new rewards computation
func (d *RewardDistributor) AddTrigger(opts *bind.TransactOpts) (*types.Transaction, error) {
	return d.contract.Transact(opts, "addTrigger")
}

// Claim claims the cumulative claimable amount with its merkle proof
func (d *RewardDistributor) Claim(opts *bind.TransactOpts, account common.Address,
	reward common.Address, claimable *big.Int, proof []common.Hash) (*types.Transaction, error) {
	return d.contract.Transact(opts, "claim", account, reward, claimable, hashesToBytes32(proof))
}

// ParseWavsRewardsTrigger decodes a WavsRewardsTrigger log
func (d *RewardDistributor) ParseWavsRewardsTrigger(log types.Log) (*DistributorWavsRewardsTrigger, error) {
	ev := &DistributorWavsRewardsTrigger{Raw: log}
	err := unpackLog(d.contract, distributorABI, ev, "WavsRewardsTrigger", log)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// FindWavsRewardsTrigger returns the first WavsRewardsTrigger emitted by this
// contract in the receipt
func (d *RewardDistributor) FindWavsRewardsTrigger(receipt *types.Receipt) (*DistributorWavsRewardsTrigger, error) {
	for _, log := range receipt.Logs {
		if log.Address != d.address {
			continue
		}
		ev, err := d.ParseWavsRewardsTrigger(*log)
		if err == ErrEventNotFound {
			continue
		}
		return ev, err
	}
	return nil, ErrEventNotFound
}

// ParseRewardsUpdate decodes a RewardsUpdate log
func (d *RewardDistributor) ParseRewardsUpdate(log types.Log) (*DistributorRewardsUpdate, error) {
	ev := &DistributorRewardsUpdate{Raw: log}
	err := unpackLog(d.contract, distributorABI, ev, "RewardsUpdate", log)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// WatchRewardsUpdate subscribes to RewardsUpdate events
func (d *RewardDistributor) WatchRewardsUpdate(opts *bind.WatchOpts,
	sink chan<- *DistributorRewardsUpdate) (event.Subscription, error) {
	return watchEvent(d.contract, opts, "RewardsUpdate", d.ParseRewardsUpdate, sink)
}
