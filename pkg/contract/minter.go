package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// WavsMinter is a binding to the WAVS NFT minter
type WavsMinter struct {
	address  common.Address
	contract *bind.BoundContract
}

// MinterWavsNftTrigger is emitted when a paid mint request is accepted
type MinterWavsNftTrigger struct {
	Sender    common.Address
	Prompt    string
	TriggerId uint64 // nolint: golint
	Raw       types.Log
}

// MinterMintFulfilled is emitted when the operator completes a mint
type MinterMintFulfilled struct {
	TriggerId uint64 // nolint: golint
	Raw       types.Log
}

// NewWavsMinter binds the minter at address
func NewWavsMinter(address common.Address, backend bind.ContractBackend) *WavsMinter {
	return &WavsMinter{
		address:  address,
		contract: bind.NewBoundContract(address, minterABI, backend, backend, backend),
	}
}

// Address returns the contract address
func (m *WavsMinter) Address() common.Address {
	return m.address
}

// MintPrice returns the price of a mint in wei
func (m *WavsMinter) MintPrice(opts *bind.CallOpts) (*big.Int, error) {
	return callSingle[*big.Int](m.contract, opts, "mintPrice")
}

// TriggerMint requests a mint for prompt. opts.Value must carry the price.
func (m *WavsMinter) TriggerMint(opts *bind.TransactOpts, prompt string) (*types.Transaction, error) {
	return m.contract.Transact(opts, "triggerMint", prompt)
}

// ParseWavsNftTrigger decodes a WavsNftTrigger log
func (m *WavsMinter) ParseWavsNftTrigger(log types.Log) (*MinterWavsNftTrigger, error) {
	ev := &MinterWavsNftTrigger{Raw: log}
	err := unpackLog(m.contract, minterABI, ev, "WavsNftTrigger", log)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// FindWavsNftTrigger returns the first WavsNftTrigger emitted by this
// contract in the receipt
func (m *WavsMinter) FindWavsNftTrigger(receipt *types.Receipt) (*MinterWavsNftTrigger, error) {
	for _, log := range receipt.Logs {
		if log.Address != m.address {
			continue
		}
		ev, err := m.ParseWavsNftTrigger(*log)
		if err == ErrEventNotFound {
			continue
		}
		return ev, err
	}
	return nil, ErrEventNotFound
}

// ParseMintFulfilled decodes a MintFulfilled log
func (m *WavsMinter) ParseMintFulfilled(log types.Log) (*MinterMintFulfilled, error) {
	ev := &MinterMintFulfilled{Raw: log}
	err := unpackLog(m.contract, minterABI, ev, "MintFulfilled", log)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// WatchMintFulfilled subscribes to MintFulfilled events
func (m *WavsMinter) WatchMintFulfilled(opts *bind.WatchOpts,
	sink chan<- *MinterMintFulfilled) (event.Subscription, error) {
	return watchEvent(m.contract, opts, "MintFulfilled", m.ParseMintFulfilled, sink)
}
