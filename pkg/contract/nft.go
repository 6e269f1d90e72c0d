package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// WavsNft is a binding to the WAVS NFT collection
type WavsNft struct {
	address  common.Address
	contract *bind.BoundContract
}

// WavsNftMint is emitted when the operator mints a token
type WavsNftMint struct {
	To        common.Address
	TokenId   *big.Int // nolint: golint
	DataUri   string   // nolint: golint
	TriggerId uint64   // nolint: golint
	Raw       types.Log
}

// NewWavsNft binds the collection at address
func NewWavsNft(address common.Address, backend bind.ContractBackend) *WavsNft {
	return &WavsNft{
		address:  address,
		contract: bind.NewBoundContract(address, nftABI, backend, backend, backend),
	}
}

// NewWavsNftCaller binds the collection for reads only
func NewWavsNftCaller(address common.Address, caller bind.ContractCaller) *WavsNft {
	return &WavsNft{
		address:  address,
		contract: bind.NewBoundContract(address, nftABI, caller, nil, nil),
	}
}

// Address returns the contract address
func (n *WavsNft) Address() common.Address {
	return n.address
}

// BalanceOf returns the number of tokens held by owner
func (n *WavsNft) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	return callSingle[*big.Int](n.contract, opts, "balanceOf", owner)
}

// OwnerOf returns the owner of tokenID
func (n *WavsNft) OwnerOf(opts *bind.CallOpts, tokenID *big.Int) (common.Address, error) {
	return callSingle[common.Address](n.contract, opts, "ownerOf", tokenID)
}

// TokenURI returns the metadata URI of tokenID
func (n *WavsNft) TokenURI(opts *bind.CallOpts, tokenID *big.Int) (string, error) {
	return callSingle[string](n.contract, opts, "tokenURI", tokenID)
}

// TotalSupply returns the number of minted tokens
func (n *WavsNft) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	return callSingle[*big.Int](n.contract, opts, "totalSupply")
}

// TokenByIndex returns the token id at a global index
func (n *WavsNft) TokenByIndex(opts *bind.CallOpts, index *big.Int) (*big.Int, error) {
	return callSingle[*big.Int](n.contract, opts, "tokenByIndex", index)
}

// TokenOfOwnerByIndex returns the token id at an index of owner's holdings
func (n *WavsNft) TokenOfOwnerByIndex(opts *bind.CallOpts, owner common.Address,
	index *big.Int) (*big.Int, error) {
	return callSingle[*big.Int](n.contract, opts, "tokenOfOwnerByIndex", owner, index)
}

// ParseWavsNftMint decodes a WavsNftMint log
func (n *WavsNft) ParseWavsNftMint(log types.Log) (*WavsNftMint, error) {
	ev := &WavsNftMint{Raw: log}
	err := unpackLog(n.contract, nftABI, ev, "WavsNftMint", log)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// WatchWavsNftMint subscribes to mints, optionally filtered by recipient
func (n *WavsNft) WatchWavsNftMint(opts *bind.WatchOpts, sink chan<- *WavsNftMint,
	to []common.Address) (event.Subscription, error) {
	var toRule []interface{}
	for _, t := range to {
		toRule = append(toRule, t)
	}
	return watchEvent(n.contract, opts, "WavsNftMint", n.ParseWavsNftMint, sink, toRule)
}
