package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20 is a binding to an ERC-20 token
type ERC20 struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewERC20 binds the token at address
func NewERC20(address common.Address, caller bind.ContractCaller) *ERC20 {
	return &ERC20{
		address:  address,
		contract: bind.NewBoundContract(address, erc20ABI, caller, nil, nil),
	}
}

// Address returns the contract address
func (t *ERC20) Address() common.Address {
	return t.address
}

// BalanceOf returns the token balance of account
func (t *ERC20) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	return callSingle[*big.Int](t.contract, opts, "balanceOf", account)
}

// Name returns the token name
func (t *ERC20) Name(opts *bind.CallOpts) (string, error) {
	return callSingle[string](t.contract, opts, "name")
}

// Symbol returns the token symbol
func (t *ERC20) Symbol(opts *bind.CallOpts) (string, error) {
	return callSingle[string](t.contract, opts, "symbol")
}

// Decimals returns the token decimals
func (t *ERC20) Decimals(opts *bind.CallOpts) (uint8, error) {
	return callSingle[uint8](t.contract, opts, "decimals")
}
