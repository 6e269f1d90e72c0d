package model

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

var (
	// ErrNotConnected is returned when a write is attempted without a signer
	ErrNotConnected = errors.New("no signing account configured")

	// ErrNoAccount is returned when an account scoped operation has no account
	ErrNoAccount = errors.New("no account set")

	// ErrNoPendingReward is returned when a claim is attempted but the tree has
	// no entry for the account
	ErrNoPendingReward = errors.New("no pending reward for account")

	// ErrContractNotDeployed is returned when there is no code at a contract address
	ErrContractNotDeployed = errors.New("contract not deployed at address")

	// ErrPersisterNoResults is returned when a persister finds nothing for a key
	ErrPersisterNoResults = errors.New("no results from persister")
)

// ReadError is a failed contract read. Reverts, missing code and undecodable
// return data all surface this way.
type ReadError struct {
	Contract string
	Method   string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading %v.%v: %v", e.Contract, e.Method, e.Err)
}

// Unwrap returns the underlying error
func (e *ReadError) Unwrap() error {
	return e.Err
}

// FetchErrorKind classifies an off-chain fetch failure
type FetchErrorKind int

const (
	// FetchErrorTransport is a network level failure
	FetchErrorTransport FetchErrorKind = iota
	// FetchErrorStatus is a non-2xx gateway response
	FetchErrorStatus
	// FetchErrorSchema is a response body that could not be decoded or validated
	FetchErrorSchema
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchErrorTransport:
		return "transport"
	case FetchErrorStatus:
		return "status"
	case FetchErrorSchema:
		return "schema"
	}
	return "unknown"
}

// FetchError is a failed off-chain fetch
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchErrorStatus {
		return fmt.Sprintf("fetch %v failed with status %v", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %v failed (%v): %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// InsufficientBalanceError is returned before submitting a payable
// transaction the account cannot afford
type InsufficientBalanceError struct {
	Balance  *big.Int
	Required *big.Int
	ChainID  uint64
	Guidance string
}

// NewInsufficientBalanceError builds the error with guidance for the network
func NewInsufficientBalanceError(balance *big.Int, required *big.Int, chainID uint64,
	chainName string) *InsufficientBalanceError {
	return &InsufficientBalanceError{
		Balance:  balance,
		Required: required,
		ChainID:  chainID,
		Guidance: FundingGuidance(chainID, chainName),
	}
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"Insufficient balance: You have %v ETH, but need at least %v ETH plus gas fees. %v",
		utils.FormatEther(e.Balance),
		utils.FormatEther(e.Required),
		e.Guidance,
	)
}

// FundingGuidance returns a hint on how to get funds on the given network
func FundingGuidance(chainID uint64, chainName string) string {
	switch {
	case chainID == 31337 || chainID == 1337 || IsLocalChainName(chainName):
		return "For Anvil/local node: Use `anvil --balance 10000` to increase starting balance or " +
			"send ETH to your account with `cast send --value 1ether <your-address> --private-key <anvil-private-key>`"
	case chainID == 1:
		return "You'll need to purchase ETH from an exchange."
	case chainID == 5:
		return "Get test ETH from goerlifaucet.com"
	case chainID == 11155111:
		return "Get test ETH from sepoliafaucet.com"
	case chainID == 17000:
		return "Get test ETH from a Holesky faucet."
	}
	return "Search for a faucet for your current network to get test tokens."
}

// IsLocalChainName returns true for names of development networks
func IsLocalChainName(name string) bool {
	for _, marker := range []string{"local", "anvil", "hardhat", "ganache"} {
		if strings.Contains(strings.ToLower(name), marker) {
			return true
		}
	}
	return false
}

// TransactionError is a failed submission or a mined transaction that reverted
type TransactionError struct {
	Op     string
	TxHash common.Hash
	Reason string
	Err    error
}

func (e *TransactionError) Error() string {
	msg := fmt.Sprintf("%v transaction failed", e.Op)
	if e.TxHash != (common.Hash{}) {
		msg = fmt.Sprintf("%v (tx %v)", msg, e.TxHash.Hex())
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%v: %v", msg, e.Reason)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%v: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// NoOpClaimError is returned when the cumulative claimable amount has already
// been claimed in full
type NoOpClaimError struct {
	Claimable *big.Int
	Claimed   *big.Int
}

func (e *NoOpClaimError) Error() string {
	return fmt.Sprintf("nothing to claim: claimable %v, already claimed %v", e.Claimable, e.Claimed)
}
