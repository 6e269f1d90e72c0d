// Package devnet contains helpers that only work against a local Anvil node.
package devnet // import "github.com/joincivil/wavs-rewards-client/pkg/devnet"

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/joincivil/wavs-rewards-client/pkg/utils"
)

const (
	// DefaultFaucetAmount is the balance in ETH set when no amount is given
	DefaultFaucetAmount = "10"

	setBalanceMethod = "anvil_setBalance"
)

// RPCCaller is the part of *rpc.Client used by the faucet
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// NewFaucet returns a faucet using the node at client
func NewFaucet(client RPCCaller) *Faucet {
	return &Faucet{client: client}
}

// Faucet sets account balances on a local node
type Faucet struct {
	client RPCCaller
}

// RequestEth sets the balance of account to amountEth. An empty amount uses
// DefaultFaucetAmount. The balance is replaced, not topped up.
func (f *Faucet) RequestEth(ctx context.Context, account common.Address, amountEth string) (*big.Int, error) {
	if account == (common.Address{}) {
		return nil, errors.New("no account address available")
	}
	if amountEth == "" {
		amountEth = DefaultFaucetAmount
	}
	wei, err := utils.ParseEther(amountEth)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %v", amountEth)
	}

	log.Infof("Setting balance of %v to %v ETH via %v", account.Hex(), amountEth, setBalanceMethod)
	err = f.client.CallContext(ctx, nil, setBalanceMethod, account, (*hexutil.Big)(wei))
	if err != nil {
		return nil, errors.Wrap(err, "failed to set balance")
	}
	return wei, nil
}
