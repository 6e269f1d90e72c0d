package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/joincivil/wavs-rewards-client/pkg/contract"
	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	// MintGasLimit is the fixed gas limit used for triggerMint
	MintGasLimit = uint64(300000)

	opAddTrigger  = "addTrigger"
	opClaim       = "claim"
	opTriggerMint = "triggerMint"
)

var (
	// ErrReverted is the cause of a TransactionError for a mined revert
	ErrReverted = errors.New("transaction reverted")
)

// ExecutorParams are the params to initialize a new Executor
type ExecutorParams struct {
	Reader    *Reader
	Key       *ecdsa.PrivateKey
	ChainID   *big.Int
	ChainName string
}

// NewExecutor is a convenience function to init an Executor. A nil key gives
// a read-only executor whose writes fail with model.ErrNotConnected.
func NewExecutor(params *ExecutorParams) (*Executor, error) {
	e := &Executor{
		reader:    params.Reader,
		chainID:   params.ChainID,
		chainName: params.ChainName,
	}
	if params.Key != nil {
		opts, err := bind.NewKeyedTransactorWithChainID(params.Key, params.ChainID)
		if err != nil {
			return nil, errors.Wrap(err, "error creating transactor")
		}
		e.opts = opts
	}
	return e, nil
}

// Executor submits transactions and waits for their confirmation
type Executor struct {
	reader    *Reader
	opts      *bind.TransactOpts
	chainID   *big.Int
	chainName string
}

// Connected returns true if the executor has a signer
func (e *Executor) Connected() bool {
	return e.opts != nil
}

// Account returns the signer's address
func (e *Executor) Account() common.Address {
	if e.opts == nil {
		return common.Address{}
	}
	return e.opts.From
}

// ChainID returns the chain id transactions are signed for
func (e *Executor) ChainID() uint64 {
	if e.chainID == nil {
		return 0
	}
	return e.chainID.Uint64()
}

// ChainName returns the configured network name
func (e *Executor) ChainName() string {
	return e.chainName
}

// Reader returns the reader the executor was built with
func (e *Executor) Reader() *Reader {
	return e.reader
}

// transactOpts returns a per call copy of the signer options
func (e *Executor) transactOpts(ctx context.Context, value *big.Int, gasLimit uint64) *bind.TransactOpts {
	opts := *e.opts
	opts.Context = ctx
	opts.Value = value
	opts.GasLimit = gasLimit
	return &opts
}

// submit sends a transaction built by send and waits for it to be mined.
// Submission failures and reverts are returned as *model.TransactionError.
func (e *Executor) submit(ctx context.Context, op string, value *big.Int, gasLimit uint64,
	send func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Receipt, error) {
	if e.opts == nil {
		return nil, model.ErrNotConnected
	}
	tx, err := send(e.transactOpts(ctx, value, gasLimit))
	if err != nil {
		return nil, &model.TransactionError{Op: op, Reason: contract.RevertReason(err), Err: err}
	}
	log.Infof("Sent %v transaction %v", op, tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, e.reader.Backend(), tx)
	if err != nil {
		return nil, &model.TransactionError{Op: op, TxHash: tx.Hash(), Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		reason := e.replayRevert(ctx, tx, receipt)
		log.Errorf("Transaction %v for %v reverted: %v", tx.Hash().Hex(), op, reason)
		return receipt, &model.TransactionError{Op: op, TxHash: tx.Hash(), Reason: reason, Err: ErrReverted}
	}
	log.Infof("Transaction %v for %v mined in block %v", tx.Hash().Hex(), op, receipt.BlockNumber)
	return receipt, nil
}

// replayRevert re-executes a reverted transaction as a call at its block to
// recover the revert reason
func (e *Executor) replayRevert(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) string {
	msg := ethereum.CallMsg{
		From:  e.opts.From,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := e.reader.Backend().CallContract(ctx, msg, receipt.BlockNumber)
	if err != nil {
		return contract.RevertReason(err)
	}
	return ErrReverted.Error()
}

// AddTrigger requests a rewards update and returns the mined receipt and the
// trigger id assigned by the distributor
func (e *Executor) AddTrigger(ctx context.Context) (*types.Receipt, string, error) {
	distributor := e.reader.Distributor()
	receipt, err := e.submit(ctx, opAddTrigger, nil, 0, distributor.AddTrigger)
	if err != nil {
		return receipt, "", err
	}
	ev, err := distributor.FindWavsRewardsTrigger(receipt)
	if err != nil {
		log.Errorf("No WavsRewardsTrigger in receipt %v: err: %v", receipt.TxHash.Hex(), err)
		return receipt, "", nil
	}
	return receipt, new(big.Int).SetUint64(ev.TriggerId).String(), nil
}

// Claim submits a claim for the cumulative amount in entry
func (e *Executor) Claim(ctx context.Context, entry *model.RewardEntry) (*types.Receipt, error) {
	distributor := e.reader.Distributor()
	return e.submit(ctx, opClaim, nil, 0, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return distributor.Claim(opts, entry.Account, entry.RewardToken, entry.Claimable, entry.Proof)
	})
}

// TriggerMint pays price to request a mint for prompt and returns the mined
// receipt and the trigger id assigned by the minter
func (e *Executor) TriggerMint(ctx context.Context, prompt string, price *big.Int) (*types.Receipt, string, error) {
	minter := e.reader.Minter()
	receipt, err := e.submit(ctx, opTriggerMint, price, MintGasLimit,
		func(opts *bind.TransactOpts) (*types.Transaction, error) {
			return minter.TriggerMint(opts, prompt)
		})
	if err != nil {
		return receipt, "", err
	}
	ev, err := minter.FindWavsNftTrigger(receipt)
	if err != nil {
		log.Errorf("No WavsNftTrigger in receipt %v: err: %v", receipt.TxHash.Hex(), err)
		return receipt, "", nil
	}
	return receipt, new(big.Int).SetUint64(ev.TriggerId).String(), nil
}
