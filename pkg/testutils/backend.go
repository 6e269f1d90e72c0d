// Package testutils contains an in-memory chain backend used by package tests.
// It dispatches calls and transactions by ABI method to registered handlers.
package testutils // import "github.com/joincivil/wavs-rewards-client/pkg/testutils"

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
)

const (
	defaultGasEstimate = uint64(100000)
	oneGwei            = 1000000000
)

var (
	// ErrUnhandled is returned for calls to methods without a handler
	ErrUnhandled = errors.New("execution reverted")

	// ErrConnectionLost is delivered to subscriptions killed by KillSubscriptions
	ErrConnectionLost = errors.New("connection lost")
)

// CallHandler answers a view call with the method's outputs
type CallHandler func(from common.Address, args []interface{}) ([]interface{}, error)

// TxHandler executes a transaction and returns the logs it emits. A returned
// error makes the transaction revert.
type TxHandler func(from common.Address, value *big.Int, args []interface{}) ([]*types.Log, error)

type fakeContract struct {
	abi          abi.ABI
	calls        map[string]CallHandler
	txs          map[string]TxHandler
	reverts      map[string]error
	estimateErrs map[string]error
}

// FakeBackend is an in-memory bind.ContractBackend and bind.DeployBackend
type FakeBackend struct {
	mu         sync.Mutex
	chainID    *big.Int
	contracts  map[common.Address]*fakeContract
	balances   map[common.Address]*big.Int
	nonces     map[common.Address]uint64
	receipts   map[common.Hash]*types.Receipt
	callCounts map[string]int
	sent       []*types.Transaction
	block      uint64
	subs       int
	kill       chan struct{}
	logs       event.Feed
}

// NewFakeBackend returns an empty backend for the given chain id
func NewFakeBackend(chainID int64) *FakeBackend {
	return &FakeBackend{
		chainID:    big.NewInt(chainID),
		contracts:  map[common.Address]*fakeContract{},
		balances:   map[common.Address]*big.Int{},
		nonces:     map[common.Address]uint64{},
		receipts:   map[common.Hash]*types.Receipt{},
		callCounts: map[string]int{},
		block:      1,
		kill:       make(chan struct{}),
	}
}

// Deploy registers a contract with the given ABI at address
func (f *FakeBackend) Deploy(address common.Address, contractABI abi.ABI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contracts[address] = &fakeContract{
		abi:          contractABI,
		calls:        map[string]CallHandler{},
		txs:          map[string]TxHandler{},
		reverts:      map[string]error{},
		estimateErrs: map[string]error{},
	}
}

// HandleCall sets the handler for a view method
func (f *FakeBackend) HandleCall(address common.Address, method string, h CallHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contract(address).calls[method] = h
}

// Returns sets a view method to always return the given outputs
func (f *FakeBackend) Returns(address common.Address, method string, outputs ...interface{}) {
	f.HandleCall(address, method, func(common.Address, []interface{}) ([]interface{}, error) {
		return outputs, nil
	})
}

// HandleTx sets the handler for a state changing method
func (f *FakeBackend) HandleTx(address common.Address, method string, h TxHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contract(address).txs[method] = h
}

// FailEstimate makes gas estimation for the method fail with err
func (f *FakeBackend) FailEstimate(address common.Address, method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contract(address).estimateErrs[method] = err
}

// SetBalance sets the native balance of account
func (f *FakeBackend) SetBalance(account common.Address, wei *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[account] = new(big.Int).Set(wei)
}

// CallCount returns how many times the method was called on address
func (f *FakeBackend) CallCount(address common.Address, method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCounts[callKey(address, method)]
}

// Sent returns the transactions submitted so far
func (f *FakeBackend) Sent() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Transaction{}, f.sent...)
}

// Subscribers returns the number of live log subscriptions
func (f *FakeBackend) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs
}

// EmitLog delivers a log to matching subscriptions
func (f *FakeBackend) EmitLog(log *types.Log) int {
	return f.logs.Send(*log)
}

// KillSubscriptions fails every live subscription with ErrConnectionLost
func (f *FakeBackend) KillSubscriptions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.kill)
	f.kill = make(chan struct{})
}

func (f *FakeBackend) contract(address common.Address) *fakeContract {
	c, ok := f.contracts[address]
	if !ok {
		panic("contract not deployed: " + address.Hex())
	}
	return c
}

func callKey(address common.Address, method string) string {
	return address.Hex() + "." + method
}

func (f *FakeBackend) decode(to *common.Address, data []byte) (*fakeContract, *abi.Method,
	[]interface{}, error) {
	if to == nil {
		return nil, nil, nil, errors.New("contract creation not supported")
	}
	c, ok := f.contracts[*to]
	if !ok {
		return nil, nil, nil, nil
	}
	if len(data) < 4 {
		return c, nil, nil, ErrUnhandled
	}
	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return c, nil, nil, ErrUnhandled
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return c, nil, nil, err
	}
	return c, method, args, nil
}

// CodeAt returns placeholder code for deployed contracts
func (f *FakeBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contracts[account]; ok {
		return []byte{0x60, 0x80, 0x60, 0x40}, nil
	}
	return nil, nil
}

// PendingCodeAt returns placeholder code for deployed contracts
func (f *FakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return f.CodeAt(ctx, account, nil)
}

// CallContract dispatches a call to the registered handler
func (f *FakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	c, method, args, err := f.decode(msg.To, msg.Data)
	if c == nil && err == nil {
		f.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.callCounts[callKey(*msg.To, method.Name)]++
	handler, isCall := c.calls[method.Name]
	revert := c.reverts[method.Name]
	_, isTx := c.txs[method.Name]
	f.mu.Unlock()

	switch {
	case isCall:
		out, err := handler(msg.From, args)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(out...)
	case revert != nil:
		return nil, revert
	case isTx:
		return []byte{}, nil
	}
	return nil, ErrUnhandled
}

// HeaderByNumber returns a header with a base fee so transactions use dynamic fees
func (f *FakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &types.Header{
		Number:  new(big.Int).SetUint64(f.block),
		BaseFee: big.NewInt(oneGwei),
	}, nil
}

// PendingNonceAt returns the next nonce for account
func (f *FakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonces[account], nil
}

// SuggestGasPrice returns one gwei
func (f *FakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(oneGwei), nil
}

// SuggestGasTipCap returns one gwei
func (f *FakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(oneGwei), nil
}

// EstimateGas returns a fixed estimate unless the method is set to fail
func (f *FakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, method, _, err := f.decode(msg.To, msg.Data)
	if err != nil {
		return 0, err
	}
	if c != nil && method != nil {
		if estimateErr := c.estimateErrs[method.Name]; estimateErr != nil {
			return 0, estimateErr
		}
	}
	return defaultGasEstimate, nil
}

// SendTransaction executes the transaction through its handler and stores a receipt
func (f *FakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	from, err := types.Sender(types.LatestSignerForChainID(f.chainID), tx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.nonces[from]++
	f.block++
	block := f.block
	f.sent = append(f.sent, tx)
	c, method, args, err := f.decode(tx.To(), tx.Data())
	var handler TxHandler
	if c != nil && method != nil {
		handler = c.txs[method.Name]
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}

	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            tx.Hash(),
		BlockNumber:       new(big.Int).SetUint64(block),
		GasUsed:           defaultGasEstimate,
		CumulativeGasUsed: defaultGasEstimate,
	}
	if handler != nil {
		logs, herr := handler(from, tx.Value(), args)
		if herr != nil {
			receipt.Status = types.ReceiptStatusFailed
			f.mu.Lock()
			c.reverts[method.Name] = herr
			f.mu.Unlock()
		} else {
			for i, log := range logs {
				log.Address = *tx.To()
				log.TxHash = tx.Hash()
				log.BlockNumber = block
				log.Index = uint(i)
				receipt.Logs = append(receipt.Logs, log)
			}
		}
	}

	f.mu.Lock()
	f.receipts[tx.Hash()] = receipt
	f.mu.Unlock()
	return nil
}

// TransactionReceipt returns the stored receipt for a sent transaction
func (f *FakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// BalanceAt returns the native balance of account
func (f *FakeBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.balances[account]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(balance), nil
}

// ChainID returns the backend's chain id
func (f *FakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.chainID), nil
}

// BlockNumber returns the current block
func (f *FakeBackend) BlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.block, nil
}

// FilterLogs returns no historical logs
func (f *FakeBackend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

// SubscribeFilterLogs delivers logs passed to EmitLog that match the query
func (f *FakeBackend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery,
	ch chan<- types.Log) (ethereum.Subscription, error) {
	in := make(chan types.Log, 16)
	sub := f.logs.Subscribe(in)
	f.mu.Lock()
	f.subs++
	kill := f.kill
	f.mu.Unlock()

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer func() {
			sub.Unsubscribe()
			f.mu.Lock()
			f.subs--
			f.mu.Unlock()
		}()
		for {
			select {
			case log := <-in:
				if !matchLog(q, log) {
					continue
				}
				select {
				case ch <- log:
				case <-quit:
					return nil
				case <-kill:
					return ErrConnectionLost
				}
			case <-kill:
				return ErrConnectionLost
			case <-quit:
				return nil
			}
		}
	}), nil
}

func matchLog(q ethereum.FilterQuery, log types.Log) bool {
	if len(q.Addresses) > 0 {
		found := false
		for _, addr := range q.Addresses {
			if addr == log.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i, set := range q.Topics {
		if len(set) == 0 {
			continue
		}
		if i >= len(log.Topics) {
			return false
		}
		found := false
		for _, topic := range set {
			if topic == log.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MakeLog builds a log for the named event with the given indexed topics and
// non-indexed values
func MakeLog(contractABI abi.ABI, address common.Address, name string, indexed []common.Hash,
	values ...interface{}) *types.Log {
	ev, ok := contractABI.Events[name]
	if !ok {
		panic("unknown event " + name)
	}
	data, err := ev.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		panic(err)
	}
	topics := append([]common.Hash{ev.ID}, indexed...)
	return &types.Log{Address: address, Topics: topics, Data: data}
}

type revertError struct {
	reason string
	data   string
}

func (e *revertError) Error() string {
	return "execution reverted: " + e.reason
}

func (e *revertError) ErrorData() interface{} {
	return e.data
}

// NewRevertError returns an error carrying Error(string) revert data the way
// a JSON-RPC node reports it
func NewRevertError(reason string) error {
	stringType, _ := abi.NewType("string", "", nil)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	if err != nil {
		panic(err)
	}
	data := append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...)
	return &revertError{reason: reason, data: hexutil.Encode(data)}
}
