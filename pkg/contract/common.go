package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

var (
	// ErrEventNotFound is returned when a receipt does not contain the expected event
	ErrEventNotFound = errors.New("event not found in receipt")
)

func parseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

var (
	distributorABI = parseABI(RewardDistributorABI)
	erc20ABI       = parseABI(ERC20ABI)
	nftABI         = parseABI(WavsNftABI)
	minterABI      = parseABI(WavsMinterABI)
)

// DistributorABI returns the parsed distributor ABI
func DistributorABI() abi.ABI { return distributorABI }

// TokenABI returns the parsed ERC-20 ABI
func TokenABI() abi.ABI { return erc20ABI }

// NftABI returns the parsed NFT collection ABI
func NftABI() abi.ABI { return nftABI }

// MinterABI returns the parsed minter ABI
func MinterABI() abi.ABI { return minterABI }

// callSingle calls a view method with a single return value
func callSingle[T any](c *bind.BoundContract, opts *bind.CallOpts, method string,
	args ...interface{}) (T, error) {
	var zero T
	var out []interface{}
	err := c.Call(opts, &out, method, args...)
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, errors.Errorf("no return value from %v", method)
	}
	converted, ok := abi.ConvertType(out[0], new(T)).(*T)
	if !ok {
		return zero, errors.Errorf("unexpected return type from %v", method)
	}
	return *converted, nil
}

// unpackLog decodes a log into out if its first topic matches the event
func unpackLog(c *bind.BoundContract, contractABI abi.ABI, out interface{}, name string,
	log types.Log) error {
	ev, ok := contractABI.Events[name]
	if !ok {
		return errors.Errorf("unknown event %v", name)
	}
	if len(log.Topics) == 0 || log.Topics[0] != ev.ID {
		return ErrEventNotFound
	}
	return c.UnpackLog(out, name, log)
}

// watchEvent subscribes to an event and decodes each log with decode before
// delivering it to the sink. The returned subscription ends when the
// underlying log subscription fails or the caller unsubscribes.
func watchEvent[T any](c *bind.BoundContract, opts *bind.WatchOpts, name string,
	decode func(types.Log) (*T, error), sink chan<- *T, query ...[]interface{}) (event.Subscription, error) {
	logs, sub, err := c.WatchLogs(opts, name, query...)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev, err := decode(log)
				if err != nil {
					return err
				}
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// RevertReason extracts a human readable revert reason from an error returned
// by a node. Errors carrying revert data are decoded with the standard
// Error(string) layout, anything else falls back to the error text.
func RevertReason(err error) string {
	if err == nil {
		return ""
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := decodeRevertData(dataErr.ErrorData()); ok {
			return reason
		}
	}
	return err.Error()
}

func decodeRevertData(data interface{}) (string, bool) {
	var raw []byte
	switch d := data.(type) {
	case string:
		b, err := hexutil.Decode(d)
		if err != nil {
			return "", false
		}
		raw = b
	case []byte:
		raw = d
	default:
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		if len(raw) >= 4 {
			return "custom error " + hexutil.Encode(raw[:4]), true
		}
		return "", false
	}
	return reason, true
}

func hashesToBytes32(hashes []common.Hash) [][32]byte {
	out := make([][32]byte, len(hashes))
	for i, h := range hashes {
		out[i] = h
	}
	return out
}
