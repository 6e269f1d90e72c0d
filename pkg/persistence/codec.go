package persistence

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	claimHistoryKeyPrefix = "claimHistory:"
	pendingMintsKeyPrefix = "pendingMints:"
)

// claimHistoryKey is the per account key of the claim history
func claimHistoryKey(account common.Address) string {
	return claimHistoryKeyPrefix + account.Hex()
}

// pendingMintsKey is the per account key of the pending mints
func pendingMintsKey(account common.Address) string {
	return pendingMintsKeyPrefix + account.Hex()
}

type claimRecordJSON struct {
	Account     common.Address `json:"account"`
	RewardToken common.Address `json:"reward"`
	Claimable   string         `json:"claimable"`
	Claimed     string         `json:"claimed"`
	Timestamp   int64          `json:"timestamp"`
	TxHash      common.Hash    `json:"transactionHash"`
}

type pendingMintJSON struct {
	TriggerID     string  `json:"triggerId"`
	Prompt        string  `json:"prompt"`
	Timestamp     int64   `json:"timestamp"`
	StartProgress float64 `json:"startProgress"`
}

func amountString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errors.Errorf("invalid stored amount %q", value)
	}
	return amount, nil
}

func encodeClaimRecord(record *model.ClaimRecord) ([]byte, error) {
	return json.Marshal(&claimRecordJSON{
		Account:     record.Account(),
		RewardToken: record.RewardToken(),
		Claimable:   amountString(record.Claimable()),
		Claimed:     amountString(record.Claimed()),
		Timestamp:   record.Timestamp(),
		TxHash:      record.TxHash(),
	})
}

func decodeClaimRecord(data []byte) (*model.ClaimRecord, error) {
	raw := &claimRecordJSON{}
	if err := json.Unmarshal(data, raw); err != nil {
		return nil, errors.Wrap(err, "error decoding claim record")
	}
	claimable, err := parseAmount(raw.Claimable)
	if err != nil {
		return nil, err
	}
	claimed, err := parseAmount(raw.Claimed)
	if err != nil {
		return nil, err
	}
	return model.NewClaimRecord(&model.ClaimRecordParams{
		Account:     raw.Account,
		RewardToken: raw.RewardToken,
		Claimable:   claimable,
		Claimed:     claimed,
		Timestamp:   raw.Timestamp,
		TxHash:      raw.TxHash,
	}), nil
}

func encodePendingMints(mints []*model.PendingMint) ([]byte, error) {
	raw := make([]pendingMintJSON, len(mints))
	for i, mint := range mints {
		raw[i] = pendingMintJSON{
			TriggerID:     mint.TriggerID(),
			Prompt:        mint.Prompt(),
			Timestamp:     mint.Timestamp(),
			StartProgress: mint.StartProgress(),
		}
	}
	return json.Marshal(raw)
}

func decodePendingMints(data []byte) ([]*model.PendingMint, error) {
	raw := []pendingMintJSON{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "error decoding pending mints")
	}
	mints := make([]*model.PendingMint, len(raw))
	for i, r := range raw {
		mints[i] = model.NewPendingMint(&model.PendingMintParams{
			TriggerID:     r.TriggerID,
			Prompt:        r.Prompt,
			Timestamp:     r.Timestamp,
			StartProgress: r.StartProgress,
		})
	}
	return mints, nil
}
