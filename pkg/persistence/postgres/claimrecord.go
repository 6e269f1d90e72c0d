package postgres // import "github.com/joincivil/wavs-rewards-client/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	// ClaimRecordTableName is the name of the claim history table
	ClaimRecordTableName = "claim_record"
)

// CreateClaimRecordTableQuery returns the query to create the claim_record table
func CreateClaimRecordTableQuery() string {
	return CreateClaimRecordTableQueryString(ClaimRecordTableName)
}

// CreateClaimRecordTableQueryString returns the query to create this table
// NOTE: amounts are uint256 and do not fit BIGINT, so they are NUMERIC
func CreateClaimRecordTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            id SERIAL PRIMARY KEY,
            account TEXT NOT NULL,
            reward_token TEXT,
            claimable NUMERIC(78, 0),
            claimed NUMERIC(78, 0),
            timestamp BIGINT,
            tx_hash TEXT
        );
        CREATE INDEX IF NOT EXISTS %s ON %s (account);
    `, tableName, tableName+"_account_idx", tableName)
	return queryString
}

// ClaimRecord is the model definition for the claim_record table
type ClaimRecord struct {
	Account string `db:"account"`

	RewardToken string `db:"reward_token"`

	Claimable string `db:"claimable"`

	Claimed string `db:"claimed"`

	Timestamp int64 `db:"timestamp"`

	TxHash string `db:"tx_hash"`
}

// NewClaimRecord constructs a claim record for DB from a model.ClaimRecord
func NewClaimRecord(record *model.ClaimRecord) *ClaimRecord {
	return &ClaimRecord{
		Account:     record.Account().Hex(),
		RewardToken: record.RewardToken().Hex(),
		Claimable:   BigIntToString(record.Claimable()),
		Claimed:     BigIntToString(record.Claimed()),
		Timestamp:   record.Timestamp(),
		TxHash:      record.TxHash().Hex(),
	}
}

// DbToClaimRecordData creates a model.ClaimRecord from the db row
func (c *ClaimRecord) DbToClaimRecordData() (*model.ClaimRecord, error) {
	claimable, err := StringToBigInt(c.Claimable)
	if err != nil {
		return nil, err
	}
	claimed, err := StringToBigInt(c.Claimed)
	if err != nil {
		return nil, err
	}
	return model.NewClaimRecord(&model.ClaimRecordParams{
		Account:     common.HexToAddress(c.Account),
		RewardToken: common.HexToAddress(c.RewardToken),
		Claimable:   claimable,
		Claimed:     claimed,
		Timestamp:   c.Timestamp,
		TxHash:      common.HexToHash(c.TxHash),
	}), nil
}
